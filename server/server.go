// Package server exposes document generation over HTTP. Authentication
// happens upstream; the auth layer forwards the authenticated user id in
// a header and these handlers enforce report ownership against it.
package server

import (
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/driveeasy/reportkit/config"
	"github.com/driveeasy/reportkit/render"
	"github.com/driveeasy/reportkit/store"
)

// UserIDHeader carries the authenticated user id set by the auth proxy.
const UserIDHeader = "X-User-ID"

type Server struct {
	store    *store.Store
	renderer *render.Renderer
	cfg      *config.Config
}

func New(st *store.Store, renderer *render.Renderer, cfg *config.Config) *Server {
	return &Server{store: st, renderer: renderer, cfg: cfg}
}

// Router builds the gin engine with the accident-report PDF routes and
// static serving for generated artifacts and uploaded photos.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "reportd"})
	})

	api := r.Group("/api/accidents")
	api.POST("/:id/generate-pdf", s.generatePDF)
	api.POST("/:id/regenerate-pdf", s.regeneratePDF)

	r.Static("/uploads", s.cfg.UploadRoot)
	return r
}

// requestAuth extracts the report id and authenticated user id, writing
// the error response itself when either is unusable.
func requestAuth(c *gin.Context) (reportID, userID int64, ok bool) {
	reportID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || reportID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid report ID",
			"code":    "INVALID_REPORT_ID",
		})
		return 0, 0, false
	}
	userID, err = strconv.ParseInt(c.GetHeader(UserIDHeader), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Authentication required",
			"code":    "AUTH_REQUIRED",
		})
		return 0, 0, false
	}
	return reportID, userID, true
}

func requestLogger(c *gin.Context) *log.Entry {
	return log.WithField("request_id", uuid.NewString()).
		WithField("path", c.FullPath())
}
