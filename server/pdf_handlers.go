package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/driveeasy/reportkit/report"
	"github.com/driveeasy/reportkit/store"
)

// generatePDF serves the cached document when the report content has not
// changed since it was generated, and renders a fresh one otherwise.
func (s *Server) generatePDF(c *gin.Context) {
	s.servePDF(c, false, "PDF_GENERATION_FAILED")
}

// regeneratePDF always renders, discarding any stale artifacts for the
// report first.
func (s *Server) regeneratePDF(c *gin.Context) {
	s.servePDF(c, true, "PDF_REGENERATION_FAILED")
}

func (s *Server) servePDF(c *gin.Context, force bool, failureCode string) {
	reportID, userID, ok := requestAuth(c)
	if !ok {
		return
	}
	logger := requestLogger(c).
		WithField("report_id", reportID).
		WithField("user_id", userID)

	ctx := c.Request.Context()
	rep, err := s.store.ReportForUser(ctx, reportID, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Report not found or access denied",
			"code":    "REPORT_NOT_FOUND",
		})
		return
	}
	if err != nil {
		logger.WithError(err).Error("loading report failed")
		s.fail(c, failureCode)
		return
	}
	photos, err := s.store.Photos(ctx, reportID)
	if err != nil {
		logger.WithError(err).Error("loading photos failed")
		s.fail(c, failureCode)
		return
	}

	hash := report.Fingerprint(rep, photos)
	filename := fmt.Sprintf("accident-report-%d-%s.pdf", reportID, hash)
	userDir := filepath.Join(s.cfg.UploadRoot, s.cfg.PDFDir, fmt.Sprintf("user_%d", userID))
	fullPath := filepath.Join(userDir, filename)
	pdfURL := fmt.Sprintf("/uploads/%s/user_%d/%s", s.cfg.PDFDir, userID, filename)

	if !force && rep.PDFContentHash != nil && *rep.PDFContentHash == hash && fileExists(fullPath) {
		logger.WithField("hash", hash).Info("content unchanged, serving existing pdf")
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"pdfUrl": pdfURL, "filename": filename, "isNew": false},
			"message": "Content unchanged, using existing PDF",
		})
		return
	}

	if force {
		removeStaleArtifacts(userDir, reportID, logger)
	}

	logger.WithField("hash", hash).Info("rendering pdf")
	out, err := s.renderer.Render(rep, photos)
	if err != nil {
		logger.WithError(err).Error("render failed")
		s.fail(c, failureCode)
		return
	}
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		logger.WithError(err).Error("creating pdf directory failed")
		s.fail(c, failureCode)
		return
	}
	if err := os.WriteFile(fullPath, out, 0o644); err != nil {
		logger.WithError(err).Error("writing pdf failed")
		s.fail(c, failureCode)
		return
	}
	if err := s.store.UpdatePDFCache(ctx, reportID, pdfURL, hash, time.Now()); err != nil {
		logger.WithError(err).Error("updating pdf cache columns failed")
		s.fail(c, failureCode)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"pdfUrl": pdfURL, "filename": filename, "isNew": true},
		"message": "PDF generated successfully",
	})
}

func (s *Server) fail(c *gin.Context, code string) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": "PDF generation failed",
		"code":    code,
	})
}

// removeStaleArtifacts deletes previously generated documents for the
// report. Best effort: a leftover file only wastes disk space.
func removeStaleArtifacts(userDir string, reportID int64, logger *log.Entry) {
	pattern := filepath.Join(userDir, fmt.Sprintf("accident-report-%d-*.pdf", reportID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			logger.WithError(err).Warnf("could not remove stale pdf %s", m)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
