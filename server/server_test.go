package server

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/driveeasy/reportkit/config"
	"github.com/driveeasy/reportkit/fontkit"
	"github.com/driveeasy/reportkit/render"
	"github.com/driveeasy/reportkit/report"
	"github.com/driveeasy/reportkit/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var reportCols = []string{
	"id", "user_id", "status", "accident_time", "created_at", "other_party_info",
	"party_a_name", "party_a_phone", "party_a_id_card", "party_a_license_number", "party_a_vehicle_number", "party_a_insurance_company",
	"party_b_name", "party_b_phone", "party_b_id_card", "party_b_license_number", "party_b_vehicle_number", "party_b_insurance_company",
	"responsibility", "party_a_signature", "party_b_signature", "agreement_generated_at",
	"latitude", "longitude", "pdf_url", "pdf_content_hash", "pdf_updated_at",
}

var photoCols = []string{"image_url", "photo_type", "caption", "sort_order", "uploaded_at"}

var testCreated = time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)

func reportRow(contentHash driver.Value) []driver.Value {
	return []driver.Value{
		int64(42), int64(7), "submitted", nil, testCreated, nil,
		"Li Wei", nil, nil, nil, nil, nil,
		nil, nil, nil, nil, nil, nil,
		"equal", nil, nil, nil,
		"13.75", "100.5", nil, contentHash, nil,
	}
}

// expectedFingerprint mirrors reportRow through the domain model.
func expectedFingerprint() string {
	lat := decimal.RequireFromString("13.75")
	lng := decimal.RequireFromString("100.5")
	resp := "equal"
	name := "Li Wei"
	rep := &report.Report{
		ID:             42,
		UserID:         7,
		Status:         "submitted",
		CreatedAt:      testCreated,
		PartyA:         report.Party{Name: &name},
		Responsibility: &resp,
		Latitude:       &lat,
		Longitude:      &lng,
	}
	return report.Fingerprint(rep, nil)
}

type pdfResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Data    struct {
		PDFURL   string `json:"pdfUrl"`
		Filename string `json:"filename"`
		IsNew    bool   `json:"isNew"`
	} `json:"data"`
}

func newTestServer(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, *config.Config) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		UploadRoot:   t.TempDir(),
		AccidentsDir: "accidents",
		PDFDir:       "pdfs",
	}
	renderer := render.New(fontkit.New(fontkit.Paths{}), render.Options{
		UploadRoot:   cfg.UploadRoot,
		AccidentsDir: cfg.AccidentsDir,
	})
	srv := New(store.New(db), renderer, cfg)
	return srv.Router(), mock, cfg
}

func doRequest(router *gin.Engine, method, path string, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) pdfResponse {
	t.Helper()
	var resp pdfResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestGeneratePDFNew(t *testing.T) {
	router, mock, cfg := newTestServer(t)

	mock.ExpectQuery("(?s)SELECT (.+) FROM accident_reports WHERE id = \\? AND user_id = \\?").
		WithArgs(int64(42), int64(7)).
		WillReturnRows(sqlmock.NewRows(reportCols).AddRow(reportRow(nil)...))
	mock.ExpectQuery("(?s)SELECT (.+) FROM accident_report_photos").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(photoCols))
	mock.ExpectExec("UPDATE accident_reports SET pdf_url = \\?").
		WithArgs(sqlmock.AnyArg(), expectedFingerprint(), sqlmock.AnyArg(), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doRequest(router, http.MethodPost, "/api/accidents/42/generate-pdf", "7")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if !resp.Success || !resp.Data.IsNew {
		t.Fatalf("response = %+v", resp)
	}

	wantFile := "accident-report-42-" + expectedFingerprint() + ".pdf"
	if resp.Data.Filename != wantFile {
		t.Fatalf("filename = %q, want %q", resp.Data.Filename, wantFile)
	}
	out, err := os.ReadFile(filepath.Join(cfg.UploadRoot, "pdfs", "user_7", wantFile))
	if err != nil {
		t.Fatalf("generated file: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-1.7")) {
		t.Fatalf("stored file is not a pdf")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGeneratePDFCached(t *testing.T) {
	router, mock, cfg := newTestServer(t)
	hash := expectedFingerprint()

	userDir := filepath.Join(cfg.UploadRoot, "pdfs", "user_7")
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	existing := filepath.Join(userDir, "accident-report-42-"+hash+".pdf")
	if err := os.WriteFile(existing, []byte("%PDF-1.7 cached"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	mock.ExpectQuery("(?s)SELECT (.+) FROM accident_reports WHERE id = \\? AND user_id = \\?").
		WithArgs(int64(42), int64(7)).
		WillReturnRows(sqlmock.NewRows(reportCols).AddRow(reportRow(hash)...))
	mock.ExpectQuery("(?s)SELECT (.+) FROM accident_report_photos").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(photoCols))

	w := doRequest(router, http.MethodPost, "/api/accidents/42/generate-pdf", "7")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if resp.Data.IsNew {
		t.Fatalf("unchanged content regenerated the pdf")
	}
	// No UPDATE was expected; the mock fails the test if one ran.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRegeneratePDFDiscardsStale(t *testing.T) {
	router, mock, cfg := newTestServer(t)

	userDir := filepath.Join(cfg.UploadRoot, "pdfs", "user_7")
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stale := filepath.Join(userDir, "accident-report-42-0123456789abcdef0123456789abcdef.pdf")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	mock.ExpectQuery("(?s)SELECT (.+) FROM accident_reports WHERE id = \\? AND user_id = \\?").
		WithArgs(int64(42), int64(7)).
		WillReturnRows(sqlmock.NewRows(reportCols).AddRow(reportRow("0123456789abcdef0123456789abcdef")...))
	mock.ExpectQuery("(?s)SELECT (.+) FROM accident_report_photos").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(photoCols))
	mock.ExpectExec("UPDATE accident_reports SET pdf_url = \\?").
		WithArgs(sqlmock.AnyArg(), expectedFingerprint(), sqlmock.AnyArg(), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doRequest(router, http.MethodPost, "/api/accidents/42/regenerate-pdf", "7")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if !resp.Data.IsNew {
		t.Fatalf("regenerate served a cached pdf")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale artifact survived regeneration")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGeneratePDFInvalidID(t *testing.T) {
	router, _, _ := newTestServer(t)
	w := doRequest(router, http.MethodPost, "/api/accidents/abc/generate-pdf", "7")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Code != "INVALID_REPORT_ID" {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestGeneratePDFRequiresUser(t *testing.T) {
	router, _, _ := newTestServer(t)
	w := doRequest(router, http.MethodPost, "/api/accidents/42/generate-pdf", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Code != "AUTH_REQUIRED" {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestGeneratePDFNotFound(t *testing.T) {
	router, mock, _ := newTestServer(t)
	mock.ExpectQuery("(?s)SELECT (.+) FROM accident_reports WHERE id = \\? AND user_id = \\?").
		WithArgs(int64(42), int64(9)).
		WillReturnRows(sqlmock.NewRows(reportCols))

	w := doRequest(router, http.MethodPost, "/api/accidents/42/generate-pdf", "9")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Code != "REPORT_NOT_FOUND" {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestGeneratePDFStoreFailure(t *testing.T) {
	router, mock, _ := newTestServer(t)
	mock.ExpectQuery("(?s)SELECT (.+) FROM accident_reports WHERE id = \\? AND user_id = \\?").
		WithArgs(int64(42), int64(7)).
		WillReturnError(sql.ErrConnDone)

	w := doRequest(router, http.MethodPost, "/api/accidents/42/generate-pdf", "7")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Code != "PDF_GENERATION_FAILED" {
		t.Fatalf("code = %q", resp.Code)
	}
}
