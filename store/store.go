// Package store reads and updates accident reports in MySQL. It covers
// exactly what document generation needs: fetching a report with an
// ownership check, its ordered photo list, and the generated-document
// cache columns.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/driveeasy/reportkit/report"
)

// ErrNotFound is returned when the report does not exist or belongs to a
// different user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("report not found")

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const reportColumns = `id, user_id, status, accident_time, created_at, other_party_info,
		party_a_name, party_a_phone, party_a_id_card, party_a_license_number, party_a_vehicle_number, party_a_insurance_company,
		party_b_name, party_b_phone, party_b_id_card, party_b_license_number, party_b_vehicle_number, party_b_insurance_company,
		responsibility, party_a_signature, party_b_signature, agreement_generated_at,
		latitude, longitude, pdf_url, pdf_content_hash, pdf_updated_at`

// ReportForUser loads one report, scoped to its owner.
func (s *Store) ReportForUser(ctx context.Context, reportID, userID int64) (*report.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM accident_reports WHERE id = ? AND user_id = ?`,
		reportID, userID)

	var (
		r                    report.Report
		accidentTime         sql.NullTime
		otherPartyInfo       sql.NullString
		partyA               [6]sql.NullString
		partyB               [6]sql.NullString
		responsibility       sql.NullString
		partyASignature      sql.NullString
		partyBSignature      sql.NullString
		agreementGeneratedAt sql.NullTime
		latitude             sql.NullString
		longitude            sql.NullString
		pdfURL               sql.NullString
		pdfContentHash       sql.NullString
		pdfUpdatedAt         sql.NullTime
	)
	err := row.Scan(
		&r.ID, &r.UserID, &r.Status, &accidentTime, &r.CreatedAt, &otherPartyInfo,
		&partyA[0], &partyA[1], &partyA[2], &partyA[3], &partyA[4], &partyA[5],
		&partyB[0], &partyB[1], &partyB[2], &partyB[3], &partyB[4], &partyB[5],
		&responsibility, &partyASignature, &partyBSignature, &agreementGeneratedAt,
		&latitude, &longitude, &pdfURL, &pdfContentHash, &pdfUpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report %d: %w", reportID, err)
	}

	r.AccidentTime = optTime(accidentTime)
	r.OtherPartyInfo = optString(otherPartyInfo)
	r.PartyA = scanParty(partyA)
	r.PartyB = scanParty(partyB)
	r.Responsibility = optString(responsibility)
	r.PartyASignature = optString(partyASignature)
	r.PartyBSignature = optString(partyBSignature)
	r.AgreementGeneratedAt = optTime(agreementGeneratedAt)
	r.PDFURL = optString(pdfURL)
	r.PDFContentHash = optString(pdfContentHash)
	r.PDFUpdatedAt = optTime(pdfUpdatedAt)

	if r.Latitude, err = optDecimal(latitude); err != nil {
		return nil, fmt.Errorf("report %d latitude: %w", reportID, err)
	}
	if r.Longitude, err = optDecimal(longitude); err != nil {
		return nil, fmt.Errorf("report %d longitude: %w", reportID, err)
	}
	return &r, nil
}

// Photos returns the report's photos in gallery order.
func (s *Store) Photos(ctx context.Context, reportID int64) ([]report.Photo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT image_url, photo_type, caption, sort_order, uploaded_at
		FROM accident_report_photos
		WHERE accident_report_id = ?
		ORDER BY sort_order ASC, uploaded_at ASC`,
		reportID)
	if err != nil {
		return nil, fmt.Errorf("query photos for report %d: %w", reportID, err)
	}
	defer rows.Close()

	var photos []report.Photo
	for rows.Next() {
		var (
			p          report.Photo
			caption    sql.NullString
			uploadedAt sql.NullTime
		)
		if err := rows.Scan(&p.ImageURL, &p.PhotoType, &caption, &p.SortOrder, &uploadedAt); err != nil {
			return nil, fmt.Errorf("scan photo row: %w", err)
		}
		p.Caption = optString(caption)
		p.UploadedAt = optTime(uploadedAt)
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return photos, nil
}

// UpdatePDFCache records where the freshly generated document lives and
// which content fingerprint it embodies.
func (s *Store) UpdatePDFCache(ctx context.Context, reportID int64, pdfURL, contentHash string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accident_reports SET pdf_url = ?, pdf_content_hash = ?, pdf_updated_at = ? WHERE id = ?`,
		pdfURL, contentHash, at, reportID)
	if err != nil {
		return fmt.Errorf("update pdf cache for report %d: %w", reportID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func optString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func optTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

// optDecimal parses a DECIMAL column scanned as text, so coordinates keep
// their exact scale instead of picking up float artifacts.
func optDecimal(v sql.NullString) (*decimal.Decimal, error) {
	if !v.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanParty(cols [6]sql.NullString) report.Party {
	return report.Party{
		Name:             optString(cols[0]),
		Phone:            optString(cols[1]),
		IDCard:           optString(cols[2]),
		LicenseNumber:    optString(cols[3]),
		VehicleNumber:    optString(cols[4]),
		InsuranceCompany: optString(cols[5]),
	}
}
