// Package report holds the accident-report domain model shared by the
// storage layer, the renderer, and the content fingerprint.
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report is one accident report row. Every descriptive field is optional;
// nil means the user never filled it in and the renderer substitutes a
// placeholder or skips the section.
type Report struct {
	ID     int64
	UserID int64
	Status string

	AccidentTime *time.Time
	CreatedAt    time.Time

	PartyA Party
	PartyB Party

	Responsibility *string
	OtherPartyInfo *string

	// Signature fields carry data-URL blobs; only presence matters for
	// rendering, the full value feeds the fingerprint.
	PartyASignature      *string
	PartyBSignature      *string
	AgreementGeneratedAt *time.Time

	Latitude  *decimal.Decimal
	Longitude *decimal.Decimal

	PDFURL         *string
	PDFContentHash *string
	PDFUpdatedAt   *time.Time
}

// Party groups the per-party identification fields.
type Party struct {
	Name             *string
	Phone            *string
	IDCard           *string
	LicenseNumber    *string
	VehicleNumber    *string
	InsuranceCompany *string
}

// Present reports whether at least one field of the party was filled in.
func (p Party) Present() bool {
	return p.Name != nil || p.Phone != nil || p.IDCard != nil ||
		p.LicenseNumber != nil || p.VehicleNumber != nil || p.InsuranceCompany != nil
}

// Photo is one uploaded accident photo, ordered by SortOrder then upload
// time. ImageURL may be an absolute URL, a root-relative upload path, or a
// bare filename; resolution happens at embed time.
type Photo struct {
	ImageURL   string
	PhotoType  string
	Caption    *string
	SortOrder  int
	UploadedAt *time.Time
}
