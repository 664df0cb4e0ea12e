// Package render lays out the bilingual accident report as a paginated
// A4 document: fixed section order, English/Thai label pairs, per-run
// font switching for mixed-script values, and an embedded photo gallery.
package render

import (
	"errors"
	"time"

	"github.com/driveeasy/reportkit/fontkit"
	"github.com/driveeasy/reportkit/pdf"
	"github.com/driveeasy/reportkit/report"
)

const (
	photoMaxWidth     = 400.0
	photoMaxHeight    = 150.0
	maxEmbeddedPhotos = 6
)

// Options configures photo resolution and, for tests, the clock.
type Options struct {
	// UploadRoot is the directory backing the /uploads URL prefix.
	UploadRoot string
	// AccidentsDir is the subdirectory under UploadRoot assumed for bare
	// photo filenames. Defaults to "accidents".
	AccidentsDir string
	// Now overrides the timestamp used in headers, footers, and document
	// metadata. Defaults to time.Now.
	Now func() time.Time
}

// Renderer turns a report plus its photo list into document bytes. Safe
// for concurrent use: per-render state lives in the cursor, and the font
// provider caches bytes behind its own guard.
type Renderer struct {
	fonts        *fontkit.Provider
	uploadRoot   string
	accidentsDir string
	now          func() time.Time
}

func New(fonts *fontkit.Provider, opts Options) *Renderer {
	r := &Renderer{
		fonts:        fonts,
		uploadRoot:   opts.UploadRoot,
		accidentsDir: opts.AccidentsDir,
		now:          opts.Now,
	}
	if r.accidentsDir == "" {
		r.accidentsDir = "accidents"
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Render produces the complete document. Recoverable problems (missing
// fonts, bad photos) degrade inside; a nil report is a caller bug and
// fails hard.
func (r *Renderer) Render(rep *report.Report, photos []report.Photo) ([]byte, error) {
	if rep == nil {
		return nil, errors.New("render: nil report")
	}

	doc := pdf.NewDocument()
	fonts := newFontSet(r.fonts.Load())
	c := newCursor(doc, fonts, rep.ID, r.now())

	c.titleBlock()
	r.basicInfo(c, rep)
	r.partyInfo(c, "PARTY A INFORMATION", "ข้อมูลฝ่าย A", rep.PartyA)
	r.partyInfo(c, "PARTY B INFORMATION", "ข้อมูลฝ่าย B", rep.PartyB)
	r.responsibility(c, rep)
	r.signatures(c, rep)
	r.otherPartyInfo(c, rep)
	r.photoGallery(c, photos)

	c.footer()

	doc.SetInfo(pdf.Info{
		Title:        titleFor(rep.ID),
		Author:       "DriveEasy Pass",
		Subject:      "Traffic Accident Report",
		Keywords:     []string{"accident", "report", "traffic", "bilingual"},
		Creator:      "DriveEasy Pass - Bilingual PDF Generator",
		CreationDate: c.now,
	})
	return doc.Bytes()
}
