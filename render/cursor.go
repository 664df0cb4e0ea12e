package render

import (
	"fmt"
	"time"

	"github.com/driveeasy/reportkit/pdf"
	"github.com/driveeasy/reportkit/script"
)

// Page geometry in user units (A4 portrait).
const (
	pageWidth  = 595.0
	pageHeight = 842.0

	marginX = 50.0  // section titles, header, footer
	indentX = 70.0  // field labels and body text
	valueX  = 250.0 // field values

	bottomMargin  = 120.0
	firstPageTopY = pageHeight - 50
	newPageTopY   = pageHeight - 80
	headerGap     = 50.0

	linePitch = 18.0
	entryGap  = 25.0
)

var (
	dimColor  = pdf.Color{R: 0.3, G: 0.3, B: 0.3}
	ruleColor = pdf.Color{R: 0.8, G: 0.8, B: 0.8}
)

// cursor tracks the write position across pages. Every block goes through
// ensure before drawing so pagination rules apply uniformly; page numbers
// are 1-based and only ever increase.
type cursor struct {
	doc   *pdf.Document
	page  *pdf.Page
	fonts fontSet

	y        float64
	pageNum  int
	reportID int64
	now      time.Time
}

func newCursor(doc *pdf.Document, fonts fontSet, reportID int64, now time.Time) *cursor {
	return &cursor{
		doc:      doc,
		page:     doc.AddPage(pageWidth, pageHeight),
		fonts:    fonts,
		y:        firstPageTopY,
		pageNum:  1,
		reportID: reportID,
		now:      now,
	}
}

// ensure breaks to a new page when the next block of the given height
// would cross the bottom margin: footer on the old page, then a fresh
// page with header and reset write position.
func (c *cursor) ensure(height float64) {
	if c.y-height >= bottomMargin {
		return
	}
	c.footer()
	c.page = c.doc.AddPage(pageWidth, pageHeight)
	c.y = newPageTopY
	c.pageNum++
	c.header()
	c.y -= headerGap
}

func (c *cursor) header() {
	c.page.DrawText(c.fonts.bold, 14, marginX, 800, pdf.Black,
		fmt.Sprintf("ACCIDENT REPORT %d", c.reportID))
	c.page.DrawText(c.fonts.bold, 12, pageWidth-100, 800, pdf.Gray,
		fmt.Sprintf("Page %d", c.pageNum))
	c.drawSegmented(fmt.Sprintf("รายงานอุบัติเหตุ %d", c.reportID), marginX, 785, 12, dimColor)
	c.drawSegmented(fmt.Sprintf("หน้า %d", c.pageNum), pageWidth-80, 785, 10, pdf.Gray)
	c.page.DrawLine(marginX, 770, pageWidth-marginX, 770, 1, ruleColor)
}

func (c *cursor) footer() {
	c.page.DrawLine(marginX, 60, pageWidth-marginX, 60, 1, ruleColor)
	c.page.DrawText(c.fonts.latin, 10, marginX, 45, pdf.Gray, "Generated by DriveEasy Pass")
	c.drawSegmented("สร้างโดย DriveEasy Pass", marginX, 30, 10, pdf.Gray)
	c.page.DrawText(c.fonts.latin, 10, pageWidth-150, 45, pdf.Gray, enDate(c.now))
	c.drawSegmented(thaiDate(c.now), pageWidth-150, 30, 10, pdf.Gray)
}

// drawSegmented places mixed-script text run by run, switching faces at
// every script boundary. Returns the x position after the last run.
func (c *cursor) drawSegmented(text string, x, y, size float64, col pdf.Color) float64 {
	for _, run := range script.Segment(text) {
		f := c.fonts.forClass(run.Class)
		c.page.DrawText(f, size, x, y, col, run.Text)
		x += f.TextWidth(run.Text, size)
	}
	return x
}

// labeledLine draws one bilingual field entry: English label and value on
// the first line, Thai label underneath. Empty values render as the
// literal placeholder, never as blank space.
func (c *cursor) labeledLine(enLabel, thaiLabel, value string) {
	c.ensure(50)
	if value == "" {
		value = "Not provided"
	}
	c.page.DrawText(c.fonts.latin, 12, indentX, c.y, pdf.Black, enLabel+":")
	c.drawSegmented(value, valueX, c.y, 12, pdf.Black)
	c.y -= linePitch
	c.drawSegmented(thaiLabel, indentX, c.y, 10, pdf.Gray)
	c.y -= entryGap
}

func (c *cursor) sectionTitle(en, thai string) {
	c.ensure(60)
	c.page.DrawText(c.fonts.bold, 16, marginX, c.y, pdf.Black, en)
	c.y -= 20
	c.drawSegmented(thai, marginX, c.y, 14, dimColor)
	c.y -= 25
}

// wrappedText breaks long single-script text by character against a
// maximum width. Word-aware wrapping is pointless for Thai and CJK, which
// have no spaces to break on.
func (c *cursor) wrappedText(text string, x, maxWidth, size float64, f *pdf.Font) {
	line := ""
	for _, r := range text {
		candidate := line + string(r)
		if f.TextWidth(candidate, size) > maxWidth && line != "" {
			c.ensure(25)
			c.page.DrawText(f, size, x, c.y, pdf.Black, line)
			c.y -= 20
			line = string(r)
		} else {
			line = candidate
		}
	}
	if line != "" {
		c.ensure(25)
		c.page.DrawText(f, size, x, c.y, pdf.Black, line)
		c.y -= 20
	}
}

func enDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Month(), t.Day(), t.Year())
}

func enDateTime(t time.Time) string {
	return t.Format("1/2/2006, 3:04:05 PM")
}

// thaiDate renders the Thai-locale short date (Buddhist era).
func thaiDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year()+543)
}

func thaiDateTime(t time.Time) string {
	return fmt.Sprintf("%s %02d:%02d:%02d", thaiDate(t), t.Hour(), t.Minute(), t.Second())
}
