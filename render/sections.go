package render

import (
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/golang/geo/s2"

	"github.com/driveeasy/reportkit/pdf"
	"github.com/driveeasy/reportkit/report"
	"github.com/driveeasy/reportkit/script"
)

func titleFor(reportID int64) string {
	return fmt.Sprintf("Accident Report %d", reportID)
}

// titleBlock is only drawn on the first page, which is known to be empty.
func (c *cursor) titleBlock() {
	c.page.DrawText(c.fonts.bold, 24, marginX, c.y, pdf.Black, "ACCIDENT REPORT")
	c.y -= 30
	c.drawSegmented("รายงานอุบัติเหตุ", marginX, c.y, 20, dimColor)
	c.y -= 40

	c.page.DrawText(c.fonts.latin, 12, marginX, c.y, pdf.Gray, fmt.Sprintf("Report ID: %d", c.reportID))
	c.y -= 15
	c.drawSegmented(fmt.Sprintf("รหัสรายงาน: %d", c.reportID), marginX, c.y, 10, pdf.Gray)
	c.y -= 20

	c.page.DrawText(c.fonts.latin, 10, marginX, c.y, pdf.Gray, "Generated: "+enDateTime(c.now))
	c.y -= 15
	c.drawSegmented("สร้างเมื่อ: "+thaiDateTime(c.now), marginX, c.y, 9, pdf.Gray)
	c.y -= 30
}

func (r *Renderer) basicInfo(c *cursor, rep *report.Report) {
	c.sectionTitle("BASIC INFORMATION", "ข้อมูลพื้นฐาน")

	c.labeledLine("Accident Time", "เวลาเกิดอุบัติเหตุ", optTime(rep.AccidentTime))
	c.labeledLine("Report Status", "สถานะรายงาน", report.StatusText(rep.Status))
	c.labeledLine("Created Time", "เวลาสร้างรายงาน", enDateTime(rep.CreatedAt))

	if coords, ok := coordinateText(rep); ok {
		c.labeledLine("Location Coordinates", "พิกัดที่เกิดเหตุ", coords)
	}
	c.y -= 20
}

// coordinateText gates the coordinates line on both values being present
// and geographically plausible.
func coordinateText(rep *report.Report) (string, bool) {
	if rep.Latitude == nil || rep.Longitude == nil {
		return "", false
	}
	ll := s2.LatLngFromDegrees(rep.Latitude.InexactFloat64(), rep.Longitude.InexactFloat64())
	if !ll.IsValid() {
		log.Warnf("report %d has out-of-range coordinates %s, %s", rep.ID, rep.Latitude, rep.Longitude)
		return "", false
	}
	return fmt.Sprintf("%s, %s", rep.Latitude, rep.Longitude), true
}

// partyInfo emits the whole section when any field is present: every
// labeled line is drawn, with absent fields carrying the placeholder.
func (r *Renderer) partyInfo(c *cursor, title, titleThai string, p report.Party) {
	if !p.Present() {
		return
	}
	c.sectionTitle(title, titleThai)

	c.labeledLine("Name", "ชื่อ", optStr(p.Name))
	c.labeledLine("Phone", "เบอร์โทรศัพท์", optStr(p.Phone))
	c.labeledLine("ID Card", "เลขบัตรประชาชน", optStr(p.IDCard))
	c.labeledLine("License Number", "เลขใบขับขี่", optStr(p.LicenseNumber))
	c.labeledLine("Vehicle Number", "ทะเบียนรถ", optStr(p.VehicleNumber))
	c.labeledLine("Insurance Company", "บริษัทประกัน", optStr(p.InsuranceCompany))
	c.y -= 20
}

func (r *Renderer) responsibility(c *cursor, rep *report.Report) {
	if rep.Responsibility == nil {
		return
	}
	c.sectionTitle("RESPONSIBILITY DETERMINATION", "การกำหนดความรับผิดชอบ")
	c.labeledLine("Responsibility", "ความรับผิดชอบ", report.ResponsibilityText(*rep.Responsibility))
	c.y -= 20
}

func (r *Renderer) signatures(c *cursor, rep *report.Report) {
	if rep.PartyASignature == nil && rep.PartyBSignature == nil {
		return
	}
	c.sectionTitle("DIGITAL SIGNATURES", "ลายเซ็นดิจิทัล")

	const signed = "Digital signature provided / มีลายเซ็นดิจิทัล"
	if rep.PartyASignature != nil {
		c.labeledLine("Party A Signature", "ลายเซ็นฝ่าย A", signed)
	}
	if rep.PartyBSignature != nil {
		c.labeledLine("Party B Signature", "ลายเซ็นฝ่าย B", signed)
	}
	if rep.AgreementGeneratedAt != nil {
		c.labeledLine("Agreement Generated", "เวลาสร้างข้อตกลง", enDateTime(*rep.AgreementGeneratedAt))
	}
	c.y -= 20
}

func (r *Renderer) otherPartyInfo(c *cursor, rep *report.Report) {
	if rep.OtherPartyInfo == nil || *rep.OtherPartyInfo == "" {
		return
	}
	c.sectionTitle("ADDITIONAL INFORMATION", "ข้อมูลเพิ่มเติม")
	c.ensure(60)

	text := *rep.OtherPartyInfo
	runs := script.Segment(text)
	if len(runs) > 1 {
		// Mixed scripts: one line per run keeps each run on a face that
		// covers it.
		for _, run := range runs {
			c.ensure(25)
			c.drawSegmented(run.Text, indentX, c.y, 12, pdf.Black)
			c.y -= 20
		}
	} else {
		c.wrappedText(text, indentX, pageWidth-120, 12, c.fonts.forClass(runs[0].Class))
	}
	c.y -= 20
}

func (r *Renderer) photoGallery(c *cursor, photos []report.Photo) {
	if len(photos) == 0 {
		return
	}
	c.sectionTitle("SCENE PHOTOS", "ภาพถ่ายที่เกิดเหตุ")

	shown := len(photos)
	if shown > maxEmbeddedPhotos {
		shown = maxEmbeddedPhotos
	}
	for i := 0; i < shown; i++ {
		photo := photos[i]
		c.ensure(200)

		caption := fmt.Sprintf("%d. %s", i+1, report.PhotoTypeText(photo.PhotoType))
		if photo.Caption != nil && *photo.Caption != "" {
			caption += " - " + *photo.Caption
		}
		c.drawSegmented(caption, indentX, c.y, 12, pdf.Black)
		c.y -= 25

		if img, err := r.loadPhoto(photo.ImageURL); err != nil {
			log.Warnf("photo %s degraded to placeholder: %v", photo.ImageURL, err)
			c.page.DrawText(c.fonts.latin, 10, indentX, c.y, pdf.Gray, placeholderFor(err))
			c.y -= 20
		} else {
			w, h := scaleToBox(img.Width, img.Height)
			c.page.DrawImage(img, indentX, c.y-h, w, h)
			c.y -= h + 20
		}
		c.y -= 10
	}

	if len(photos) > shown {
		c.page.DrawText(c.fonts.latin, 10, indentX, c.y, pdf.Gray,
			fmt.Sprintf("... and %d more photos", len(photos)-shown))
		c.y -= 20
	}
}

func optTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return enDateTime(*t)
}

func optStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
