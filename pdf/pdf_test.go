package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

func TestLoadTrueType(t *testing.T) {
	f, err := LoadTrueType("Test", goregular.TTF)
	if err != nil {
		t.Fatalf("LoadTrueType: %v", err)
	}
	if f.BaseName() == "" {
		t.Fatalf("base name is empty")
	}
	if !f.HasGlyph('A') {
		t.Fatalf("no glyph for 'A'")
	}
	if f.HasGlyph('中') {
		t.Fatalf("Go Regular claims CJK coverage")
	}
	if f.ascent <= 0 {
		t.Fatalf("ascent = %v", f.ascent)
	}
	if f.descent >= 0 {
		t.Fatalf("descent = %v, want negative", f.descent)
	}
}

func TestLoadTrueTypeRejectsGarbage(t *testing.T) {
	if _, err := LoadTrueType("Bad", []byte("not a font")); err == nil {
		t.Fatalf("garbage parsed as a font")
	}
	if _, err := LoadTrueType("Empty", nil); err == nil {
		t.Fatalf("empty data parsed as a font")
	}
}

func TestTextWidth(t *testing.T) {
	f := BuiltinRegular()
	w1 := f.TextWidth("i", 12)
	w2 := f.TextWidth("WWW", 12)
	if w1 <= 0 || w2 <= 0 {
		t.Fatalf("widths not positive: %v, %v", w1, w2)
	}
	if w2 <= w1 {
		t.Fatalf("'WWW' (%v) not wider than 'i' (%v)", w2, w1)
	}
	if f.TextWidth("", 12) != 0 {
		t.Fatalf("empty string has nonzero width")
	}
}

func TestEncodeText(t *testing.T) {
	f := BuiltinRegular()
	enc := f.encodeText("Hi")
	if len(enc) != 4 {
		t.Fatalf("encoded length = %d, want 4", len(enc))
	}
	if len(f.toUni) != 2 {
		t.Fatalf("toUni entries = %d, want 2", len(f.toUni))
	}
	// Unmapped runes become .notdef without being recorded.
	enc = f.encodeText("中")
	if enc[0] != 0 || enc[1] != 0 {
		t.Fatalf("unmapped rune encoded as %x", enc[:2])
	}
	if len(f.toUni) != 2 {
		t.Fatalf("notdef leaked into toUni")
	}
}

func TestDocumentBytes(t *testing.T) {
	doc := NewDocument()
	f := BuiltinRegular()
	page := doc.AddPage(595, 842)
	page.DrawText(f, 12, 50, 800, Black, "Hello PDF")
	page.DrawLine(50, 790, 545, 790, 1, Gray)
	doc.SetInfo(Info{
		Title:        "Test Document",
		Author:       "tester",
		CreationDate: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	})

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-1.7\n")) {
		t.Fatalf("missing header")
	}
	if !bytes.HasSuffix(out, []byte("%%EOF\n")) {
		t.Fatalf("missing EOF marker")
	}
	for _, want := range []string{
		"/Type /Catalog", "/Type /Pages", "/Type /Page>>",
		"/Subtype /Type0", "/Subtype /CIDFontType2", "/Encoding /Identity-H",
		"/FontFile2", "/Length1", "/ToUnicode", "/Title (Test Document)",
		"xref", "trailer", "startxref",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
	// One xref entry per object plus the free-list head.
	objs := bytes.Count(out, []byte(" 0 obj\n"))
	entries := bytes.Count(out, []byte(" n \n"))
	if objs == 0 || entries != objs {
		t.Fatalf("xref entries = %d, objects = %d", entries, objs)
	}
}

func TestDocumentMultiplePages(t *testing.T) {
	doc := NewDocument()
	f := BuiltinRegular()
	for i := 0; i < 3; i++ {
		page := doc.AddPage(595, 842)
		page.DrawText(f, 10, 50, 800, Black, fmt.Sprintf("page %d", i+1))
	}
	if doc.PageCount() != 3 {
		t.Fatalf("PageCount = %d", doc.PageCount())
	}
	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if n := bytes.Count(out, []byte("/Type /Page>>")); n != 3 {
		t.Fatalf("page objects = %d, want 3", n)
	}
	if !bytes.Contains(out, []byte("/Count 3")) {
		t.Fatalf("pages node count missing")
	}
}

func TestCIDWidthRuns(t *testing.T) {
	f := &Font{widths: map[sfnt.GlyphIndex]int{
		10: 500, 11: 500, 12: 500, // one run
		14: 600, // gap breaks the run
		15: 700,
	}}
	arr := cidWidthRuns(f)
	want := arrObj{
		intObj(10), intObj(12), intObj(500),
		intObj(14), intObj(14), intObj(600),
		intObj(15), intObj(15), intObj(700),
	}
	if len(arr) != len(want) {
		t.Fatalf("runs = %v, want %v", arr, want)
	}
	for i := range want {
		if arr[i] != want[i] {
			t.Fatalf("runs[%d] = %v, want %v", i, arr[i], want[i])
		}
	}
}

func TestToUnicodeCMapChunks(t *testing.T) {
	f := &Font{baseName: "Chunky", toUni: make(map[int]rune)}
	for i := 0; i < 150; i++ {
		f.toUni[i+1] = rune('A' + i%26)
	}
	cmap := toUnicodeCMap(f)
	if n := bytes.Count(cmap, []byte("beginbfchar")); n != 2 {
		t.Fatalf("bfchar chunks = %d, want 2", n)
	}
	if !bytes.Contains(cmap, []byte("100 beginbfchar")) {
		t.Fatalf("first chunk is not capped at 100 entries")
	}
	if !bytes.Contains(cmap, []byte("50 beginbfchar")) {
		t.Fatalf("second chunk size wrong")
	}
}

func TestDecodeJPEGPassthrough(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := DecodeJPEG(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeJPEG: %v", err)
	}
	if img.Width != 8 || img.Height != 4 {
		t.Fatalf("dimensions = %dx%d", img.Width, img.Height)
	}
	if img.filter != "DCTDecode" {
		t.Fatalf("filter = %q", img.filter)
	}
	if !bytes.Equal(img.data, buf.Bytes()) {
		t.Fatalf("jpeg bytes were re-encoded")
	}
}

func TestDecodePNGWithAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(1, 1, color.NRGBA{G: 255, A: 100})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := DecodePNG(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if img.colorSpace != "DeviceRGB" {
		t.Fatalf("color space = %q", img.colorSpace)
	}
	if len(img.data) != 2*2*3 {
		t.Fatalf("sample length = %d", len(img.data))
	}
	if img.smask == nil {
		t.Fatalf("translucent pixel did not produce a soft mask")
	}
	if img.smask.data[3] != 100 {
		t.Fatalf("smask alpha = %d, want 100", img.smask.data[3])
	}
}

func TestDecodePNGOpaqueHasNoMask(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := DecodePNG(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if img.smask != nil {
		t.Fatalf("opaque image produced a soft mask")
	}
}

func TestPDFDate(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	got := pdfDate(time.Date(2025, 3, 14, 9, 30, 0, 0, loc))
	if got != "D:20250314093000+07'00'" {
		t.Fatalf("pdfDate = %q", got)
	}
	got = pdfDate(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC))
	if got != "D:20250314093000+00'00'" {
		t.Fatalf("utc pdfDate = %q", got)
	}
}
