package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Color is an RGB color with components in [0, 1].
type Color struct {
	R, G, B float64
}

var (
	Black = Color{0, 0, 0}
	Gray  = Color{0.5, 0.5, 0.5}
)

// Info carries the document information dictionary. Values should stay
// ASCII; the writer emits them as literal strings without UTF-16 escaping.
type Info struct {
	Title        string
	Author       string
	Subject      string
	Keywords     []string
	Creator      string
	Producer     string
	CreationDate time.Time
}

// Document accumulates pages, fonts, and metadata, and serializes to PDF
// bytes. One Document serves one render and is not safe for concurrent use.
type Document struct {
	pages    []*Page
	fonts    []*Font
	info     *Info
	imgCount int
}

func NewDocument() *Document { return &Document{} }

// AddFont binds a font to this document and assigns its resource name.
// Adding the same *Font twice is a no-op.
func (d *Document) AddFont(f *Font) *Font {
	if f.res != "" {
		return f
	}
	f.res = fmt.Sprintf("F%d", len(d.fonts)+1)
	d.fonts = append(d.fonts, f)
	return f
}

// AddPage appends a page of the given size in user units and returns it.
func (d *Document) AddPage(width, height float64) *Page {
	p := &Page{
		Width:  width,
		Height: height,
		doc:    d,
		images: make(map[string]*Image),
	}
	d.pages = append(d.pages, p)
	return p
}

func (d *Document) SetInfo(info Info) { d.info = &info }

func (d *Document) PageCount() int { return len(d.pages) }

// Page is a single output page with a write-only content stream.
type Page struct {
	Width  float64
	Height float64

	doc      *Document
	content  bytes.Buffer
	images   map[string]*Image
	imgNames map[*Image]string
}

// DrawText places a single line of text with its baseline at (x, y).
func (p *Page) DrawText(f *Font, size, x, y float64, c Color, text string) {
	if text == "" {
		return
	}
	p.doc.AddFont(f)
	encoded := f.encodeText(text)
	p.content.WriteString("BT ")
	p.content.WriteString("/" + f.res + " " + ftoa(size) + " Tf ")
	p.content.WriteString("1 0 0 1 " + ftoa(x) + " " + ftoa(y) + " Tm ")
	p.content.WriteString(ftoa(c.R) + " " + ftoa(c.G) + " " + ftoa(c.B) + " rg ")
	p.content.WriteByte('<')
	const hexdigits = "0123456789ABCDEF"
	for _, b := range encoded {
		p.content.WriteByte(hexdigits[b>>4])
		p.content.WriteByte(hexdigits[b&0xf])
	}
	p.content.WriteString("> Tj ET\n")
}

// DrawLine strokes a straight line between two points.
func (p *Page) DrawLine(x1, y1, x2, y2, width float64, c Color) {
	p.content.WriteString("q ")
	p.content.WriteString(ftoa(c.R) + " " + ftoa(c.G) + " " + ftoa(c.B) + " RG ")
	p.content.WriteString(ftoa(width) + " w ")
	p.content.WriteString(ftoa(x1) + " " + ftoa(y1) + " m ")
	p.content.WriteString(ftoa(x2) + " " + ftoa(y2) + " l S Q\n")
}

// DrawImage places img into the rectangle with lower-left corner (x, y).
func (p *Page) DrawImage(img *Image, x, y, w, h float64) {
	if img == nil {
		return
	}
	if p.imgNames == nil {
		p.imgNames = make(map[*Image]string)
	}
	name, ok := p.imgNames[img]
	if !ok {
		p.doc.imgCount++
		name = fmt.Sprintf("Im%d", p.doc.imgCount)
		p.imgNames[img] = name
		p.images[name] = img
	}
	p.content.WriteString("q ")
	p.content.WriteString(ftoa(w) + " 0 0 " + ftoa(h) + " " + ftoa(x) + " " + ftoa(y) + " cm ")
	p.content.WriteString("/" + name + " Do Q\n")
}

// ftoa formats a coordinate compactly; three decimals is plenty for text
// placement at A4 scale.
func ftoa(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = trimTrailingZeros(s)
	return s
}

func trimTrailingZeros(s string) string {
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}
