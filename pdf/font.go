package pdf

import (
	"fmt"
	"math"
	"strings"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Font is a TrueType face embedded as a Type0 Identity-H CID font. Text is
// encoded as 2-byte glyph IDs; glyph widths and the ToUnicode mapping are
// accumulated lazily from the runes actually drawn, so the W array in the
// output covers only what the document uses.
//
// A Font instance belongs to one document render and is not safe for
// concurrent use (the sfnt scratch buffer is shared).
type Font struct {
	res      string // resource name, assigned when added to a Document
	baseName string
	data     []byte

	sf         *sfnt.Font
	sbuf       sfnt.Buffer
	unitsPerEm sfnt.Units
	ppem       fixed.Int26_6

	ascent      float64
	descent     float64
	capHeight   float64
	italicAngle float64
	bbox        [4]float64

	glyphs map[rune]sfnt.GlyphIndex
	widths map[sfnt.GlyphIndex]int
	toUni  map[int]rune // gid -> source rune, for ToUnicode
}

// LoadTrueType parses TrueType/OpenType bytes and prepares the font for
// Identity-H embedding. The full font file is embedded (no subsetting).
func LoadTrueType(name string, data []byte) (*Font, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("truetype font data is empty")
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse truetype: %w", err)
	}
	unitsPerEm := sf.UnitsPerEm()
	if unitsPerEm == 0 {
		return nil, fmt.Errorf("truetype font has invalid unitsPerEm")
	}

	f := &Font{
		baseName:   strings.TrimSpace(name),
		data:       data,
		sf:         sf,
		unitsPerEm: unitsPerEm,
		ppem:       fixed.Int26_6(int32(unitsPerEm) << 6),
		glyphs:     make(map[rune]sfnt.GlyphIndex),
		widths:     make(map[sfnt.GlyphIndex]int),
		toUni:      make(map[int]rune),
	}
	if ps, _ := sf.Name(&f.sbuf, sfnt.NameIDPostScript); ps != "" {
		f.baseName = sanitizeFontName(ps)
	}
	if f.baseName == "" {
		f.baseName = "EmbeddedTT"
	}

	metrics, err := sf.Metrics(&f.sbuf, f.ppem, xfont.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("truetype metrics: %w", err)
	}
	f.ascent = f.scale(metrics.Ascent)
	f.descent = -f.scale(metrics.Descent)
	f.capHeight = f.scale(metrics.CapHeight)
	if f.capHeight == 0 {
		f.capHeight = f.ascent
	}
	if bounds, err := sf.Bounds(&f.sbuf, f.ppem, xfont.HintingNone); err == nil {
		f.bbox = [4]float64{
			f.scale(bounds.Min.X),
			-f.scale(bounds.Max.Y),
			f.scale(bounds.Max.X),
			-f.scale(bounds.Min.Y),
		}
	}
	if post := sf.PostTable(); post != nil {
		f.italicAngle = post.ItalicAngle
	}
	return f, nil
}

// BuiltinRegular returns the compiled-in Go Regular face. It stands in when
// no configured Latin font file can be loaded (ASCII coverage only for the
// scripts this service cares about).
func BuiltinRegular() *Font { return mustBuiltin("GoRegular", goregular.TTF) }

// BuiltinBold returns the compiled-in Go Bold face used for headings.
func BuiltinBold() *Font { return mustBuiltin("GoBold", gobold.TTF) }

func mustBuiltin(name string, data []byte) *Font {
	f, err := LoadTrueType(name, data)
	if err != nil {
		// The gofont data is compiled into the binary; failing to parse it
		// is a build defect, not a runtime condition.
		panic(fmt.Sprintf("pdf: builtin font %s: %v", name, err))
	}
	return f
}

// HasGlyph reports whether the face maps r to a real glyph.
func (f *Font) HasGlyph(r rune) bool { return f.glyphIndex(r) != 0 }

// BaseName returns the PostScript name used in the font dictionary.
func (f *Font) BaseName() string { return f.baseName }

func (f *Font) glyphIndex(r rune) sfnt.GlyphIndex {
	if gid, ok := f.glyphs[r]; ok {
		return gid
	}
	gid, err := f.sf.GlyphIndex(&f.sbuf, r)
	if err != nil {
		gid = 0
	}
	f.glyphs[r] = gid
	return gid
}

func (f *Font) glyphWidth(gid sfnt.GlyphIndex) int {
	if w, ok := f.widths[gid]; ok {
		return w
	}
	adv, err := f.sf.GlyphAdvance(&f.sbuf, gid, f.ppem, xfont.HintingNone)
	w := 500
	if err == nil {
		w = int(math.Round(f.scale(adv)))
	}
	f.widths[gid] = w
	return w
}

// encodeText maps text to big-endian 2-byte glyph IDs and records each rune
// for the ToUnicode CMap. Unmapped runes encode as .notdef.
func (f *Font) encodeText(text string) []byte {
	out := make([]byte, 0, len(text)*2)
	for _, r := range text {
		gid := f.glyphIndex(r)
		f.glyphWidth(gid)
		if gid != 0 {
			if _, seen := f.toUni[int(gid)]; !seen {
				f.toUni[int(gid)] = r
			}
		}
		out = append(out, byte(gid>>8), byte(gid))
	}
	return out
}

// TextWidth measures text at the given size in user units.
func (f *Font) TextWidth(text string, size float64) float64 {
	var total int
	for _, r := range text {
		total += f.glyphWidth(f.glyphIndex(r))
	}
	return float64(total) / 1000 * size
}

func (f *Font) scale(v fixed.Int26_6) float64 {
	return float64(v) * 1000 / (64 * float64(f.unitsPerEm))
}

// sanitizeFontName strips characters that are not valid in a PDF name.
func sanitizeFontName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r > ' ' && r < 0x7f && r != '/' && r != '(' && r != ')' && r != '<' && r != '>' && r != '[' && r != ']' && r != '%' && r != '#' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
