package render

import (
	"bytes"

	"github.com/apex/log"

	"github.com/driveeasy/reportkit/fontkit"
	"github.com/driveeasy/reportkit/pdf"
	"github.com/driveeasy/reportkit/script"
)

// fontSet binds the three font roles to one output document. Fonts carry
// per-document glyph state, so a fresh set is built for every render from
// the provider's cached bytes.
type fontSet struct {
	latin *pdf.Font // also covers Thai when a real candidate loaded
	cjk   *pdf.Font
	bold  *pdf.Font
}

func newFontSet(set fontkit.Set) fontSet {
	fs := fontSet{bold: pdf.BuiltinBold()}

	if set.Latin != nil {
		f, err := pdf.LoadTrueType("ReportLatin", set.Latin)
		if err != nil {
			log.Warnf("latin font unusable, falling back to builtin: %v", err)
		} else {
			fs.latin = f
		}
	}
	if fs.latin == nil {
		fs.latin = pdf.BuiltinRegular()
	}

	if set.CJK != nil && !bytes.Equal(set.CJK, set.Latin) {
		f, err := pdf.LoadTrueType("ReportCJK", set.CJK)
		if err != nil {
			log.Warnf("cjk font unusable, reusing latin face: %v", err)
		} else {
			fs.cjk = f
		}
	}
	if fs.cjk == nil {
		fs.cjk = fs.latin
	}
	return fs
}

// forClass picks the face for a script run: CJK scripts share the CJK
// face, Thai rides on the Latin face, everything else is Latin.
func (fs fontSet) forClass(c script.Class) *pdf.Font {
	switch c {
	case script.Chinese, script.Japanese, script.Korean:
		return fs.cjk
	default:
		return fs.latin
	}
}
