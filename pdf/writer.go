package pdf

import (
	"bytes"
	"compress/flate"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf16"

	"golang.org/x/image/font/sfnt"
)

// Bytes serializes the document: body objects in allocation order, a
// classic xref table, and a trailer. Content streams and font files are
// FlateDecode-compressed.
func (d *Document) Bytes() ([]byte, error) {
	w := &docWriter{objects: make(map[int]obj)}

	catalogRef := w.nextRef()
	pagesRef := w.nextRef()

	fontRefs := make(map[*Font]objRef, len(d.fonts))
	for _, f := range d.fonts {
		ref, err := w.addFont(f)
		if err != nil {
			return nil, err
		}
		fontRefs[f] = ref
	}

	pageRefs := make([]objRef, 0, len(d.pages))
	for _, p := range d.pages {
		contentRef, err := w.addContentStream(p.content.Bytes())
		if err != nil {
			return nil, err
		}

		fontRes := newDict()
		for _, f := range d.fonts {
			fontRes.set(f.res, refObj(fontRefs[f]))
		}
		res := newDict()
		res.set("Font", fontRes)
		res.set("ProcSet", arrObj{nameObj("PDF"), nameObj("Text"), nameObj("ImageC")})
		if len(p.images) > 0 {
			xobjs := newDict()
			names := make([]string, 0, len(p.images))
			for name := range p.images {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				imgRef, err := w.addImage(p.images[name])
				if err != nil {
					return nil, err
				}
				xobjs.set(name, refObj(imgRef))
			}
			res.set("XObject", xobjs)
		}

		pageDict := newDict()
		pageDict.set("Type", nameObj("Page"))
		pageDict.set("Parent", refObj(pagesRef))
		pageDict.set("MediaBox", arrObj{intObj(0), intObj(0), realObj(p.Width), realObj(p.Height)})
		pageDict.set("Resources", res)
		pageDict.set("Contents", refObj(contentRef))
		ref := w.nextRef()
		w.objects[ref.Num] = pageDict
		pageRefs = append(pageRefs, ref)
	}

	kids := make(arrObj, 0, len(pageRefs))
	for _, r := range pageRefs {
		kids = append(kids, refObj(r))
	}
	pagesDict := newDict()
	pagesDict.set("Type", nameObj("Pages"))
	pagesDict.set("Count", intObj(len(pageRefs)))
	pagesDict.set("Kids", kids)
	w.objects[pagesRef.Num] = pagesDict

	catalogDict := newDict()
	catalogDict.set("Type", nameObj("Catalog"))
	catalogDict.set("Pages", refObj(pagesRef))
	w.objects[catalogRef.Num] = catalogDict

	var infoRef *objRef
	if d.info != nil {
		ref := w.addInfo(d.info)
		infoRef = &ref
	}

	return w.serialize(catalogRef, infoRef)
}

type docWriter struct {
	objects map[int]obj
	nextNum int
}

func (w *docWriter) nextRef() objRef {
	w.nextNum++
	return objRef{Num: w.nextNum}
}

func (w *docWriter) addContentStream(data []byte) (objRef, error) {
	compressed, err := flateEncode(data)
	if err != nil {
		return objRef{}, fmt.Errorf("compress content stream: %w", err)
	}
	dict := newDict()
	dict.set("Filter", nameObj("FlateDecode"))
	ref := w.nextRef()
	w.objects[ref.Num] = newStream(dict, compressed)
	return ref, nil
}

// addFont emits the Type0 font cluster: composite font dict, descendant
// CIDFontType2 dict, font descriptor with the FontFile2 stream, and the
// ToUnicode CMap for text extraction.
func (w *docWriter) addFont(f *Font) (objRef, error) {
	fontFile, err := flateEncode(f.data)
	if err != nil {
		return objRef{}, fmt.Errorf("compress font file: %w", err)
	}
	ffDict := newDict()
	ffDict.set("Filter", nameObj("FlateDecode"))
	ffDict.set("Length1", intObj(len(f.data)))
	ffRef := w.nextRef()
	w.objects[ffRef.Num] = newStream(ffDict, fontFile)

	desc := newDict()
	desc.set("Type", nameObj("FontDescriptor"))
	desc.set("FontName", nameObj(f.baseName))
	desc.set("Flags", intObj(4))
	desc.set("ItalicAngle", realObj(f.italicAngle))
	desc.set("Ascent", realObj(f.ascent))
	desc.set("Descent", realObj(f.descent))
	desc.set("CapHeight", realObj(f.capHeight))
	desc.set("StemV", intObj(80))
	desc.set("FontBBox", arrObj{realObj(f.bbox[0]), realObj(f.bbox[1]), realObj(f.bbox[2]), realObj(f.bbox[3])})
	desc.set("FontFile2", refObj(ffRef))
	descRef := w.nextRef()
	w.objects[descRef.Num] = desc

	sysInfo := newDict()
	sysInfo.set("Registry", strObj("Adobe"))
	sysInfo.set("Ordering", strObj("Identity"))
	sysInfo.set("Supplement", intObj(0))

	cid := newDict()
	cid.set("Type", nameObj("Font"))
	cid.set("Subtype", nameObj("CIDFontType2"))
	cid.set("BaseFont", nameObj(f.baseName))
	cid.set("CIDSystemInfo", sysInfo)
	cid.set("CIDToGIDMap", nameObj("Identity"))
	cid.set("DW", intObj(1000))
	if warr := cidWidthRuns(f); len(warr) > 0 {
		cid.set("W", warr)
	}
	cid.set("FontDescriptor", refObj(descRef))
	cidRef := w.nextRef()
	w.objects[cidRef.Num] = cid

	fontDict := newDict()
	fontDict.set("Type", nameObj("Font"))
	fontDict.set("Subtype", nameObj("Type0"))
	fontDict.set("BaseFont", nameObj(f.baseName))
	fontDict.set("Encoding", nameObj("Identity-H"))
	fontDict.set("DescendantFonts", arrObj{refObj(cidRef)})
	if cmap := toUnicodeCMap(f); len(cmap) > 0 {
		compressed, err := flateEncode(cmap)
		if err != nil {
			return objRef{}, fmt.Errorf("compress tounicode: %w", err)
		}
		cmDict := newDict()
		cmDict.set("Filter", nameObj("FlateDecode"))
		cmRef := w.nextRef()
		w.objects[cmRef.Num] = newStream(cmDict, compressed)
		fontDict.set("ToUnicode", refObj(cmRef))
	}
	ref := w.nextRef()
	w.objects[ref.Num] = fontDict
	return ref, nil
}

func (w *docWriter) addImage(img *Image) (objRef, error) {
	dict := newDict()
	dict.set("Type", nameObj("XObject"))
	dict.set("Subtype", nameObj("Image"))
	dict.set("Width", intObj(img.Width))
	dict.set("Height", intObj(img.Height))
	dict.set("ColorSpace", nameObj(img.colorSpace))
	dict.set("BitsPerComponent", intObj(8))

	data := img.data
	if img.filter != "" {
		dict.set("Filter", nameObj(img.filter))
	} else {
		compressed, err := flateEncode(img.data)
		if err != nil {
			return objRef{}, fmt.Errorf("compress image samples: %w", err)
		}
		data = compressed
		dict.set("Filter", nameObj("FlateDecode"))
	}
	if img.smask != nil {
		maskRef, err := w.addImage(img.smask)
		if err != nil {
			return objRef{}, err
		}
		dict.set("SMask", refObj(maskRef))
	}
	ref := w.nextRef()
	w.objects[ref.Num] = newStream(dict, data)
	return ref, nil
}

func (w *docWriter) addInfo(info *Info) objRef {
	dict := newDict()
	if info.Title != "" {
		dict.set("Title", strObj(info.Title))
	}
	if info.Author != "" {
		dict.set("Author", strObj(info.Author))
	}
	if info.Subject != "" {
		dict.set("Subject", strObj(info.Subject))
	}
	if len(info.Keywords) > 0 {
		dict.set("Keywords", strObj(strings.Join(info.Keywords, ",")))
	}
	if info.Creator != "" {
		dict.set("Creator", strObj(info.Creator))
	}
	if info.Producer != "" {
		dict.set("Producer", strObj(info.Producer))
	}
	if !info.CreationDate.IsZero() {
		dict.set("CreationDate", strObj(pdfDate(info.CreationDate)))
	}
	ref := w.nextRef()
	w.objects[ref.Num] = dict
	return ref
}

func (w *docWriter) serialize(catalogRef objRef, infoRef *objRef) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")

	offsets := make(map[int]int64, len(w.objects))
	nums := make([]int, 0, len(w.objects))
	for num := range w.objects {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	for _, num := range nums {
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n", num)
		w.objects[num].serialize(&buf)
		buf.WriteString("\nendobj\n")
	}

	maxNum := nums[len(nums)-1]
	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxNum; i++ {
		if off, ok := offsets[i]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}

	trailer := newDict()
	trailer.set("Size", intObj(maxNum+1))
	trailer.set("Root", refObj(catalogRef))
	if infoRef != nil {
		trailer.set("Info", refObj(*infoRef))
	}
	buf.WriteString("trailer\n")
	trailer.serialize(&buf)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes(), nil
}

// cidWidthRuns compacts glyph widths into the /W run format:
// consecutive glyph IDs with equal widths collapse to "start end width".
func cidWidthRuns(f *Font) arrObj {
	if len(f.widths) == 0 {
		return nil
	}
	gids := make([]int, 0, len(f.widths))
	for gid := range f.widths {
		gids = append(gids, int(gid))
	}
	sort.Ints(gids)

	var arr arrObj
	start, prev := gids[0], gids[0]
	current := f.widths[sfnt.GlyphIndex(gids[0])]
	flush := func() {
		arr = append(arr, intObj(start), intObj(prev), intObj(current))
	}
	for _, gid := range gids[1:] {
		wv := f.widths[sfnt.GlyphIndex(gid)]
		if wv == current && gid == prev+1 {
			prev = gid
			continue
		}
		flush()
		start, prev, current = gid, gid, wv
	}
	flush()
	return arr
}

// toUnicodeCMap renders the bfchar CMap for the glyphs used so far, in
// chunks of at most 100 entries per the CMap spec.
func toUnicodeCMap(f *Font) []byte {
	if len(f.toUni) == 0 {
		return nil
	}
	gids := make([]int, 0, len(f.toUni))
	for gid := range f.toUni {
		gids = append(gids, gid)
	}
	sort.Ints(gids)

	var buf bytes.Buffer
	buf.WriteString("/CIDInit /ProcSet findresource begin\n")
	buf.WriteString("12 dict begin\n")
	buf.WriteString("begincmap\n")
	buf.WriteString("/CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> def\n")
	fmt.Fprintf(&buf, "/CMapName /%s-UTF16 def\n", strings.ReplaceAll(f.baseName, " ", ""))
	buf.WriteString("/CMapType 2 def\n")
	buf.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")
	for i := 0; i < len(gids); {
		chunk := len(gids) - i
		if chunk > 100 {
			chunk = 100
		}
		fmt.Fprintf(&buf, "%d beginbfchar\n", chunk)
		for j := 0; j < chunk; j++ {
			gid := gids[i+j]
			fmt.Fprintf(&buf, "<%04X> <%s>\n", gid, utf16Hex(f.toUni[gid]))
		}
		buf.WriteString("endbfchar\n")
		i += chunk
	}
	buf.WriteString("endcmap\n")
	buf.WriteString("CMapName currentdict /CMap defineresource pop\n")
	buf.WriteString("end\nend\n")
	return buf.Bytes()
}

func utf16Hex(r rune) string {
	var b strings.Builder
	for _, u := range utf16.Encode([]rune{r}) {
		fmt.Fprintf(&b, "%04X", u)
	}
	return b.String()
}

func flateEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pdfDate formats t in the D:YYYYMMDDHHmmSS+HH'mm' form.
func pdfDate(t time.Time) string {
	_, offset := t.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("D:%s%c%02d'%02d'", t.Format("20060102150405"), sign, offset/3600, (offset%3600)/60)
}
