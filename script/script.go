// Package script classifies runes into writing-system groups and splits
// mixed-language text into maximal same-script runs so each run can be
// drawn with the font that actually covers it.
package script

// Class names the writing system a rune belongs to for font selection
// purposes. Anything outside the recognized CJK and Thai blocks counts as
// Latin, including digits, punctuation, and whitespace.
type Class string

const (
	Latin    Class = "latin"
	Chinese  Class = "chinese"
	Thai     Class = "thai"
	Japanese Class = "japanese"
	Korean   Class = "korean"
)

// Run is a maximal substring whose runes all share one script class.
type Run struct {
	Text  string
	Class Class
}

var blocks = []struct {
	lo, hi rune
	class  Class
}{
	{0x0E00, 0x0E7F, Thai},
	{0x3040, 0x309F, Japanese}, // hiragana
	{0x30A0, 0x30FF, Japanese}, // katakana
	{0x4E00, 0x9FFF, Chinese},
	{0xAC00, 0xD7AF, Korean},
}

// Classify maps a rune to its script class.
func Classify(r rune) Class {
	for _, b := range blocks {
		if r >= b.lo && r <= b.hi {
			return b.class
		}
	}
	return Latin
}

// Segment splits text into maximal runs of a single script class, in
// source order. Concatenating the run texts reproduces the input exactly.
// Empty input yields nil.
func Segment(text string) []Run {
	if text == "" {
		return nil
	}
	var runs []Run
	start := 0
	current := Class("")
	for i, r := range text {
		c := Classify(r)
		if c != current {
			if current != "" {
				runs = append(runs, Run{Text: text[start:i], Class: current})
			}
			start = i
			current = c
		}
	}
	runs = append(runs, Run{Text: text[start:], Class: current})
	return runs
}
