package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// objRef identifies an indirect object in the output file.
type objRef struct {
	Num int
	Gen int
}

func (r objRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// obj is the base interface for the raw object kinds the writer emits.
type obj interface {
	serialize(buf *bytes.Buffer)
}

type nameObj string

func (n nameObj) serialize(buf *bytes.Buffer) {
	buf.WriteByte('/')
	buf.WriteString(string(n))
}

type intObj int64

func (n intObj) serialize(buf *bytes.Buffer) {
	buf.WriteString(strconv.FormatInt(int64(n), 10))
}

type realObj float64

func (n realObj) serialize(buf *bytes.Buffer) {
	buf.WriteString(strconv.FormatFloat(float64(n), 'f', -1, 64))
}

type boolObj bool

func (b boolObj) serialize(buf *bytes.Buffer) {
	if b {
		buf.WriteString("true")
	} else {
		buf.WriteString("false")
	}
}

// strObj serializes as a literal string with the required escapes.
type strObj []byte

func (s strObj) serialize(buf *bytes.Buffer) {
	buf.WriteByte('(')
	for _, c := range s {
		switch c {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
}

type refObj objRef

func (r refObj) serialize(buf *bytes.Buffer) {
	buf.WriteString(objRef(r).String())
}

type arrObj []obj

func (a arrObj) serialize(buf *bytes.Buffer) {
	buf.WriteByte('[')
	for i, it := range a {
		if i > 0 {
			buf.WriteByte(' ')
		}
		it.serialize(buf)
	}
	buf.WriteByte(']')
}

// dictObj keeps insertion order out of the serialized form: keys are sorted
// so output is deterministic for identical input.
type dictObj struct {
	kv map[string]obj
}

func newDict() *dictObj { return &dictObj{kv: make(map[string]obj)} }

func (d *dictObj) set(key string, value obj) { d.kv[key] = value }

func (d *dictObj) serialize(buf *bytes.Buffer) {
	buf.WriteString("<<")
	keys := make([]string, 0, len(d.kv))
	for k := range d.kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteByte('/')
		buf.WriteString(k)
		buf.WriteByte(' ')
		d.kv[k].serialize(buf)
	}
	buf.WriteString(">>")
}

// streamObj owns its dictionary; Length is filled in during serialization.
type streamObj struct {
	dict *dictObj
	data []byte
}

func newStream(dict *dictObj, data []byte) *streamObj {
	return &streamObj{dict: dict, data: data}
}

func (s *streamObj) serialize(buf *bytes.Buffer) {
	s.dict.set("Length", intObj(len(s.data)))
	s.dict.serialize(buf)
	buf.WriteString("\nstream\n")
	buf.Write(s.data)
	buf.WriteString("\nendstream")
}
