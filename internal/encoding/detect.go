// Package encoding normalizes spreadsheet exports to UTF-8 before they are parsed.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset is the name of the encoding the input was decoded from.
type Charset string

const (
	CharsetUTF8        Charset = "UTF-8"
	CharsetUTF16LE     Charset = "UTF-16LE"
	CharsetUTF16BE     Charset = "UTF-16BE"
	CharsetWindows1252 Charset = "windows-1252"
	CharsetWindows1251 Charset = "windows-1251"
	CharsetKOI8R       Charset = "KOI8-R"
	CharsetISO88595    Charset = "ISO-8859-5"
	CharsetISO88599    Charset = "ISO-8859-9"
)

const sniffSize = 4096

var boms = []struct {
	prefix  []byte
	charset Charset
}{
	{[]byte{0xEF, 0xBB, 0xBF}, CharsetUTF8},
	{[]byte{0xFF, 0xFE}, CharsetUTF16LE},
	{[]byte{0xFE, 0xFF}, CharsetUTF16BE},
}

// detected maps chardet charset names to single-byte decoders. Cyrillic code pages
// cover labels exported from Mongolian and Russian spreadsheets.
var detected = map[string]struct {
	charset Charset
	decoder *charmap.Charmap
}{
	"ISO-8859-1":   {CharsetWindows1252, charmap.Windows1252},
	"windows-1252": {CharsetWindows1252, charmap.Windows1252},
	"windows-1251": {CharsetWindows1251, charmap.Windows1251},
	"KOI8-R":       {CharsetKOI8R, charmap.KOI8R},
	"ISO-8859-5":   {CharsetISO88595, charmap.ISO8859_5},
	"ISO-8859-9":   {CharsetISO88599, charmap.ISO8859_9},
}

// NewUTF8Reader returns a reader yielding r's content as UTF-8.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	out, _, err := Detect(r)
	return out, err
}

// Detect sniffs the start of r and returns a UTF-8 reader over it plus the charset
// that was decoded. Order: BOM, valid UTF-8, chardet heuristics, windows-1252.
func Detect(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(buf, b.prefix) {
			continue
		}

		switch b.charset {
		case CharsetUTF8:
			_, _ = br.Discard(len(b.prefix))
			return br, CharsetUTF8, nil
		case CharsetUTF16LE:
			return decode(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)), CharsetUTF16LE, nil
		case CharsetUTF16BE:
			return decode(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)), CharsetUTF16BE, nil
		}
	}

	if utf8.Valid(buf) {
		return br, CharsetUTF8, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if result.Charset == string(CharsetUTF8) {
			return br, CharsetUTF8, nil
		}

		if d, ok := detected[result.Charset]; ok {
			return decode(br, d.decoder), d.charset, nil
		}
	}

	return decode(br, charmap.Windows1252), CharsetWindows1252, nil
}

func decode(r io.Reader, enc xencoding.Encoding) io.Reader {
	return transform.NewReader(r, enc.NewDecoder())
}
