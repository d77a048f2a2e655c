package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names the encoding Decode settled on.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF8BOM     Charset = "UTF-8 BOM"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO885915   Charset = "ISO-8859-15"
)

const sniffLen = 8192

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode detects the charset of a text export and returns a reader yielding
// UTF-8.
//
// Detection order:
//  1. BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  2. Valid UTF-8 is returned as-is
//  3. Heuristic detection via chardet
//  4. Fallback to Windows-1252, the charset Excel uses for Spanish CSV exports
func Decode(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, UTF8BOM, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return decodeWith(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)), UTF16LE, nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return decodeWith(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)), UTF16BE, nil
	}

	if validUTF8Prefix(buf) {
		return br, UTF8, nil
	}

	result, detectErr := chardet.NewTextDetector().DetectBest(buf)
	if detectErr == nil {
		switch result.Charset {
		case "UTF-8":
			return br, UTF8, nil
		case "ISO-8859-15":
			return decodeWith(br, charmap.ISO8859_15), ISO885915, nil
		}
	}

	return decodeWith(br, charmap.Windows1252), Windows1252, nil
}

func decodeWith(r io.Reader, e encoding.Encoding) io.Reader {
	return transform.NewReader(r, e.NewDecoder())
}

// validUTF8Prefix is utf8.Valid tolerating a multi-byte rune cut at the end
// of the sniffed window.
func validUTF8Prefix(buf []byte) bool {
	if utf8.Valid(buf) {
		return true
	}

	if len(buf) < sniffLen {
		return false
	}

	for cut := 1; cut < utf8.UTFMax && cut < len(buf); cut++ {
		head := buf[:len(buf)-cut]
		if utf8.Valid(head) && !utf8.FullRune(buf[len(buf)-cut:]) {
			return true
		}
	}

	return false
}
