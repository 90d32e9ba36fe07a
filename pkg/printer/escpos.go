package printer

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Character code tables understood by NewDocument.
const (
	CodepageCP437 = "cp437"
	CodepageUTF8  = "utf8"
)

// Document builds an ESC/POS byte stream for thermal printers.
// Text is transcoded to the printer's code table; block glyphs map to CP437 0xDB/0xDF/0xDC.
type Document struct {
	buf      bytes.Buffer
	codepage string
	enc      *encoding.Encoder
	err      error
}

// NewDocument creates a new ESC/POS document for the given code table.
// Line width is the caller's concern; text is sent exactly as laid out.
func NewDocument(codepage string) (*Document, error) {
	d := &Document{codepage: strings.ToLower(codepage)}
	switch d.codepage {
	case "", CodepageCP437:
		d.codepage = CodepageCP437
		d.enc = encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder())
	case CodepageUTF8:
	default:
		return nil, fmt.Errorf("printer: unsupported codepage %q (use cp437 or utf8)", codepage)
	}
	d.Init()
	return d, nil
}

// Init sends ESC @ and selects the code table.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	if d.codepage == CodepageCP437 {
		d.buf.Write([]byte{ESC, 't', 0})
	}
	return d
}

// FeedLines sends n line feeds.
func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// SetBold enables or disables emphasized text. Character width is unchanged,
// so pre-formatted columns stay aligned.
func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

func (d *Document) write(s string) {
	if d.enc == nil {
		d.buf.WriteString(s)
		return
	}
	out, err := d.enc.String(s)
	if err != nil {
		if d.err == nil {
			d.err = fmt.Errorf("printer: transcode %q: %w", s, err)
		}
		return
	}
	d.buf.WriteString(out)
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.write(s)
	d.buf.WriteByte(LF)
	return d
}

// Block writes pre-formatted multi-line text as-is, one printer line per text line.
func (d *Document) Block(text string) *Document {
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		d.Text(line)
	}
	return d
}

// Cut sends the paper cut command (full cut).
func (d *Document) Cut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x00})
	return d
}

// PartialCut sends the partial cut command.
func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

// Bytes returns the accumulated ESC/POS byte stream, or the first transcoding error.
func (d *Document) Bytes() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.buf.Bytes(), nil
}
