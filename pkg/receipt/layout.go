package receipt

import (
	"strings"
	"unicode/utf8"
)

// Wrap breaks text into lines of at most width runes on whitespace. A word
// longer than width is hard-split. Empty text yields no lines.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > width {
			flush()
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
		}
		n := utf8.RuneCountInString(word)
		if n == 0 {
			continue
		}
		if curLen > 0 && curLen+1+n > width {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += n
	}
	flush()
	return lines
}

// Center pads line on the left so it sits in the middle of width. No trailing padding is added.
func Center(line string, width int) string {
	n := utf8.RuneCountInString(line)
	if n >= width {
		return line
	}
	return strings.Repeat(" ", (width-n)/2) + line
}

// CenterBlock wraps then centers every resulting line.
func CenterBlock(text string, width int) []string {
	wrapped := Wrap(text, width)
	for i, l := range wrapped {
		wrapped[i] = Center(l, width)
	}
	return wrapped
}

// PadRight left-aligns s in a field of n runes.
func PadRight(s string, n int) string {
	if pad := n - utf8.RuneCountInString(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// PadLeft right-aligns s in a field of n runes.
func PadLeft(s string, n int) string {
	if pad := n - utf8.RuneCountInString(s); pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}

// KeyValue puts key on the left and value flush right. When both do not fit
// on one line the value moves to its own right-aligned line.
func KeyValue(key, value string, width int) []string {
	kn, vn := utf8.RuneCountInString(key), utf8.RuneCountInString(value)
	if kn+1+vn <= width {
		return []string{key + strings.Repeat(" ", width-kn-vn) + value}
	}
	out := Wrap(key, width)
	for _, v := range Wrap(value, width) {
		out = append(out, PadLeft(v, width))
	}
	return out
}

// Rule is a full-width separator.
func Rule(ch rune, width int) string {
	return strings.Repeat(string(ch), width)
}
