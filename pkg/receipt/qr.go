package receipt

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QRMatrix encodes payload at medium error correction without the quiet zone.
func QRMatrix(payload string) ([][]bool, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("receipt: encode qr: %w", err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

// Downscale shrinks a square matrix until it is at most maxCells wide by
// sampling k×k blocks; a block is on if any of its cells is on.
func Downscale(m [][]bool, maxCells int) [][]bool {
	n := len(m)
	if n == 0 || maxCells < 1 || n <= maxCells {
		return m
	}
	k := (n + maxCells - 1) / maxCells
	size := (n + k - 1) / k

	out := make([][]bool, size)
	for r := 0; r < size; r++ {
		out[r] = make([]bool, size)
		for c := 0; c < size; c++ {
			out[r][c] = blockOn(m, r*k, c*k, k)
		}
	}
	return out
}

func blockOn(m [][]bool, row, col, k int) bool {
	for r := row; r < row+k && r < len(m); r++ {
		for c := col; c < col+k && c < len(m[r]); c++ {
			if m[r][c] {
				return true
			}
		}
	}
	return false
}

// HalfBlocks renders the matrix two rows per text line using ▀ ▄ █ and space.
func HalfBlocks(m [][]bool) []string {
	lines := make([]string, 0, (len(m)+1)/2)
	for r := 0; r < len(m); r += 2 {
		var b strings.Builder
		for c := range m[r] {
			top := m[r][c]
			bottom := r+1 < len(m) && c < len(m[r+1]) && m[r+1][c]
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteByte(' ')
			}
		}
		lines = append(lines, b.String())
	}
	return lines
}

// QRBlock renders payload as centered half-block lines no wider than width-8 cells.
func QRBlock(payload string, width int) ([]string, error) {
	m, err := QRMatrix(payload)
	if err != nil {
		return nil, err
	}
	m = Downscale(m, width-8)
	if len(m) == 0 {
		return nil, nil
	}

	pad := strings.Repeat(" ", (width-len(m[0]))/2)
	rows := HalfBlocks(m)
	for i, row := range rows {
		rows[i] = strings.TrimRight(pad+row, " ")
	}
	return rows, nil
}
