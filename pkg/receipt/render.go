// Package receipt renders a committed sale as fixed-width plain text with an
// amount-in-words line and a half-block QR code. Rendering is pure: the same
// input always produces the same bytes.
package receipt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultWidth fits 80mm paper in font A.
	DefaultWidth = 42
	// MinWidth leaves room for the numeric columns plus a short name.
	MinWidth = 34

	seqCol   = 3
	qtyCol   = 6
	priceCol = 9
	totalCol = 10
	numCols  = seqCol + qtyCol + priceCol + totalCol
)

// ErrWidthTooSmall is returned for widths below MinWidth.
var ErrWidthTooSmall = errors.New("receipt: width too small")

// Line is one sold item.
type Line struct {
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// Receipt is everything printed for one sale.
type Receipt struct {
	InvoiceNo string
	Date      time.Time
	Customer  string
	Operator  string
	Payment   string
	Credit    bool
	Lines     []Line
	Gross     decimal.Decimal
	Discount  decimal.Decimal
	Net       decimal.Decimal
}

// StoreInfo is the store metadata printed around the sale.
type StoreInfo struct {
	Name       string
	Address    string
	Phone      string
	PayURI     string
	CashNote   string
	CreditNote string
	Footer     string
	Currency   string
}

// Options controls the layout.
type Options struct {
	Width    int
	Location *time.Location
}

// Payload is the string encoded in the QR code.
func Payload(r *Receipt, store StoreInfo) string {
	if uri := strings.TrimSpace(store.PayURI); uri != "" {
		return uri
	}
	return r.InvoiceNo + "|" + r.Net.StringFixed(2)
}

// Render formats the receipt. Lines are joined with "\n" and carry no trailing spaces.
func Render(r *Receipt, store StoreInfo, opts Options) (string, error) {
	w := opts.Width
	if w == 0 {
		w = DefaultWidth
	}
	if w < MinWidth {
		return "", fmt.Errorf("%w: %d < %d", ErrWidthTooSmall, w, MinWidth)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	var out []string
	add := func(lines ...string) { out = append(out, lines...) }

	// Header
	add(CenterBlock(store.Name, w)...)
	add(CenterBlock(store.Address, w)...)
	if store.Phone != "" {
		add(CenterBlock("Tel: "+store.Phone, w)...)
	}
	add(Rule('=', w))

	add(KeyValue("Invoice:", r.InvoiceNo, w)...)
	add(KeyValue("Date:", r.Date.In(loc).Format("2006-01-02 15:04"), w)...)
	if r.Customer != "" {
		add(KeyValue("Customer:", r.Customer, w)...)
	}
	if r.Operator != "" {
		add(KeyValue("Cashier:", r.Operator, w)...)
	}
	add(KeyValue("Payment:", r.Payment, w)...)
	add(Rule('-', w))

	// Items
	add(itemRow(w, "#", "Item", "Qty", "Price", "Total"))
	add(Rule('-', w))
	for i, l := range r.Lines {
		add(itemLines(w, i+1, l)...)
	}
	add(Rule('-', w))

	// Totals
	add(KeyValue("Gross:", money(r.Gross), w)...)
	if !r.Discount.IsZero() {
		add(KeyValue("Discount:", "-"+money(r.Discount), w)...)
	}
	add(KeyValue("NET:", money(r.Net), w)...)
	add(Rule('=', w))

	add(CenterBlock(AmountInWords(r.Net.IntPart(), store.Currency), w)...)
	add("")

	qr, err := QRBlock(Payload(r, store), w)
	if err != nil {
		return "", err
	}
	add(qr...)
	add("")

	note := store.CashNote
	if r.Credit {
		note = store.CreditNote
	}
	add(CenterBlock(note, w)...)
	add(CenterBlock(store.Footer, w)...)

	return strings.Join(out, "\n") + "\n", nil
}

func itemRow(w int, seq, name, qty, price, total string) string {
	row := PadRight(seq, seqCol) + PadRight(name, w-numCols) +
		PadLeft(qty, qtyCol) + PadLeft(price, priceCol) + PadLeft(total, totalCol)
	return strings.TrimRight(row, " ")
}

// itemLines prints the name on as many lines as it needs; the numeric
// columns go on the last name line.
func itemLines(w, seq int, l Line) []string {
	nameW := w - numCols
	chunks := Wrap(l.Name, nameW)
	if len(chunks) == 0 {
		chunks = []string{""}
	}

	qty, price, total := quantity(l.Quantity), money(l.UnitPrice), money(l.Total)
	fits := len(qty) < qtyCol && len(price) < priceCol && len(total) < totalCol

	var out []string
	for i, chunk := range chunks {
		prefix := ""
		if i == 0 {
			prefix = strconv.Itoa(seq)
		}
		if i == len(chunks)-1 && fits {
			out = append(out, itemRow(w, prefix, chunk, qty, price, total))
			continue
		}
		out = append(out, strings.TrimRight(PadRight(prefix, seqCol)+chunk, " "))
	}
	if !fits {
		for _, l := range Wrap(qty+" x "+price+" = "+total, w-seqCol) {
			out = append(out, PadLeft(l, w))
		}
	}
	return out
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func quantity(d decimal.Decimal) string {
	return d.Round(3).String()
}
