package receipt

import (
	"strconv"
	"strings"
)

// wordsLimit is the first amount written as grouped digits instead of words.
const wordsLimit = 1_000_000

var (
	ones = [...]string{
		"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
		"Seventeen", "Eighteen", "Nineteen",
	}
	tens = [...]string{
		"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
	}
)

// AmountInWords spells out a whole amount, e.g. 1200 becomes
// "One Thousand Two Hundred Afghanis Only". Amounts of a million or more
// are written as grouped digits ("1,250,000 Afghanis Only").
func AmountInWords(amount int64, currency string) string {
	if currency == "" {
		currency = "Afghanis"
	}
	if amount < 0 {
		amount = -amount
	}

	var phrase string
	switch {
	case amount == 0:
		phrase = ones[0]
	case amount >= wordsLimit:
		phrase = GroupDigits(amount)
	default:
		phrase = strings.Join(spell(amount), " ")
	}
	return phrase + " " + currency + " Only"
}

// spell handles 1..999999.
func spell(n int64) []string {
	var words []string
	if n >= 1000 {
		words = append(words, belowThousand(n/1000)...)
		words = append(words, "Thousand")
		n %= 1000
	}
	if n > 0 {
		words = append(words, belowThousand(n)...)
	}
	return words
}

func belowThousand(n int64) []string {
	var words []string
	if n >= 100 {
		words = append(words, ones[n/100], "Hundred")
		n %= 100
	}
	switch {
	case n == 0:
	case n < 20:
		words = append(words, ones[n])
	default:
		words = append(words, tens[n/10])
		if n%10 > 0 {
			words = append(words, ones[n%10])
		}
	}
	return words
}

// GroupDigits formats n with comma thousands separators.
func GroupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
