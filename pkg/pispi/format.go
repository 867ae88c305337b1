package pispi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the settlement currency of the PI-SPI scheme. It has no minor unit.
const Currency = "XOF"

// MaxTxIDLength is the longest accepted end-to-end transaction identifier.
const MaxTxIDLength = 35

var txIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// FormatAmount renders d rounded to whole francs with a space thousands
// separator, e.g. "10 000 XOF".
func FormatAmount(d decimal.Decimal) string {
	digits := d.Round(0).Abs().StringFixed(0)

	var b strings.Builder
	if d.Round(0).IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteString(" " + Currency)
	return b.String()
}

// ParseAmount parses an amount written with optional spaces as thousands
// separators and an optional XOF or FCFA suffix.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	for _, suffix := range []string{Currency, "FCFA"} {
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, suffix))
	}
	cleaned = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(cleaned)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrInvalidArgument)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrInvalidArgument, s)
	}
	return d, nil
}

// ValidateTxID checks an end-to-end transaction identifier.
func ValidateTxID(id string) error {
	if id == "" || len(id) > MaxTxIDLength {
		return fmt.Errorf("%w: txId must be 1 to %d characters, got %d", ErrInvalidArgument, MaxTxIDLength, len(id))
	}
	if !txIDPattern.MatchString(id) {
		return fmt.Errorf("%w: txId %q must contain only letters, digits and '-'", ErrInvalidArgument, id)
	}
	return nil
}
