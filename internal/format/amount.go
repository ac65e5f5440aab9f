package format

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	oku = 100_000_000
	man = 10_000
)

// NotAvailable is shown for absent values.
const NotAvailable = "-"

var printer = message.NewPrinter(language.Japanese)

// Amount renders a yen amount in the largest fitting unit: one rounded
// decimal place of 億 for amounts of at least 1e8, whole 万 (rounded down) for
// amounts of at least 1e4, and plain yen with thousands separators below
// that.
func Amount(amount *int64) string {
	if amount == nil {
		return NotAvailable
	}
	v := *amount
	switch {
	case v >= oku:
		// Tenths of 億, halves rounded up.
		tenths := (v + oku/20) / (oku / 10)
		return fmt.Sprintf("%d.%d億円", tenths/10, tenths%10)
	case v >= man:
		return strconv.FormatInt(v/man, 10) + "万円"
	default:
		return Count(v) + "円"
	}
}

// AmountRange renders "min 〜 max" for the detail page, or 記載なし when
// neither bound carries a non-zero value.
func AmountRange(minAmount, maxAmount *int64) string {
	if !positive(minAmount) && !positive(maxAmount) {
		return "記載なし"
	}
	return Amount(minAmount) + " 〜 " + Amount(maxAmount)
}

// AmountCeiling renders the table's upper-bound column.
func AmountCeiling(maxAmount *int64) string {
	if !positive(maxAmount) {
		return NotAvailable
	}
	return "〜" + Amount(maxAmount)
}

// Count formats an integer with Japanese thousands separators.
func Count[T ~int | ~int64](n T) string {
	return printer.Sprintf("%d", int64(n))
}

func positive(v *int64) bool {
	return v != nil && *v != 0
}
