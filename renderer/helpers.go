// Package renderer turns reports into markdown for terminal display.
package renderer

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/Rhymond/go-money"
)

// ConditionalBlock lets you fully write a block and decide at the end to
// print it or not. If the block function returns true, the content is
// printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// eur formats a euro amount for display.
func eur(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return money.New(int64(math.Round(v*100)), money.EUR).Display()
}

// signedEur formats a euro amount with an explicit sign, a dash for zero.
func signedEur(v float64) string {
	if v == 0 {
		return "-"
	}
	if v > 0 {
		return "+" + eur(v)
	}
	return eur(v)
}

// pct formats a percentage with two decimals.
func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// signedPct formats a percentage with an explicit sign, a dash for zero.
func signedPct(v float64) string {
	res := fmt.Sprintf("%+.2f%%", v)
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// qty formats a quantity, trimming to a sensible precision.
func qty(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	return s
}
