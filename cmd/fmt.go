package cmd

import (
	"math"

	"github.com/Rhymond/go-money"
)

// fmtEur formats a euro amount for one-line confirmations; tables go
// through the renderer package instead.
func fmtEur(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return money.New(int64(math.Round(v*100)), money.EUR).Display()
}
