// Package patrimonio implements a single-user portfolio snapshot tracker:
// a chronological series of dated snapshots of all holdings, with derived
// metrics, time-series analytics and target-allocation planning computed
// locally on every load.
package patrimonio

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Term is the investment horizon label of a holding. It is a free string
// ("Largo", "Medio", "Corto" in the reference data set) kept verbatim.
type Term = string

// Asset is a single holding within a snapshot.
//
// PurchaseValue and CurrentValue are captured at snapshot time and are
// never recomputed from price×quantity afterwards: a snapshot is a record
// of what the portfolio looked like, not a live view. The only place that
// recomputes them is the holdings editor.
type Asset struct {
	Name          string
	Term          Term
	Category      string
	PurchasePrice float64
	Quantity      float64
	CurrentPrice  float64
	PurchaseValue float64
	CurrentValue  float64
}

// assetFields is the number of columns in the positional representation.
const assetFields = 8

// MarshalJSON encodes the asset in its compact positional form:
// [name, term, category, purchasePrice, quantity, currentPrice,
// purchaseValue, currentValue].
func (a Asset) MarshalJSON() ([]byte, error) {
	return json.Marshal([assetFields]any{
		a.Name, a.Term, a.Category,
		a.PurchasePrice, a.Quantity, a.CurrentPrice,
		a.PurchaseValue, a.CurrentValue,
	})
}

// UnmarshalJSON accepts both the compact positional form and the legacy
// keyed-object form ({"name": ..., "purchasePrice": ...}), migrating the
// latter transparently. Migration is idempotent: tuples decode as tuples.
func (a *Asset) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var legacy struct {
			Name          string  `json:"name"`
			Term          string  `json:"term"`
			Category      string  `json:"category"`
			PurchasePrice float64 `json:"purchasePrice"`
			Quantity      float64 `json:"quantity"`
			CurrentPrice  float64 `json:"currentPrice"`
			PurchaseValue float64 `json:"purchaseValue"`
			CurrentValue  float64 `json:"currentValue"`
		}
		if err := json.Unmarshal(data, &legacy); err != nil {
			return fmt.Errorf("cannot parse legacy asset object: %w", err)
		}
		*a = Asset{
			Name: legacy.Name, Term: legacy.Term, Category: legacy.Category,
			PurchasePrice: legacy.PurchasePrice, Quantity: legacy.Quantity,
			CurrentPrice: legacy.CurrentPrice, PurchaseValue: legacy.PurchaseValue,
			CurrentValue: legacy.CurrentValue,
		}
		return nil
	}

	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("cannot parse asset tuple: %w", err)
	}
	if len(tuple) < assetFields {
		return fmt.Errorf("asset tuple has %d fields, want %d", len(tuple), assetFields)
	}
	strs := [3]*string{&a.Name, &a.Term, &a.Category}
	for i, p := range strs {
		if err := json.Unmarshal(tuple[i], p); err != nil {
			return fmt.Errorf("asset tuple field %d: %w", i, err)
		}
	}
	nums := [5]*float64{&a.PurchasePrice, &a.Quantity, &a.CurrentPrice, &a.PurchaseValue, &a.CurrentValue}
	for i, p := range nums {
		if err := json.Unmarshal(tuple[i+3], p); err != nil {
			return fmt.Errorf("asset tuple field %d: %w", i+3, err)
		}
	}
	return nil
}

// ParseAssets parses the tabular clipboard format: newline-separated rows
// of at least 8 tab-separated columns in the fixed field order. Rows with
// fewer columns are silently skipped; numeric cells that do not parse
// yield 0, never an error. Returns the parsed assets, possibly empty.
func ParseAssets(text string) []Asset {
	var assets []Asset
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < assetFields {
			continue
		}
		assets = append(assets, Asset{
			Name:          strings.TrimSpace(parts[0]),
			Term:          strings.TrimSpace(parts[1]),
			Category:      strings.TrimSpace(parts[2]),
			PurchasePrice: parseLocaleNumber(parts[3]),
			Quantity:      parseLocaleNumber(parts[4]),
			CurrentPrice:  parseLocaleNumber(parts[5]),
			PurchaseValue: parseLocaleNumber(parts[6]),
			CurrentValue:  parseLocaleNumber(parts[7]),
		})
	}
	return assets
}

// FormatAssets renders assets back to the tabular format of ParseAssets:
// one row per asset, 8 tab-separated columns, numbers in es-ES style
// ("." thousands, "," decimal, 2 to 6 fraction digits) with a trailing
// "€" on monetary columns. ParseAssets(FormatAssets(a)) == a within
// formatting precision.
func FormatAssets(assets []Asset) string {
	lines := make([]string, 0, len(assets))
	for _, a := range assets {
		lines = append(lines, strings.Join([]string{
			a.Name,
			a.Term,
			a.Category,
			formatLocaleNumber(a.PurchasePrice) + " €",
			formatLocaleNumber(a.Quantity),
			formatLocaleNumber(a.CurrentPrice) + " €",
			formatLocaleNumber(a.PurchaseValue) + " €",
			formatLocaleNumber(a.CurrentValue) + " €",
		}, "\t"))
	}
	return strings.Join(lines, "\n")
}

// parseLocaleNumber parses an es-ES formatted decimal: "." is a thousands
// separator, "," the decimal separator, with an optional trailing currency
// symbol. A cell that does not parse yields 0.
func parseLocaleNumber(cell string) float64 {
	s := strings.TrimSpace(cell)
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// formatLocaleNumber formats a value with at least 2 and at most 6
// fraction digits, "," as decimal separator and "." as thousands
// separator. Non-finite inputs format as 0.
func formatLocaleNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	d := decimal.NewFromFloat(v).Round(6)

	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}

	// Fixed 6 digits, then trim trailing zeros down to a minimum of 2.
	fixed := d.StringFixed(6)
	dot := strings.IndexByte(fixed, '.')
	intPart, frac := fixed[:dot], fixed[dot+1:]
	for len(frac) > 2 && frac[len(frac)-1] == '0' {
		frac = frac[:len(frac)-1]
	}

	// Insert "." thousands separators in the integer part.
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
