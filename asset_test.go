package patrimonio

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAssetCodecRoundTrip(t *testing.T) {
	asset := Asset{
		Name: "MSCI World", Term: "Largo", Category: "Indexados",
		PurchasePrice: 95.5, Quantity: 104.7121, CurrentPrice: 112.3,
		PurchaseValue: 10000, CurrentValue: 11759.17,
	}
	data, err := json.Marshal(asset)
	if err != nil {
		t.Fatal(err)
	}
	var got Asset
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, asset) {
		t.Errorf("round trip changed the asset: got %+v want %+v", got, asset)
	}
}

func TestAssetLegacyMigration(t *testing.T) {
	legacy := `{"name":"BTC","term":"Largo","category":"Cripto",
		"purchasePrice":20000,"quantity":0.5,"currentPrice":60000,
		"purchaseValue":10000,"currentValue":30000}`
	var a Asset
	if err := json.Unmarshal([]byte(legacy), &a); err != nil {
		t.Fatal(err)
	}
	want := Asset{
		Name: "BTC", Term: "Largo", Category: "Cripto",
		PurchasePrice: 20000, Quantity: 0.5, CurrentPrice: 60000,
		PurchaseValue: 10000, CurrentValue: 30000,
	}
	if !reflect.DeepEqual(a, want) {
		t.Errorf("got %+v want %+v", a, want)
	}

	// Re-encoding yields the tuple form, so migration happens once.
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != '[' {
		t.Errorf("re-encoded asset is not a tuple: %s", data)
	}
	var again Asset
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(again, want) {
		t.Errorf("second decode changed the asset: got %+v", again)
	}
}

func TestParseAssets(t *testing.T) {
	text := "BTC\tLargo\tCripto\t20.000,50 €\t0,5\t60.000 €\t10.000,25 €\t30.000 €\n" +
		"short row\tis skipped\n" +
		"\n" +
		"Oro\tLargo\tMetales\tbroken\t2\t55 €\t100 €\t110 €"

	assets := ParseAssets(text)
	if len(assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(assets))
	}
	btc := assets[0]
	if btc.Name != "BTC" || btc.PurchasePrice != 20000.50 || btc.Quantity != 0.5 {
		t.Errorf("unexpected BTC row: %+v", btc)
	}
	if btc.PurchaseValue != 10000.25 || btc.CurrentValue != 30000 {
		t.Errorf("unexpected BTC values: %+v", btc)
	}
	// Unparseable numeric cells yield 0, never an error.
	if assets[1].PurchasePrice != 0 {
		t.Errorf("broken cell should parse as 0, got %v", assets[1].PurchasePrice)
	}
}

func TestFormatAssetsRoundTrip(t *testing.T) {
	assets := []Asset{
		{
			Name: "BTC", Term: "Largo", Category: "Cripto",
			PurchasePrice: 20000.5, Quantity: 0.5121, CurrentPrice: 60000,
			PurchaseValue: 10243.2, CurrentValue: 30726,
		},
	}
	parsed := ParseAssets(FormatAssets(assets))
	if !reflect.DeepEqual(parsed, assets) {
		t.Errorf("round trip changed the assets:\ngot  %+v\nwant %+v", parsed, assets)
	}
}

func TestFormatLocaleNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0,00"},
		{1234.5, "1.234,50"},
		{1234567.891, "1.234.567,891"},
		{-42.1, "-42,10"},
		{0.512345, "0,512345"},
	}
	for _, tc := range tests {
		if got := formatLocaleNumber(tc.in); got != tc.want {
			t.Errorf("formatLocaleNumber(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseLocaleNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.234,56 €", 1234.56},
		{"1.234,56€", 1234.56},
		{"0,5", 0.5},
		{"", 0},
		{"n/a", 0},
		{"-12,5", -12.5},
	}
	for _, tc := range tests {
		if got := parseLocaleNumber(tc.in); got != tc.want {
			t.Errorf("parseLocaleNumber(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
