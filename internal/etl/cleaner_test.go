package etl

import (
	"reflect"
	"testing"
)

func TestCleanWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"padded", String("  hello  "), "hello"},
		{"clean", String("hello"), "hello"},
		{"tabs and newlines", String("\t hi \n"), "hi"},
		{"empty", String(""), ""},
		{"absent", Absent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanWhitespace(tt.in); got != tt.want {
				t.Errorf("CleanWhitespace() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	ctx := testContext()

	tests := []struct {
		name string
		in   Value
		want Value
	}{
		{"already ISO", String("2023-12-15"), String("2023-12-15")},
		{"european to ISO", String("15/12/2023"), String("2023-12-15")},
		{"padded", String("  2024-01-01  "), String("2024-01-01")},
		{"invalid", String("invalid"), Absent},
		{"impossible day", String("32/01/2024"), Absent},
		{"empty", String(""), Absent},
		{"absent", Absent, Absent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDate(ctx, tt.in); got != tt.want {
				t.Errorf("NormalizeDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCleanCurrency(t *testing.T) {
	ctx := testContext()

	tests := []struct {
		name string
		in   Value
		want Value
	}{
		{"padded lowercase", String("  sgd  "), String("SGD")},
		{"clean", String("IDR"), String("IDR")},
		{"mixed case", String("usd"), String("USD")},
		{"unsupported", String("EUR"), Absent},
		{"empty", String(""), Absent},
		{"absent", Absent, Absent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCurrency(ctx, tt.in); got != tt.want {
				t.Errorf("CleanCurrency() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCleanNumeric(t *testing.T) {
	ctx := testContext()

	tests := []struct {
		name string
		in   Value
		want Value
	}{
		{"integer", String("5000"), Number(5000)},
		{"decimal", String("0.5"), Number(0.5)},
		{"padded", String("  123.45  "), Number(123.45)},
		{"negative", String("-10"), Number(-10)},
		{"already numeric", Number(42), Number(42)},
		{"non-numeric", String("abc"), Absent},
		{"empty", String(""), Absent},
		{"blank", String("   "), Absent},
		{"absent", Absent, Absent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanNumeric(ctx, tt.in); got != tt.want {
				t.Errorf("CleanNumeric() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImputeMerchantCategory(t *testing.T) {
	ctx := testContext()

	tests := []struct {
		name     string
		category Value
		amount   Value
		want     Value
	}{
		{"present kept verbatim", String("  TRAVEL  "), String("50"), String("TRAVEL")},
		{"retail band", String(""), String("1500000"), String("RETAIL")},
		{"food band", String(""), String("500000"), String("FOOD_BEVERAGE")},
		{"food band lower edge", String(""), String("100001"), String("FOOD_BEVERAGE")},
		{"others band", String(""), String("50000"), String("OTHERS")},
		{"cleaned amount used", String(""), Number(2_000_000), String("RETAIL")},
		{"absent amount", String(""), Absent, Absent},
		{"unparsable amount", String(""), String("abc"), Absent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord()
			rec.Set("merchant_category", tt.category)
			rec.Set("amount", tt.amount)

			if got := ImputeMerchantCategory(ctx, rec); got != tt.want {
				t.Errorf("ImputeMerchantCategory() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCleanRecord(t *testing.T) {
	ctx := testContext()

	rec := recordFromStrings(map[string]string{
		"transaction_id":    "  TXN123456789  ",
		"transaction_date":  "15/12/2023",
		"amount":            " 5000000 ",
		"currency":          " idr ",
		"merchant_category": "",
		"risk_score":        "0.5",
	})
	verdict := &ValidationResult{Valid: true, Errors: []string{}, Anomalies: []string{}}
	rec.Validation = verdict

	cleaned := CleanRecord(ctx, rec)

	if got := cleaned.StringField("transaction_id"); got != "TXN123456789" {
		t.Errorf("transaction_id = %q, want trimmed", got)
	}
	if got := cleaned.Get("transaction_date"); got != String("2023-12-15") {
		t.Errorf("transaction_date = %v, want 2023-12-15", got)
	}
	if got := cleaned.Get("currency"); got != String("IDR") {
		t.Errorf("currency = %v, want IDR", got)
	}
	if got := cleaned.Get("amount"); got != Number(5000000) {
		t.Errorf("amount = %v, want 5000000", got)
	}
	if got := cleaned.Get("risk_score"); got != Number(0.5) {
		t.Errorf("risk_score = %v, want 0.5", got)
	}
	// Imputation sees the cleaned amount: 5,000,000 > 1,000,000 → RETAIL.
	if got := cleaned.Get("merchant_category"); got != String("RETAIL") {
		t.Errorf("merchant_category = %v, want RETAIL", got)
	}

	if cleaned.Validation != verdict {
		t.Error("validation verdict was not carried over")
	}
}

func TestCleanRecord_NoMerchantCategoryKey(t *testing.T) {
	// The key was never a column in the input: imputation must not
	// introduce it.
	rec := recordFromStrings(map[string]string{
		"transaction_id": "TXN123456789",
		"amount":         "5000000",
	})

	cleaned := CleanRecord(testContext(), rec)

	if cleaned.Has("merchant_category") {
		t.Error("merchant_category was imputed despite the key being absent from input")
	}
}

func TestCleanRecord_UnparsableValuesBecomeAbsent(t *testing.T) {
	rec := recordFromStrings(map[string]string{
		"transaction_date": "not-a-date",
		"currency":         "EUR",
		"amount":           "abc",
		"risk_score":       "",
	})

	cleaned := CleanRecord(testContext(), rec)

	for _, field := range []string{"transaction_date", "currency", "amount", "risk_score"} {
		if !cleaned.Get(field).IsAbsent() {
			t.Errorf("%s = %v, want absent", field, cleaned.Get(field))
		}
	}
}

func TestCleanRecord_Idempotent(t *testing.T) {
	ctx := testContext()

	rec := recordFromStrings(map[string]string{
		"transaction_id":    "TXN123456789",
		"transaction_date":  "15/12/2023",
		"amount":            "2000000",
		"currency":          " sgd ",
		"merchant_category": "",
		"risk_score":        "bad",
	})

	once := CleanRecord(ctx, rec)
	twice := CleanRecord(ctx, once)

	if !reflect.DeepEqual(once.Fields, twice.Fields) {
		t.Errorf("cleaning is not idempotent:\nonce:  %v\ntwice: %v", once.Fields, twice.Fields)
	}
}

func TestCleanAll_PreservesOrderAndCount(t *testing.T) {
	records := []Record{
		recordFromStrings(map[string]string{"transaction_id": "TXN000000001", "amount": "1"}),
		recordFromStrings(map[string]string{"transaction_id": "TXN000000002", "amount": "2"}),
		recordFromStrings(map[string]string{"transaction_id": "TXN000000003", "amount": "3"}),
	}

	cleaned := CleanAll(testContext(), records)

	if len(cleaned) != 3 {
		t.Fatalf("len(cleaned) = %d, want 3", len(cleaned))
	}
	for i, want := range []string{"TXN000000001", "TXN000000002", "TXN000000003"} {
		if got := cleaned[i].StringField("transaction_id"); got != want {
			t.Errorf("record %d id = %q, want %q", i, got, want)
		}
	}
}
