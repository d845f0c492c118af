package etl

import (
	"math"
	"testing"
	"time"
)

func TestConvertDate(t *testing.T) {
	ctx := testContext()

	t.Run("valid", func(t *testing.T) {
		got := ConvertDate(ctx, String("2024-01-01"))
		d, ok := got.Time()
		if !ok {
			t.Fatalf("ConvertDate() = %v, want a date", got)
		}
		if d.Year() != 2024 || d.Month() != time.January || d.Day() != 1 {
			t.Errorf("date = %v, want 2024-01-01", d)
		}
	})

	t.Run("unparsable", func(t *testing.T) {
		if got := ConvertDate(ctx, String("garbage")); !got.IsAbsent() {
			t.Errorf("ConvertDate() = %v, want absent", got)
		}
	})

	t.Run("absent", func(t *testing.T) {
		if got := ConvertDate(ctx, Absent); !got.IsAbsent() {
			t.Errorf("ConvertDate() = %v, want absent", got)
		}
	})
}

func TestConvertAmount(t *testing.T) {
	ctx := testContext()

	tests := []struct {
		name string
		in   Value
		want Value
	}{
		{"number passes through", Number(1234.5), Number(1234.5)},
		{"string parsed", String("1000"), Number(1000)},
		{"empty", String(""), Absent},
		{"non-numeric", String("x"), Absent},
		{"absent", Absent, Absent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertAmount(ctx, tt.in); got != tt.want {
				t.Errorf("ConvertAmount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFeatureIsLargeTransaction(t *testing.T) {
	tests := []struct {
		name   string
		amount Value
		want   bool
	}{
		{"large", Number(6_000_000), true},
		{"at the limit", Number(5_000_000), false},
		{"small", Number(100), false},
		{"absent", Absent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FeatureIsLargeTransaction(tt.amount); got != tt.want {
				t.Errorf("FeatureIsLargeTransaction(%v) = %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFeatureIsCrossborder(t *testing.T) {
	tests := []struct {
		name     string
		currency Value
		want     bool
	}{
		{"USD", String("USD"), true},
		{"SGD", String("SGD"), true},
		{"IDR", String("IDR"), false},
		{"empty", String(""), false},
		{"absent", Absent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FeatureIsCrossborder(tt.currency); got != tt.want {
				t.Errorf("FeatureIsCrossborder(%v) = %v, want %v", tt.currency, got, tt.want)
			}
		})
	}
}

func TestFeatureTransactionDay(t *testing.T) {
	// 2024-01-01 was a Monday.
	day := FeatureTransactionDay(Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	if day != String("Monday") {
		t.Errorf("FeatureTransactionDay() = %v, want Monday", day)
	}

	if got := FeatureTransactionDay(Absent); !got.IsAbsent() {
		t.Errorf("FeatureTransactionDay(absent) = %v, want absent", got)
	}
}

func TestFeatureAmountLog(t *testing.T) {
	t.Run("positive", func(t *testing.T) {
		got := FeatureAmountLog(Number(6_000_000))
		f, ok := got.Num()
		if !ok {
			t.Fatalf("FeatureAmountLog() = %v, want a number", got)
		}
		if want := math.Log(6_000_000); math.Abs(f-want) > 1e-9 {
			t.Errorf("amount_log = %v, want %v", f, want)
		}
	})

	tests := []struct {
		name string
		in   Value
	}{
		{"zero", Number(0)},
		{"negative", Number(-5)},
		{"absent", Absent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FeatureAmountLog(tt.in); !got.IsAbsent() {
				t.Errorf("FeatureAmountLog(%v) = %v, want absent", tt.in, got)
			}
		})
	}
}

func TestTransformRecord(t *testing.T) {
	ctx := testContext()

	rec := NewRecord()
	rec.Set("transaction_date", String("2024-01-01"))
	rec.Set("amount", Number(6_000_000))
	rec.Set("currency", String("USD"))
	rec.Set("risk_score", Number(0.5))
	rec.Set("customer_id", String("CUST001"))

	out := TransformRecord(ctx, rec)

	if _, ok := out.Get("transaction_date").Time(); !ok {
		t.Errorf("transaction_date = %v, want a date", out.Get("transaction_date"))
	}
	if got, _ := out.Get("is_large_transaction").Flag(); !got {
		t.Error("is_large_transaction = false, want true")
	}
	if got, _ := out.Get("is_crossborder").Flag(); !got {
		t.Error("is_crossborder = false, want true")
	}
	if got := out.Get("transaction_day"); got != String("Monday") {
		t.Errorf("transaction_day = %v, want Monday", got)
	}
	logVal, ok := out.Get("amount_log").Num()
	if !ok {
		t.Fatalf("amount_log = %v, want a number", out.Get("amount_log"))
	}
	if want := math.Log(6_000_000); math.Abs(logVal-want) > 1e-9 {
		t.Errorf("amount_log = %v, want %v", logVal, want)
	}

	// Untouched fields pass through.
	if got := out.StringField("customer_id"); got != "CUST001" {
		t.Errorf("customer_id = %q, want CUST001", got)
	}

	// Input record is not mutated.
	if _, ok := rec.Get("transaction_day").Str(); ok {
		t.Error("input record was mutated")
	}
}

func TestTransformRecord_AbsentAmount(t *testing.T) {
	rec := NewRecord()
	rec.Set("amount", Absent)
	rec.Set("currency", Absent)
	rec.Set("transaction_date", Absent)

	out := TransformRecord(testContext(), rec)

	if got, _ := out.Get("is_large_transaction").Flag(); got {
		t.Error("is_large_transaction = true, want false for absent amount")
	}
	if got, _ := out.Get("is_crossborder").Flag(); got {
		t.Error("is_crossborder = true, want false for absent currency")
	}
	if !out.Get("amount_log").IsAbsent() {
		t.Errorf("amount_log = %v, want absent", out.Get("amount_log"))
	}
	if !out.Get("transaction_day").IsAbsent() {
		t.Errorf("transaction_day = %v, want absent", out.Get("transaction_day"))
	}
}

func TestTransformAll_PreservesOrderAndCount(t *testing.T) {
	records := []Record{
		recordFromStrings(map[string]string{"transaction_id": "TXN000000001", "amount": "1"}),
		recordFromStrings(map[string]string{"transaction_id": "TXN000000002", "amount": "2"}),
	}

	out := TransformAll(testContext(), records)

	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	for i, want := range []string{"TXN000000001", "TXN000000002"} {
		if got := out[i].StringField("transaction_id"); got != want {
			t.Errorf("record %d id = %q, want %q", i, got, want)
		}
	}
}
