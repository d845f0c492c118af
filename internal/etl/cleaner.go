package etl

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/txn-etl/internal/logger"
)

// The cleaner never fails: every unparsable value degrades to the
// absence marker with a warning log, and the record keeps flowing.

// CleanWhitespace returns the trimmed string form of a value. The
// absence marker cleans to the empty string.
func CleanWhitespace(v Value) string {
	if s, ok := v.Str(); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// NormalizeDate re-emits a date string as YYYY-MM-DD, accepting the
// input layouts in order. Empty or unparsable input becomes absent.
// Values that are not strings pass through unchanged.
func NormalizeDate(ctx context.Context, v Value) Value {
	s, ok := v.Str()
	if !ok {
		if v.IsAbsent() {
			return Absent
		}
		return v
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return Absent
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return String(t.Format(dateLayoutISO))
		}
	}

	log := logger.FromContext(ctx)
	log.Warn().Str("value", s).Msg("Could not normalize date")
	return Absent
}

// CleanCurrency trims and upper-cases a currency code, keeping it only
// when it belongs to the supported set. Anything else becomes absent.
func CleanCurrency(ctx context.Context, v Value) Value {
	s, ok := v.Str()
	if !ok {
		if v.IsAbsent() {
			return Absent
		}
		return v
	}

	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Absent
	}

	if validCurrencies[s] {
		return String(s)
	}

	log := logger.FromContext(ctx)
	log.Warn().Str("value", s).Msg("Invalid currency, setting to absent")
	return Absent
}

// CleanNumeric parses a numeric string into a number. Already-numeric
// values pass through, so cleaning is idempotent. Blank or unparsable
// input becomes absent.
func CleanNumeric(ctx context.Context, v Value) Value {
	if _, ok := v.Num(); ok {
		return v
	}

	s, ok := v.Str()
	if !ok {
		return Absent
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return Absent
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Str("value", s).Msg("Invalid numeric value, setting to absent")
		return Absent
	}

	return Number(f)
}

// ImputeMerchantCategory keeps a non-empty merchant_category verbatim
// (trimmed), and otherwise derives one from the cleaned amount:
// > 1,000,000 → RETAIL, > 100,000 → FOOD_BEVERAGE, else OTHERS. An
// absent amount yields an absent category.
func ImputeMerchantCategory(ctx context.Context, rec Record) Value {
	if category := CleanWhitespace(rec.Get("merchant_category")); category != "" {
		return String(category)
	}

	amountVal := CleanNumeric(ctx, rec.Get("amount"))
	amount, ok := amountVal.Num()
	if !ok {
		return Absent
	}

	switch {
	case amount > retailAmountLimit:
		return String("RETAIL")
	case amount > foodBeverageAmountLimit:
		return String("FOOD_BEVERAGE")
	default:
		return String("OTHERS")
	}
}

// CleanRecord normalizes one record: whitespace on every string field
// first, then date, currency, the numeric fields, and finally the
// merchant category imputation, which therefore sees the cleaned
// amount. Date, currency and numeric cleaning only apply when the key
// exists; imputation likewise requires merchant_category to have been a
// column in the input. The validation verdict is carried over untouched.
func CleanRecord(ctx context.Context, rec Record) Record {
	cleaned := rec.Clone()

	for key, v := range cleaned.Fields {
		if s, ok := v.Str(); ok {
			cleaned.Set(key, String(strings.TrimSpace(s)))
		}
	}

	if cleaned.Has("transaction_date") {
		cleaned.Set("transaction_date", NormalizeDate(ctx, cleaned.Get("transaction_date")))
	}

	if cleaned.Has("currency") {
		cleaned.Set("currency", CleanCurrency(ctx, cleaned.Get("currency")))
	}

	for _, field := range []string{"amount", "risk_score"} {
		if cleaned.Has(field) {
			cleaned.Set(field, CleanNumeric(ctx, cleaned.Get(field)))
		}
	}

	if rec.Has("merchant_category") {
		cleaned.Set("merchant_category", ImputeMerchantCategory(ctx, cleaned))
	}

	return cleaned
}

// CleanAll cleans every record, preserving order and cardinality.
func CleanAll(ctx context.Context, records []Record) []Record {
	log := logger.FromContext(ctx)

	cleaned := make([]Record, 0, len(records))
	for _, rec := range records {
		cleaned = append(cleaned, CleanRecord(ctx, rec))
	}

	log.Info().Int("rows", len(cleaned)).Msg("Cleaned records")
	return cleaned
}
