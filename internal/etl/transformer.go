package etl

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/txn-etl/internal/logger"
)

// The transformer converts cleaned fields to their final types and
// derives analytical features. Like the cleaner it never fails:
// unparsable input degrades to the absence marker.

// ConvertDate turns a YYYY-MM-DD string into a calendar date value.
func ConvertDate(ctx context.Context, v Value) Value {
	if _, ok := v.Time(); ok {
		return v
	}

	s, ok := v.Str()
	if !ok || s == "" {
		return Absent
	}

	t, err := time.Parse(dateLayoutISO, s)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Str("value", s).Msg("Could not convert date")
		return Absent
	}

	return Date(t)
}

// ConvertAmount turns an amount into a number. Cleaned records already
// carry numbers here; string input is parsed for callers that skip the
// cleaner.
func ConvertAmount(ctx context.Context, v Value) Value {
	return convertNumeric(ctx, v, "amount")
}

// ConvertRiskScore turns a risk score into a number.
func ConvertRiskScore(ctx context.Context, v Value) Value {
	return convertNumeric(ctx, v, "risk_score")
}

func convertNumeric(ctx context.Context, v Value, field string) Value {
	if _, ok := v.Num(); ok {
		return v
	}

	s, ok := v.Str()
	if !ok || strings.TrimSpace(s) == "" {
		return Absent
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Str("field", field).Str("value", s).Msg("Could not convert numeric value")
		return Absent
	}

	return Number(f)
}

// FeatureIsLargeTransaction reports whether the amount exceeds
// LargeTransactionLimit. An absent amount is not large.
func FeatureIsLargeTransaction(amount Value) bool {
	a, ok := amount.Num()
	if !ok {
		return false
	}
	return a > LargeTransactionLimit
}

// FeatureIsCrossborder reports whether the currency differs from IDR.
// An absent or empty currency is not cross-border.
func FeatureIsCrossborder(currency Value) bool {
	c, ok := currency.Str()
	if !ok || c == "" {
		return false
	}
	return c != "IDR"
}

// FeatureTransactionDay derives the weekday name (Monday..Sunday) of
// the transaction date.
func FeatureTransactionDay(date Value) Value {
	t, ok := date.Time()
	if !ok {
		return Absent
	}
	return String(t.Weekday().String())
}

// FeatureAmountLog derives the natural logarithm of the amount. Absent,
// zero or negative amounts yield the absence marker.
func FeatureAmountLog(amount Value) Value {
	a, ok := amount.Num()
	if !ok || a <= 0 {
		return Absent
	}
	return Number(math.Log(a))
}

// TransformRecord converts the typed fields of one record and computes
// the derived features from the just-converted values. All other fields
// pass through unchanged.
func TransformRecord(ctx context.Context, rec Record) Record {
	transformed := rec.Clone()

	transformed.Set("transaction_date", ConvertDate(ctx, rec.Get("transaction_date")))
	transformed.Set("amount", ConvertAmount(ctx, rec.Get("amount")))
	transformed.Set("risk_score", ConvertRiskScore(ctx, rec.Get("risk_score")))

	transformed.Set("is_large_transaction", Bool(FeatureIsLargeTransaction(transformed.Get("amount"))))
	transformed.Set("is_crossborder", Bool(FeatureIsCrossborder(rec.Get("currency"))))
	transformed.Set("transaction_day", FeatureTransactionDay(transformed.Get("transaction_date")))
	transformed.Set("amount_log", FeatureAmountLog(transformed.Get("amount")))

	return transformed
}

// TransformAll transforms every record, preserving order and
// cardinality: one output record per input record.
func TransformAll(ctx context.Context, records []Record) []Record {
	log := logger.FromContext(ctx)

	transformed := make([]Record, 0, len(records))
	for _, rec := range records {
		transformed = append(transformed, TransformRecord(ctx, rec))
	}

	log.Info().Int("rows", len(transformed)).Msg("Transformed records")
	return transformed
}
