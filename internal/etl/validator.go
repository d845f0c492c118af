package etl

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/txn-etl/internal/logger"
)

var transactionIDPattern = regexp.MustCompile(`^TXN\d{9}$`)

// ValidateTransactionID checks the TXN + 9 digits pattern.
func ValidateTransactionID(id string) bool {
	if id == "" {
		return false
	}
	return transactionIDPattern.MatchString(id)
}

// ValidateDate checks that the string parses under one of the accepted
// layouts, tried in order.
func ValidateDate(dateStr string) bool {
	if dateStr == "" {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, dateStr); err == nil {
			return true
		}
	}
	return false
}

// ValidateAmount checks the amount field. Empty, non-numeric and
// negative amounts are invalid. Amounts over AnomalyAmountLimit stay
// valid but are flagged as anomalous.
func ValidateAmount(amountStr string) AmountCheck {
	result := AmountCheck{Valid: true}

	if strings.TrimSpace(amountStr) == "" {
		result.Valid = false
		return result
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(amountStr), 64)
	if err != nil {
		result.Valid = false
		return result
	}

	if amount < 0 {
		result.Valid = false
		return result
	}

	if amount > AnomalyAmountLimit {
		result.Anomaly = true
	}

	return result
}

// ValidateCurrency checks membership in the supported currency set.
func ValidateCurrency(currency string) bool {
	return validCurrencies[currency]
}

// ValidateDirection checks that direction is DEBIT or CREDIT.
func ValidateDirection(direction string) bool {
	return validDirections[direction]
}

// ValidateAccountType checks membership in the supported account types.
func ValidateAccountType(accountType string) bool {
	return validAccountTypes[accountType]
}

// ValidateRecord applies every field rule to one record and returns the
// verdict. The record itself is not modified. Errors and anomalies
// accumulate in rule order; direction and account_type are only checked
// when present and non-empty.
func ValidateRecord(rec Record) ValidationResult {
	result := ValidationResult{
		Valid:     true,
		Errors:    []string{},
		Anomalies: []string{},
	}

	if !ValidateTransactionID(rec.StringField("transaction_id")) {
		result.Valid = false
		result.Errors = append(result.Errors, "Invalid transaction_id pattern")
	}

	if !ValidateDate(rec.StringField("transaction_date")) {
		result.Valid = false
		result.Errors = append(result.Errors, "Invalid transaction_date format")
	}

	amountCheck := ValidateAmount(rec.StringField("amount"))
	if !amountCheck.Valid {
		result.Valid = false
		result.Errors = append(result.Errors, "Invalid amount")
	}
	if amountCheck.Anomaly {
		result.Anomalies = append(result.Anomalies, "Amount exceeds 10,000,000 IDR")
	}

	if !ValidateCurrency(rec.StringField("currency")) {
		result.Valid = false
		result.Errors = append(result.Errors, "Invalid currency")
	}

	if direction := rec.StringField("direction"); rec.Has("direction") && direction != "" {
		if !ValidateDirection(direction) {
			result.Valid = false
			result.Errors = append(result.Errors, "Invalid direction")
		}
	}

	if accountType := rec.StringField("account_type"); rec.Has("account_type") && accountType != "" {
		if !ValidateAccountType(accountType) {
			result.Valid = false
			result.Errors = append(result.Errors, "Invalid account_type")
		}
	}

	return result
}

// ValidateAll attaches a verdict to every record. No record is dropped
// regardless of its verdict; order and cardinality are preserved.
func ValidateAll(ctx context.Context, records []Record) []Record {
	log := logger.FromContext(ctx)

	validated := make([]Record, 0, len(records))
	for idx, rec := range records {
		verdict := ValidateRecord(rec)

		out := rec.Clone()
		out.Validation = &verdict
		validated = append(validated, out)

		if !verdict.Valid {
			log.Warn().
				Int("row", idx).
				Strs("errors", verdict.Errors).
				Msg("Row validation failed")
		}
		if len(verdict.Anomalies) > 0 {
			log.Info().
				Int("row", idx).
				Strs("anomalies", verdict.Anomalies).
				Msg("Row anomalies detected")
		}
	}

	return validated
}
