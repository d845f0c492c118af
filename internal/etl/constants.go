package etl

// Field names with special handling in the pipeline.
const (
	validationField = "_validation"
)

// MandatoryColumns must all be present in the header of any input file.
var MandatoryColumns = []string{
	"transaction_id",
	"transaction_date",
	"customer_id",
	"account_id",
	"amount",
	"currency",
}

// Date layouts accepted on input, tried in order. Normalized output is
// always dateLayoutISO.
const (
	dateLayoutISO = "2006-01-02"
	dateLayoutEU  = "02/01/2006"
)

var dateLayouts = []string{dateLayoutISO, dateLayoutEU}

// Business thresholds, in IDR.
const (
	// AnomalyAmountLimit is the amount above which a transaction is
	// flagged as anomalous (but still valid).
	AnomalyAmountLimit = 10_000_000

	// LargeTransactionLimit is the amount above which the
	// is_large_transaction feature is set.
	LargeTransactionLimit = 5_000_000

	// Imputation bands for merchant_category, checked high to low.
	retailAmountLimit       = 1_000_000
	foodBeverageAmountLimit = 100_000
)

// Closed vocabularies for categorical fields. Input is expected
// already upper-cased; matching is case-sensitive.
var (
	validCurrencies = map[string]bool{
		"IDR": true,
		"USD": true,
		"SGD": true,
	}

	validDirections = map[string]bool{
		"DEBIT":  true,
		"CREDIT": true,
	}

	validAccountTypes = map[string]bool{
		"SAVINGS":     true,
		"CURRENT":     true,
		"CREDIT_CARD": true,
		"LOAN":        true,
	}
)
