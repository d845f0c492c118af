package etl

import (
	"encoding/json"
	"time"
)

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	// KindAbsent marks a value that is missing or could not be parsed.
	// It is distinct from an empty string and from zero.
	KindAbsent ValueKind = iota
	// KindString holds raw or normalized text.
	KindString
	// KindNumber holds a parsed floating-point number.
	KindNumber
	// KindDate holds a calendar date.
	KindDate
	// KindBool holds a derived boolean feature.
	KindBool
)

// Value is the tagged optional type carried in record fields. Fields start
// as strings out of the loader and are progressively replaced with typed
// variants by the cleaner and transformer. Absent is the explicit
// "no value" state; downstream consumers must treat it as such rather
// than as a sentinel.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	date time.Time
	b    bool
}

// Absent is the absence marker.
var Absent = Value{kind: KindAbsent}

// String returns a string-kinded Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a number-kinded Value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Date returns a date-kinded Value.
func Date(t time.Time) Value { return Value{kind: KindDate, date: t} }

// Bool returns a bool-kinded Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

// IsAbsent reports whether v is the absence marker.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Str returns the string variant. ok is false for any other kind.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Num returns the number variant. ok is false for any other kind.
func (v Value) Num() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Time returns the date variant. ok is false for any other kind.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// Flag returns the bool variant. ok is false for any other kind.
func (v Value) Flag() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// MarshalJSON renders the value for API and CLI output: absent → null,
// dates → "YYYY-MM-DD".
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindDate:
		return json.Marshal(v.date.Format(dateLayoutISO))
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// AmountCheck is the intermediate result of amount validation. A negative
// or unparsable amount is invalid; a very large amount stays valid but is
// flagged as an anomaly. The asymmetry is intentional.
type AmountCheck struct {
	Valid   bool
	Anomaly bool
}

// ValidationResult is the verdict the validator attaches to a record.
// Valid is false exactly when Errors is non-empty; Anomalies may be
// populated on a valid record.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors"`
	Anomalies []string `json:"anomalies"`
}

// Record is one transaction flowing through the pipeline: a mapping from
// field name to Value plus the validation verdict once attached. Later
// stages never remove the verdict.
type Record struct {
	Fields     map[string]Value
	Validation *ValidationResult
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{Fields: make(map[string]Value)}
}

// Get returns the value for key, or the absence marker when the key is
// not present at all.
func (r Record) Get(key string) Value {
	if v, ok := r.Fields[key]; ok {
		return v
	}
	return Absent
}

// Has reports whether key exists in the record, regardless of its value.
// Presence-with-empty-value and absence-of-key are distinct states.
func (r Record) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// Set stores a value under key.
func (r Record) Set(key string, v Value) {
	r.Fields[key] = v
}

// StringField returns the raw string for key, or "" when the field is
// absent or not string-kinded. Validation rules operate on this view.
func (r Record) StringField(key string) string {
	s, _ := r.Get(key).Str()
	return s
}

// Clone returns a copy of the record whose field map can be modified
// without affecting the original. The verdict pointer is shared; verdicts
// are written once by the validator and read-only afterwards.
func (r Record) Clone() Record {
	fields := make(map[string]Value, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{Fields: fields, Validation: r.Validation}
}

// MarshalJSON renders the record as a flat object with the verdict under
// "_validation", matching the wire shape consumers expect.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	if r.Validation != nil {
		out[validationField] = r.Validation
	}
	return json.Marshal(out)
}
