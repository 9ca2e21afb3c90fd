package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecordType is the direction of a financial record.
type RecordType string

// Allowed record types.
const (
	RecordTypeIncome  RecordType = "income"
	RecordTypeOutcome RecordType = "outcome"
)

// Valid reports whether t is one of the allowed record types.
func (t RecordType) Valid() bool {
	return t == RecordTypeIncome || t == RecordTypeOutcome
}

// Record validation errors.
var (
	ErrEmptyRecordID      = NewValidationError("id", "cannot be empty", nil)
	ErrEmptyRecordOwner   = NewValidationError("user", "cannot be empty", nil)
	ErrInvalidRecordType  = NewValidationError("type", "must be one of: income, outcome", nil)
	ErrInvalidRecordValue = NewValidationError("value", "must be a non-negative number", nil)
	ErrOwnerImmutable     = NewValidationError("user", "cannot be changed", nil)
	ErrEmptyPatch         = NewValidationError("body", "must contain at least one of: type, value, description", nil)
)

// Record is a single income or outcome entry owned by exactly one user.
// The owner never changes after creation.
type Record struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user"`
	Type        RecordType `json:"type"`
	Value       float64    `json:"value"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewRecord creates a validated Record owned by userID. The description is escaped.
func NewRecord(userID uuid.UUID, recordType RecordType, value float64, description string) (*Record, error) {
	now := time.Now().UTC()
	record := &Record{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        recordType,
		Value:       value,
		Description: SanitizeDescription(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the Record has valid data.
func (r *Record) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRecordID
	}

	if r.UserID == uuid.Nil {
		return ErrEmptyRecordOwner
	}

	if !r.Type.Valid() {
		return ErrInvalidRecordType
	}

	return validateValue(r.Value)
}

func validateValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return ErrInvalidRecordValue
	}
	return nil
}

// RecordPatch is a partial update of a Record. Nil fields are left unchanged.
// OwnerSet records that the caller tried to supply an owner, which is never allowed.
type RecordPatch struct {
	Type        *RecordType
	Value       *float64
	Description *string
	OwnerSet    bool
}

// Validate rejects owner changes, empty patches and invalid field values.
func (p RecordPatch) Validate() error {
	if p.OwnerSet {
		return ErrOwnerImmutable
	}

	if p.Type == nil && p.Value == nil && p.Description == nil {
		return ErrEmptyPatch
	}

	if p.Type != nil && !p.Type.Valid() {
		return ErrInvalidRecordType
	}

	if p.Value != nil {
		if err := validateValue(*p.Value); err != nil {
			return err
		}
	}

	return nil
}

// Apply copies the set fields of the patch onto r and bumps UpdatedAt.
// The patch must already be valid.
func (p RecordPatch) Apply(r *Record) {
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Value != nil {
		r.Value = *p.Value
	}
	if p.Description != nil {
		r.Description = SanitizeDescription(*p.Description)
	}
	r.UpdatedAt = time.Now().UTC()
}

// decimalPattern is a plain decimal number: optional sign, digits with an
// optional fraction, optional exponent. Hex, digit separators, Inf and NaN
// do not match.
var decimalPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// ParseRecordValue converts a raw JSON value into a float. Numbers and numeric
// strings ("10000", "3.1415") are accepted; booleans, arrays, objects, null and
// non-numeric strings are not. Negative zero is returned as zero.
func ParseRecordValue(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, ErrInvalidRecordValue
	}

	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, ErrInvalidRecordValue
		}
		text = strings.TrimSpace(text)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(raw)
	default:
		return 0, ErrInvalidRecordValue
	}

	if !decimalPattern.MatchString(text) {
		return 0, ErrInvalidRecordValue
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidRecordValue
	}
	if v == 0 {
		// drop the sign of -0
		v = 0
	}
	return v, nil
}

var descriptionReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// SanitizeDescription replaces HTML-significant characters with entities.
func SanitizeDescription(s string) string {
	return descriptionReplacer.Replace(s)
}
