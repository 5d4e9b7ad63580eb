package core

// records.go implements the ordered proposal list.
//
// Each record carries two numbers that must never be confused:
//   - ID is permanent. It is assigned once as one past the highest ID ever
//     handed out since the last reset, so a removed ID is never reused and
//     edits keyed by ID stay stable.
//   - No is the 1-based display position. It is recomputed over the current
//     order whenever membership changes, and only then.

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RecordField names an editable field of a SubRecord.
type RecordField string

const (
	FieldProposal      RecordField = "proposal"
	FieldEstimatedCost RecordField = "estimatedCost"
	FieldApproach      RecordField = "approach"
	FieldSDGGoals      RecordField = "sdgGoals"
	FieldFundingSource RecordField = "fundingSource"
	FieldName          RecordField = "name"
	FieldInstitution   RecordField = "institution"
)

// SubRecord is one project proposal in the form.
type SubRecord struct {
	ID            int    `json:"id"`
	No            string `json:"no"`
	Proposal      string `json:"proposal"`
	EstimatedCost string `json:"estimatedCost"`
	Approach      string `json:"approach"`
	SDGGoals      string `json:"sdgGoals"`
	FundingSource string `json:"fundingSource"`
	Name          string `json:"name"`
	Institution   string `json:"institution"`
}

// Complete reports whether the required proposal fields are filled.
func (r SubRecord) Complete() bool {
	return r.Proposal != "" && r.EstimatedCost != ""
}

// Records is the ordered collection of proposals. It always holds at least
// one record.
type Records struct {
	items []SubRecord
	// highWater is the largest ID assigned since the last reset.
	highWater int
}

// NewRecords returns a collection holding a single empty record.
func NewRecords() Records {
	return Records{items: []SubRecord{{ID: 1, No: "1"}}, highWater: 1}
}

// Len returns the number of records.
func (r *Records) Len() int {
	return len(r.items)
}

// List returns a copy of the records in display order.
func (r *Records) List() []SubRecord {
	out := make([]SubRecord, len(r.items))
	copy(out, r.items)
	return out
}

// Get returns the record with the given ID.
func (r *Records) Get(id int) (SubRecord, bool) {
	if i := r.index(id); i >= 0 {
		return r.items[i], true
	}
	return SubRecord{}, false
}

// Add appends an empty record and returns it. The ID is max+1 over both the
// current records and every ID assigned before, so removing the highest
// record does not free its ID.
func (r *Records) Add() SubRecord {
	maxID := r.highWater
	for _, rec := range r.items {
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}
	rec := SubRecord{
		ID: maxID + 1,
		No: strconv.Itoa(len(r.items) + 1),
	}
	r.items = append(r.items, rec)
	r.highWater = rec.ID
	return rec
}

// Remove deletes the record with the given ID and renumbers the rest.
// Returns ErrLastRecord, leaving the collection unchanged, when only one
// record remains. Removing an unknown ID is a no-op.
func (r *Records) Remove(id int) error {
	if len(r.items) <= 1 {
		return ErrLastRecord
	}
	i := r.index(id)
	if i < 0 {
		return nil
	}

	kept := make([]SubRecord, 0, len(r.items)-1)
	kept = append(kept, r.items[:i]...)
	kept = append(kept, r.items[i+1:]...)
	for n := range kept {
		kept[n].No = strconv.Itoa(n + 1)
	}
	r.items = kept
	return nil
}

// Update replaces one field of the record with the given ID. Unknown IDs are
// a no-op. Closed-set fields only accept their listed options or empty, and
// the estimated cost only accepts a non-negative decimal or empty.
func (r *Records) Update(id int, field RecordField, value string) error {
	if err := checkRecordValue(field, value); err != nil {
		return err
	}
	i := r.index(id)
	if i < 0 {
		return nil
	}

	rec := &r.items[i]
	switch field {
	case FieldProposal:
		rec.Proposal = value
	case FieldEstimatedCost:
		rec.EstimatedCost = value
	case FieldApproach:
		rec.Approach = value
	case FieldSDGGoals:
		rec.SDGGoals = value
	case FieldFundingSource:
		rec.FundingSource = value
	case FieldName:
		rec.Name = value
	case FieldInstitution:
		rec.Institution = value
	}
	return nil
}

// Reset replaces the collection with a single fresh record.
func (r *Records) Reset() {
	*r = NewRecords()
}

// Clone returns an independent copy.
func (r *Records) Clone() Records {
	return Records{items: r.List(), highWater: r.highWater}
}

// MarshalJSON encodes the records as a list in display order.
func (r Records) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.List())
}

func (r *Records) index(id int) int {
	for i, rec := range r.items {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// checkRecordValue enforces the input constraints of each field.
func checkRecordValue(field RecordField, value string) error {
	switch field {
	case FieldProposal, FieldSDGGoals, FieldName, FieldInstitution:
		return nil
	case FieldEstimatedCost:
		if value == "" || isDecimal(value) {
			return nil
		}
		return invalidCost(value)
	case FieldApproach:
		return checkOption(field, value, ApproachOptions)
	case FieldFundingSource:
		return checkOption(field, value, FundingSourceOptions)
	default:
		return unknownField(string(field))
	}
}

func checkOption(field RecordField, value string, options []string) error {
	if value == "" {
		return nil
	}
	for _, opt := range options {
		if opt == value {
			return nil
		}
	}
	return invalidOption(field, value)
}

// isDecimal accepts unsigned decimals such as "50000", "1250.75" or ".5".
func isDecimal(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	digits, dot := 0, false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}
