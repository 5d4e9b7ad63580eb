package core

import "time"

// Phase is the submission state of a form.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// MaxAttachmentSize is the largest attachment accepted at selection (10 MiB).
const MaxAttachmentSize int64 = 10 * 1024 * 1024

// TopLevelField names one of the fixed form fields.
type TopLevelField string

const (
	FieldDistrict    TopLevelField = "district"
	FieldDivision    TopLevelField = "dn"
	FieldSubdivision TopLevelField = "gn"
)

// TopLevelFields holds the location fields shared by every proposal.
type TopLevelFields struct {
	District    string `json:"district"`
	Division    string `json:"dn"`
	Subdivision string `json:"gn"`
}

// Complete reports whether all three fields are non-empty.
func (t TopLevelFields) Complete() bool {
	return t.District != "" && t.Division != "" && t.Subdivision != ""
}

// Set replaces one field by name.
func (t *TopLevelFields) Set(field TopLevelField, value string) error {
	switch field {
	case FieldDistrict:
		t.District = value
	case FieldDivision:
		t.Division = value
	case FieldSubdivision:
		t.Subdivision = value
	default:
		return unknownField(string(field))
	}
	return nil
}

// ApproachOptions is the closed set of development approaches.
var ApproachOptions = []string{
	"සමජ පරිසර",
	"ආහාර සුරක්ෂිතතාව",
	"නිශ්පාදන ආර්ථිකය",
	"මානව සම්පත් සංවර්දන",
	"රැකවරනය",
	"සැලසුම් ජාල හා ප්‍රවේශය",
}

// FundingSourceOptions is the closed set of expected funding sources.
var FundingSourceOptions = []string{
	"පලාත් පාලන",
	"ප්‍රාදේශීය සභා",
	"රාජ්‍ය නොවන සංවිදාන",
	"රේකීය අමාත්‍යාංශය",
}

// Options groups the closed option sets for UI consumption.
type Options struct {
	Approaches     []string `json:"approaches"`
	FundingSources []string `json:"fundingSources"`
}

// AvailableOptions returns copies of the option sets.
func AvailableOptions() Options {
	return Options{
		Approaches:     append([]string(nil), ApproachOptions...),
		FundingSources: append([]string(nil), FundingSourceOptions...),
	}
}

// SubmissionResult summarizes one completed submission attempt.
type SubmissionResult struct {
	SubmissionID    string
	Phase           Phase
	Records         int
	AttachmentBytes int64
	Duration        time.Duration
	Err             error
}
