package core

// validation.go checks a form before submission.
//
// Rules run in a fixed order and the first failure wins:
//  1. District, DS and GN divisions are all filled
//  2. An attachment is selected
//  3. Every project has a proposal and an estimated cost
//
// The project rule reports at the aggregate level and does not say which
// project is incomplete.

// ValidationResult is the outcome of validating a form.
type ValidationResult struct {
	Valid bool             // True if every rule passed
	Error *ValidationError // First failed rule (nil if Valid)
}

// Message returns the user message for an invalid result.
func (r ValidationResult) Message() UserMessage {
	if r.Valid || r.Error == nil {
		return UserMessage{}
	}
	return MapError(r.Error)
}

// Validate evaluates the submission rules. It has no side effects.
func Validate(top TopLevelFields, att *Attachment, records []SubRecord) ValidationResult {
	if !top.Complete() {
		return invalid(&ValidationError{Err: ErrMainFieldsMissing})
	}
	if att == nil {
		return invalid(&ValidationError{Field: "file", Err: ErrAttachmentMissing})
	}
	for _, rec := range records {
		if !rec.Complete() {
			return invalid(&ValidationError{Err: ErrProjectDetailsMissing})
		}
	}
	return ValidationResult{Valid: true}
}

// ValidateForm validates the current state of a form.
func ValidateForm(f *Form) ValidationResult {
	return Validate(f.Fields, f.Attachment, f.Records.List())
}

func invalid(err *ValidationError) ValidationResult {
	return ValidationResult{Valid: false, Error: err}
}
