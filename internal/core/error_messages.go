package core

// error_messages.go maps errors to user messages.
//
// # Message Codes Reference
//
// Every user-visible outcome carries a catalog key (translated by the
// i18n package) and a code that users can quote to support staff.
//
// # Validation (VAL001-VAL099)
//
//	VAL001 - Main fields: district, DS or GN division is empty
//	VAL002 - Attachment required: no file selected
//	VAL003 - Project details: a proposal or estimated cost is empty
//	VAL004 - Invalid option: value is not in the closed option set
//	VAL005 - Invalid cost: estimated cost is not a number
//	VAL006 - Unknown field: field name is not part of the form
//
// # Files (FILE001-FILE099)
//
//	FILE001 - File too large: attachment exceeds 10MB
//	FILE002 - File type: only PDF, Word and Excel documents are accepted
//	FILE003 - Read error: attachment could not be read (reported as SUB001)
//
// # Records (REC001-REC099)
//
//	REC001 - Last record: at least one project is required
//
// # Submission (SUB000-SUB099)
//
//	SUB000 - Submitted: data submitted successfully
//	SUB001 - Failed: submission failed, please try again
//	SUB002 - Busy: a submission for this form is already running
//	SUB003 - System busy: too many submissions in progress
//
// # Default (ERR000)
//
//	ERR000 - Unknown error: an unexpected error occurred

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for every user-visible failure.
var (
	ErrMainFieldsMissing     = errors.New("main fields missing")
	ErrAttachmentMissing     = errors.New("attachment required")
	ErrProjectDetailsMissing = errors.New("project details missing")
	ErrInvalidOption         = errors.New("invalid option")
	ErrInvalidCost           = errors.New("invalid number")
	ErrUnknownField          = errors.New("unknown field")

	ErrAttachmentTooLarge = errors.New("file too large")
	ErrAttachmentType     = errors.New("file type not allowed")
	ErrAttachmentRead     = errors.New("attachment read failed")

	ErrLastRecord = errors.New("at least one record required")

	ErrTransmit = errors.New("transmission failed")
	ErrBusy     = errors.New("submission already in progress")
)

// MessageKind tells the UI how to present a message.
type MessageKind string

const (
	KindNone    MessageKind = ""
	KindSuccess MessageKind = "success"
	KindError   MessageKind = "error"
)

// UserMessage is a user-facing outcome: a catalog key to translate plus a
// support code.
type UserMessage struct {
	Kind MessageKind `json:"kind,omitempty"`
	Key  string      `json:"key,omitempty"`
	Code string      `json:"code,omitempty"`
}

// IsZero reports whether no message is set.
func (m UserMessage) IsZero() bool {
	return m.Key == ""
}

// Catalog keys. The i18n package must define each of these.
const (
	KeyMainFields      = "form.error.main_fields"
	KeyAttachmentReq   = "form.error.attachment_required"
	KeyProjectDetails  = "form.error.project_details"
	KeyInvalidOption   = "form.error.invalid_option"
	KeyInvalidCost     = "form.error.invalid_cost"
	KeyUnknownField    = "form.error.unknown_field"
	KeyFileTooLarge    = "form.error.file_too_large"
	KeyFileType        = "form.error.file_type"
	KeyLastRecord      = "form.error.last_record"
	KeySubmitted       = "form.success.submitted"
	KeySubmitFailed    = "form.error.submit_failed"
	KeySubmitBusy      = "form.error.submit_busy"
	KeySystemBusy      = "form.error.system_busy"
	KeyUnexpectedError = "form.error.unexpected"
)

// CatalogKeys lists every key a locale catalog must define.
var CatalogKeys = []string{
	KeyMainFields, KeyAttachmentReq, KeyProjectDetails, KeyInvalidOption,
	KeyInvalidCost, KeyUnknownField, KeyFileTooLarge, KeyFileType,
	KeyLastRecord, KeySubmitted, KeySubmitFailed, KeySubmitBusy,
	KeySystemBusy, KeyUnexpectedError,
}

var (
	// MsgSubmitted is shown after a successful submission.
	MsgSubmitted = UserMessage{Kind: KindSuccess, Key: KeySubmitted, Code: "SUB000"}

	// MsgSubmitFailed is the generic retry prompt for encode and transmit
	// failures. The cause is never shown.
	MsgSubmitFailed = UserMessage{Kind: KindError, Key: KeySubmitFailed, Code: "SUB001"}
)

// errorMessage pairs a sentinel with its user message.
type errorMessage struct {
	err error
	msg UserMessage
}

// errorMessages is checked in order with errors.Is; the first match wins.
var errorMessages = []errorMessage{
	{ErrMainFieldsMissing, UserMessage{KindError, KeyMainFields, "VAL001"}},
	{ErrAttachmentMissing, UserMessage{KindError, KeyAttachmentReq, "VAL002"}},
	{ErrProjectDetailsMissing, UserMessage{KindError, KeyProjectDetails, "VAL003"}},
	{ErrInvalidOption, UserMessage{KindError, KeyInvalidOption, "VAL004"}},
	{ErrInvalidCost, UserMessage{KindError, KeyInvalidCost, "VAL005"}},
	{ErrUnknownField, UserMessage{KindError, KeyUnknownField, "VAL006"}},

	{ErrAttachmentTooLarge, UserMessage{KindError, KeyFileTooLarge, "FILE001"}},
	{ErrAttachmentType, UserMessage{KindError, KeyFileType, "FILE002"}},
	{ErrAttachmentRead, MsgSubmitFailed},

	{ErrLastRecord, UserMessage{KindError, KeyLastRecord, "REC001"}},

	{ErrTransmit, MsgSubmitFailed},
	{ErrBusy, UserMessage{KindError, KeySubmitBusy, "SUB002"}},
	{ErrTooManySubmissions, UserMessage{KindError, KeySystemBusy, "SUB003"}},
}

// defaultMessage is returned when nothing matches (ERR000). Support staff
// should check the logs for the original error.
var defaultMessage = UserMessage{Kind: KindError, Key: KeyUnexpectedError, Code: "ERR000"}

// MapError converts an error to its user message. Wrapped errors are
// matched with errors.Is; unknown errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, em := range errorMessages {
		if errors.Is(err, em.err) {
			return em.msg
		}
	}
	return defaultMessage
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// ValidationError names the rule that rejected the form or an input.
type ValidationError struct {
	Field string // Field name, empty for aggregate rules
	Value string // Rejected value, if any
	Err   error  // Sentinel
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (%q)", e.Value)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func unknownField(name string) error {
	return &ValidationError{Field: name, Err: ErrUnknownField}
}

func invalidOption(field RecordField, value string) error {
	return &ValidationError{Field: string(field), Value: value, Err: ErrInvalidOption}
}

func invalidCost(value string) error {
	return &ValidationError{Field: string(FieldEstimatedCost), Value: value, Err: ErrInvalidCost}
}
