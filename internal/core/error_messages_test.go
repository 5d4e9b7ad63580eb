package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantKey  string
		wantKind MessageKind
	}{
		{"nil error returns empty", nil, "", "", KindNone},
		{"main fields", ErrMainFieldsMissing, "VAL001", KeyMainFields, KindError},
		{"attachment required", ErrAttachmentMissing, "VAL002", KeyAttachmentReq, KindError},
		{"project details", ErrProjectDetailsMissing, "VAL003", KeyProjectDetails, KindError},
		{"invalid option wrapped", invalidOption(FieldApproach, "x"), "VAL004", KeyInvalidOption, KindError},
		{"invalid cost wrapped", invalidCost("abc"), "VAL005", KeyInvalidCost, KindError},
		{"unknown field wrapped", unknownField("zip"), "VAL006", KeyUnknownField, KindError},
		{"file too large", &ValidationError{Field: "file", Err: ErrAttachmentTooLarge}, "FILE001", KeyFileTooLarge, KindError},
		{"file type", &ValidationError{Field: "file", Err: ErrAttachmentType}, "FILE002", KeyFileType, KindError},
		{"read failure is generic", fmt.Errorf("%w: open x.pdf: gone", ErrAttachmentRead), "SUB001", KeySubmitFailed, KindError},
		{"last record", ErrLastRecord, "REC001", KeyLastRecord, KindError},
		{"transmit failure is generic", fmt.Errorf("%w: connection refused", ErrTransmit), "SUB001", KeySubmitFailed, KindError},
		{"busy", ErrBusy, "SUB002", KeySubmitBusy, KindError},
		{"system busy", ErrTooManySubmissions, "SUB003", KeySystemBusy, KindError},
		{"unknown error falls back", errors.New("something odd"), "ERR000", KeyUnexpectedError, KindError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", got.Key, tt.wantKey)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"known sentinel", ErrLastRecord, true},
		{"wrapped sentinel", fmt.Errorf("remove: %w", ErrLastRecord), true},
		{"unknown", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		err  *ValidationError
		want string
	}{
		{&ValidationError{Err: ErrMainFieldsMissing}, "main fields missing"},
		{&ValidationError{Field: "file", Err: ErrAttachmentType}, "file type not allowed: file"},
		{&ValidationError{Field: "estimatedCost", Value: "abc", Err: ErrInvalidCost}, `invalid number: estimatedCost ("abc")`},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestUserMessage_IsZero(t *testing.T) {
	if !(UserMessage{}).IsZero() {
		t.Error("empty message should be zero")
	}
	if MsgSubmitted.IsZero() {
		t.Error("MsgSubmitted should not be zero")
	}
}
