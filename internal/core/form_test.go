package core

import (
	"errors"
	"testing"
)

// filledForm returns a form that passes validation.
func filledForm(t *testing.T) Form {
	t.Helper()
	f := NewForm()
	steps := []Event{
		SetField{Field: FieldDistrict, Value: "Colombo"},
		SetField{Field: FieldDivision, Value: "DS1"},
		SetField{Field: FieldSubdivision, Value: "GN1"},
		SelectAttachment{Attachment: *pdfAttachment()},
		UpdateRecord{ID: 1, Field: FieldProposal, Value: "Road"},
		UpdateRecord{ID: 1, Field: FieldEstimatedCost, Value: "50000"},
	}
	for _, ev := range steps {
		f, _ = Reduce(f, ev)
		if f.Phase != PhaseIdle {
			t.Fatalf("%T left phase %s (%+v)", ev, f.Phase, f.Message)
		}
	}
	return f
}

func TestReduce_DoesNotModifyInput(t *testing.T) {
	f := NewForm()
	next, _ := Reduce(f, AddRecord{})
	next, _ = Reduce(next, SetField{Field: FieldDistrict, Value: "Galle"})

	if f.Records.Len() != 1 || f.Fields.District != "" {
		t.Errorf("input form changed: %+v", f)
	}
	if next.Records.Len() != 2 || next.Fields.District != "Galle" {
		t.Errorf("next = %+v", next)
	}
}

func TestReduce_SubmitValid(t *testing.T) {
	f := filledForm(t)

	next, effect := Reduce(f, SubmitRequested{})
	if effect != EffectSubmit {
		t.Fatalf("effect = %v, want EffectSubmit", effect)
	}
	if next.Phase != PhaseSubmitting || !next.Message.IsZero() {
		t.Errorf("phase = %s message = %+v", next.Phase, next.Message)
	}
}

func TestReduce_SubmitInvalidShortCircuits(t *testing.T) {
	tests := []struct {
		name     string
		events   []Event
		wantCode string
	}{
		{"empty form", nil, "VAL001"},
		{
			"no attachment",
			[]Event{
				SetField{Field: FieldDistrict, Value: "Colombo"},
				SetField{Field: FieldDivision, Value: "DS1"},
				SetField{Field: FieldSubdivision, Value: "GN1"},
			},
			"VAL002",
		},
		{
			"incomplete project",
			[]Event{
				SetField{Field: FieldDistrict, Value: "Colombo"},
				SetField{Field: FieldDivision, Value: "DS1"},
				SetField{Field: FieldSubdivision, Value: "GN1"},
				SelectAttachment{Attachment: *pdfAttachment()},
			},
			"VAL003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm()
			for _, ev := range tt.events {
				f, _ = Reduce(f, ev)
			}
			next, effect := Reduce(f, SubmitRequested{})
			if effect != EffectNone {
				t.Errorf("effect = %v, want EffectNone", effect)
			}
			if next.Phase != PhaseFailed {
				t.Errorf("phase = %s, want failed", next.Phase)
			}
			if next.Message.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", next.Message.Code, tt.wantCode)
			}
		})
	}
}

func TestReduce_SubmitWhileSubmittingIsIgnored(t *testing.T) {
	f, _ := Reduce(filledForm(t), SubmitRequested{})

	next, effect := Reduce(f, SubmitRequested{})
	if effect != EffectNone {
		t.Errorf("second submit produced effect %v", effect)
	}
	if next.Phase != PhaseSubmitting {
		t.Errorf("phase = %s, want submitting", next.Phase)
	}
}

func TestReduce_SubmitSucceededResets(t *testing.T) {
	f, _ := Reduce(filledForm(t), AddRecord{})
	f, _ = Reduce(f, UpdateRecord{ID: 2, Field: FieldProposal, Value: "Well"})
	f, _ = Reduce(f, UpdateRecord{ID: 2, Field: FieldEstimatedCost, Value: "10"})
	f, _ = Reduce(f, SubmitRequested{})

	next, _ := Reduce(f, SubmitSucceeded{})
	if next.Phase != PhaseSucceeded || next.Message != MsgSubmitted {
		t.Errorf("phase = %s message = %+v", next.Phase, next.Message)
	}
	if next.Fields != (TopLevelFields{}) {
		t.Errorf("fields not reset: %+v", next.Fields)
	}
	if next.Attachment != nil {
		t.Error("attachment not cleared")
	}
	if got := next.Records.List(); len(got) != 1 || got[0] != (SubRecord{ID: 1, No: "1"}) {
		t.Errorf("records not reset: %+v", got)
	}
}

func TestReduce_SubmitFailedPreservesForm(t *testing.T) {
	f, _ := Reduce(filledForm(t), SubmitRequested{})

	next, _ := Reduce(f, SubmitFailed{Err: errors.New("network down")})
	if next.Phase != PhaseFailed || next.Message != MsgSubmitFailed {
		t.Errorf("phase = %s message = %+v", next.Phase, next.Message)
	}
	if next.Fields != completeFields() {
		t.Errorf("fields changed: %+v", next.Fields)
	}
	if next.Attachment == nil || next.Attachment.Name != "plan.pdf" {
		t.Errorf("attachment changed: %+v", next.Attachment)
	}
	if next.Records.List()[0].Proposal != "Road" {
		t.Errorf("records changed: %+v", next.Records.List())
	}
}

func TestReduce_SubmitFailedSystemBusy(t *testing.T) {
	f, _ := Reduce(filledForm(t), SubmitRequested{})
	next, _ := Reduce(f, SubmitFailed{Err: ErrTooManySubmissions})
	if next.Message.Code != "SUB003" {
		t.Errorf("code = %s, want SUB003", next.Message.Code)
	}
}

func TestReduce_OutcomeOutsideSubmittingIsIgnored(t *testing.T) {
	f := filledForm(t)
	for _, ev := range []Event{SubmitSucceeded{}, SubmitFailed{Err: errors.New("late")}} {
		next, _ := Reduce(f, ev)
		if next.Phase != PhaseIdle || next.Fields != f.Fields {
			t.Errorf("%T changed idle form: %+v", ev, next)
		}
	}
}

func TestReduce_EditClearsMessage(t *testing.T) {
	f, _ := Reduce(NewForm(), SubmitRequested{})
	if f.Phase != PhaseFailed {
		t.Fatalf("setup: phase = %s", f.Phase)
	}

	next, _ := Reduce(f, SetField{Field: FieldDistrict, Value: "Kandy"})
	if next.Phase != PhaseIdle || !next.Message.IsZero() {
		t.Errorf("phase = %s message = %+v", next.Phase, next.Message)
	}
}

func TestReduce_RejectedInputs(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		wantCode string
	}{
		{"remove last record", RemoveRecord{ID: 1}, "REC001"},
		{"oversized attachment", SelectAttachment{Attachment: Attachment{Name: "big.pdf", Size: 11 * 1024 * 1024}}, "FILE001"},
		{"wrong attachment type", SelectAttachment{Attachment: Attachment{Name: "a.png", MediaType: "image/png", Size: 1}}, "FILE002"},
		{"unknown top-level field", SetField{Field: "zip", Value: "1"}, "VAL006"},
		{"approach outside option set", UpdateRecord{ID: 1, Field: FieldApproach, Value: "Tourism"}, "VAL004"},
		{"non-numeric cost", UpdateRecord{ID: 1, Field: FieldEstimatedCost, Value: "abc"}, "VAL005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm()
			next, effect := Reduce(f, tt.event)
			if effect != EffectNone {
				t.Errorf("effect = %v", effect)
			}
			if next.Phase != PhaseFailed || next.Message.Code != tt.wantCode {
				t.Errorf("phase = %s code = %s, want failed %s", next.Phase, next.Message.Code, tt.wantCode)
			}
			if next.Records.Len() != 1 || next.Attachment != nil || next.Fields != (TopLevelFields{}) {
				t.Errorf("rejected input changed state: %+v", next)
			}
		})
	}
}

func TestReduce_OversizedSelectionKeepsPrevious(t *testing.T) {
	f := filledForm(t)
	next, _ := Reduce(f, SelectAttachment{Attachment: Attachment{Name: "big.pdf", Size: 11 * 1024 * 1024}})
	if next.Attachment == nil || next.Attachment.Name != "plan.pdf" {
		t.Errorf("attachment = %+v, want previous plan.pdf", next.Attachment)
	}
}

func TestReduce_EditsDuringSubmitKeepPhase(t *testing.T) {
	f, _ := Reduce(filledForm(t), SubmitRequested{})

	next, _ := Reduce(f, SetField{Field: FieldDistrict, Value: "Kandy"})
	if next.Phase != PhaseSubmitting || next.Fields.District != "Kandy" {
		t.Errorf("edit during submit: phase = %s district = %q", next.Phase, next.Fields.District)
	}

	next, _ = Reduce(next, RemoveRecord{ID: 1})
	if next.Phase != PhaseSubmitting || !next.Message.IsZero() {
		t.Errorf("rejection during submit: phase = %s message = %+v", next.Phase, next.Message)
	}
}

func TestReduce_ClearAttachment(t *testing.T) {
	next, _ := Reduce(filledForm(t), ClearAttachment{})
	if next.Attachment != nil {
		t.Error("attachment not cleared")
	}
}

func TestReducer_CustomPolicy(t *testing.T) {
	r := Reducer{Policy: AttachmentPolicy{MaxSize: 4}}
	next, _ := r.Reduce(NewForm(), SelectAttachment{Attachment: *pdfAttachment()})
	if next.Message.Code != "FILE001" {
		t.Errorf("code = %s, want FILE001", next.Message.Code)
	}
}
