package core

// form.go holds the form aggregate and its event transitions.
//
// Every user action is an Event. Reducer.Reduce applies an event to a copy of
// the form and returns the new form plus the Effect the caller must perform.
// Only SubmitRequested ever yields an effect; the caller reports the outcome
// back with SubmitSucceeded or SubmitFailed.

import "errors"

// Form is the complete state of one proposal form.
type Form struct {
	Fields     TopLevelFields `json:"fields"`
	Attachment *Attachment    `json:"attachment"`
	Records    Records        `json:"records"`
	Phase      Phase          `json:"phase"`
	Message    UserMessage    `json:"message"`
}

// NewForm returns an empty form in the Idle phase.
func NewForm() Form {
	return Form{
		Records: NewRecords(),
		Phase:   PhaseIdle,
	}
}

// Submitting reports whether a submission is in flight.
func (f *Form) Submitting() bool {
	return f.Phase == PhaseSubmitting
}

// Clone returns a copy that shares no mutable state with f.
func (f *Form) Clone() Form {
	out := *f
	out.Records = f.Records.Clone()
	if f.Attachment != nil {
		att := *f.Attachment
		out.Attachment = &att
	}
	return out
}

// reset restores the initial field values. Phase and message are left to
// the caller.
func (f *Form) reset() {
	f.Fields = TopLevelFields{}
	f.Attachment = nil
	f.Records.Reset()
}

// clearMessage returns a finished form to Idle. A running submission keeps
// its phase.
func (f *Form) clearMessage() {
	if f.Phase == PhaseSubmitting {
		return
	}
	f.Phase = PhaseIdle
	f.Message = UserMessage{}
}

// reject records a refused input. While submitting the input is refused
// silently so the Submitting phase keeps an empty message.
func (f *Form) reject(err error) {
	if f.Phase == PhaseSubmitting {
		return
	}
	f.Phase = PhaseFailed
	f.Message = MapError(err)
}

// Effect is I/O the caller must perform after a transition.
type Effect int

const (
	EffectNone Effect = iota
	EffectSubmit
)

// Event is a user action or a submission outcome.
type Event interface {
	apply(f *Form, r Reducer) (Effect, error)
}

// SetField edits a top-level field.
type SetField struct {
	Field TopLevelField
	Value string
}

// SelectAttachment picks the form's file.
type SelectAttachment struct {
	Attachment Attachment
}

// ClearAttachment removes the selected file.
type ClearAttachment struct{}

// AddRecord appends an empty project.
type AddRecord struct{}

// RemoveRecord deletes a project by ID.
type RemoveRecord struct {
	ID int
}

// UpdateRecord edits one field of a project.
type UpdateRecord struct {
	ID    int
	Field RecordField
	Value string
}

// SubmitRequested is the user's submit intent.
type SubmitRequested struct{}

// SubmitSucceeded reports that the payload was transmitted.
type SubmitSucceeded struct{}

// SubmitFailed reports an encode or transmit failure.
type SubmitFailed struct {
	Err error
}

func (e SetField) apply(f *Form, _ Reducer) (Effect, error) {
	f.clearMessage()
	return EffectNone, f.Fields.Set(e.Field, e.Value)
}

func (e SelectAttachment) apply(f *Form, r Reducer) (Effect, error) {
	f.clearMessage()
	if err := r.Policy.Check(e.Attachment); err != nil {
		return EffectNone, err
	}
	att := e.Attachment
	f.Attachment = &att
	return EffectNone, nil
}

func (ClearAttachment) apply(f *Form, _ Reducer) (Effect, error) {
	f.clearMessage()
	f.Attachment = nil
	return EffectNone, nil
}

func (AddRecord) apply(f *Form, _ Reducer) (Effect, error) {
	f.clearMessage()
	f.Records.Add()
	return EffectNone, nil
}

func (e RemoveRecord) apply(f *Form, _ Reducer) (Effect, error) {
	f.clearMessage()
	return EffectNone, f.Records.Remove(e.ID)
}

func (e UpdateRecord) apply(f *Form, _ Reducer) (Effect, error) {
	f.clearMessage()
	return EffectNone, f.Records.Update(e.ID, e.Field, e.Value)
}

func (SubmitRequested) apply(f *Form, _ Reducer) (Effect, error) {
	if f.Submitting() {
		return EffectNone, nil
	}
	f.clearMessage()

	if result := ValidateForm(f); !result.Valid {
		f.Phase = PhaseFailed
		f.Message = result.Message()
		return EffectNone, nil
	}

	f.Phase = PhaseSubmitting
	return EffectSubmit, nil
}

func (SubmitSucceeded) apply(f *Form, _ Reducer) (Effect, error) {
	if !f.Submitting() {
		return EffectNone, nil
	}
	f.reset()
	f.Phase = PhaseSucceeded
	f.Message = MsgSubmitted
	return EffectNone, nil
}

func (e SubmitFailed) apply(f *Form, _ Reducer) (Effect, error) {
	if !f.Submitting() {
		return EffectNone, nil
	}
	f.Phase = PhaseFailed
	f.Message = MsgSubmitFailed
	if errors.Is(e.Err, ErrTooManySubmissions) {
		f.Message = MapError(e.Err)
	}
	return EffectNone, nil
}

// Reducer applies events under a selection policy.
type Reducer struct {
	Policy AttachmentPolicy
}

// Reduce applies ev to a copy of f. The input form is never modified.
// Refused inputs leave their target unchanged and set an error message.
func (r Reducer) Reduce(f Form, ev Event) (Form, Effect) {
	next := f.Clone()
	effect, err := ev.apply(&next, r)
	if err != nil {
		next.reject(err)
	}
	return next, effect
}

// Reduce applies ev under the default attachment policy.
func Reduce(f Form, ev Event) (Form, Effect) {
	return Reducer{Policy: DefaultAttachmentPolicy()}.Reduce(f, ev)
}
