package web

import (
	"golang.org/x/text/language"

	"github.com/JonMunkholm/proposals/internal/core"
)

// FormView is the client representation of a form.
type FormView struct {
	ID         string              `json:"id"`
	Locale     string              `json:"locale"`
	Fields     core.TopLevelFields `json:"fields"`
	Attachment *core.Attachment    `json:"attachment"`
	Records    core.Records        `json:"records"`
	Phase      core.Phase          `json:"phase"`
	Submitting bool                `json:"submitting"`
	Message    *MessageView        `json:"message,omitempty"`
}

// MessageView is a localized user message.
type MessageView struct {
	Kind string `json:"kind"`
	Code string `json:"code"`
	Text string `json:"text"`
}

func (s *Server) formView(id string, tag language.Tag, f core.Form) FormView {
	v := FormView{
		ID:         id,
		Locale:     tag.String(),
		Fields:     f.Fields,
		Attachment: f.Attachment,
		Records:    f.Records,
		Phase:      f.Phase,
		Submitting: f.Submitting(),
	}
	if !f.Message.IsZero() {
		v.Message = &MessageView{
			Kind: string(f.Message.Kind),
			Code: f.Message.Code,
			Text: s.translator.Message(tag, f.Message),
		}
	}
	return v
}
