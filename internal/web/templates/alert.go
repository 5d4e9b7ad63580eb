// Package templates renders HTML fragments for HTMX requests.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Alert is one status line shown above the form.
type Alert struct {
	Kind      string // success or error
	Text      string
	CodeLabel string
	Code      string
}

// StatusAlert renders the submission status banner. A zero Text renders an
// empty live region so HTMX swaps clear a previous message.
func StatusAlert(a Alert) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if a.Text == "" {
			_, err := io.WriteString(w, `<div id="form-status" role="status" aria-live="polite"></div>`)
			return err
		}

		class := "alert alert-success"
		role := "status"
		if a.Kind == "error" {
			class = "alert alert-error"
			role = "alert"
		}

		var out string
		out += `<div id="form-status" class="` + templ.EscapeString(class) + `" role="` + role + `" aria-live="polite">`
		out += `<p class="alert-message">` + templ.EscapeString(a.Text) + `</p>`
		if a.Code != "" {
			out += `<p class="alert-code">` + templ.EscapeString(a.CodeLabel) + `: <code>` + templ.EscapeString(a.Code) + `</code></p>`
		}
		out += `</div>`

		_, err := io.WriteString(w, out)
		return err
	})
}
