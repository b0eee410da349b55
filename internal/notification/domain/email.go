package domain

import (
	"html"
	"net/mail"

	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
)

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
}

func (e Email) Validate() error {
	v := &apperr.ValidationError{}
	if e.To == "" {
		v.Add("to", "must not be empty")
	} else if _, err := mail.ParseAddress(e.To); err != nil {
		v.Add("to", "must be a valid email address")
	}
	if e.Subject == "" {
		v.Add("subject", "must not be empty")
	}
	if e.Text == "" {
		v.Add("text", "must not be empty")
	}
	return v.Err()
}

// WithDefaultHTML fills an empty HTML body with the bolded text.
func (e Email) WithDefaultHTML() Email {
	if e.HTML == "" {
		e.HTML = "<b>" + html.EscapeString(e.Text) + "</b>"
	}
	return e
}
