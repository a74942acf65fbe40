package core

import (
	"bytes"
	"encoding/base64"
	"io"
	"io/ioutil"
	"net/http"
	"net/mail"
	"net/url"
	"os"
	"path/filepath"
)

type (
	Attachment struct {
		Content     *bytes.Buffer
		ContentType string
		Filename    string
	}

	// EmailMessage is a plain-text email composition. The app only ever
	// composes content; delivery is delegated to an EmailService.
	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string
		Attachments []Attachment
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) Attach(r io.Reader, filename string, ct ...string) error {
	at := Attachment{Filename: filename, Content: new(bytes.Buffer)}

	content, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}
	encoder := base64.NewEncoder(base64.StdEncoding, at.Content)
	if _, err := encoder.Write(content); err != nil {
		return err
	}
	_ = encoder.Close()

	if len(ct) > 0 {
		at.ContentType = ct[0]
	} else {
		at.ContentType = http.DetectContentType(content)
	}
	m.Attachments = append(m.Attachments, at)
	return nil
}

func (m *EmailMessage) AttachFile(path string, contentType ...string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.Attach(f, filepath.Base(path), contentType...)
}

func (m *EmailMessage) HasRecipients() bool  { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool     { return m.BodyStr != "" }
func (m *EmailMessage) HasAttachments() bool { return len(m.Attachments) > 0 }

// MailtoURL renders the message as a mailto: link so the frontend can hand
// it off to the user's mail client instead of sending server-side.
func (m *EmailMessage) MailtoURL() string {
	if !m.HasRecipients() {
		return ""
	}
	q := make(url.Values)
	q.Set("subject", m.Subject)
	q.Set("body", m.BodyStr)
	u := url.URL{
		Scheme:   "mailto",
		Opaque:   url.QueryEscape(m.To[0].Address),
		RawQuery: q.Encode(),
	}
	return u.String()
}

// ParseEmailAddress validates a raw recipient address.
func ParseEmailAddress(addr string) (mail.Address, error) {
	parsed, err := mail.ParseAddress(CleanString(addr, true /* lower */))
	if err != nil {
		return mail.Address{}, NewValidationError(err, FieldError{Field: "email", Error: "invalid email address"})
	}
	return *parsed, nil
}
