// Package render substitutes resolved placeholder values into a template and
// builds the payload handed to the email composer.
package render

import (
	"strings"

	"crm-mailmerge/internal/model"
	"crm-mailmerge/internal/placeholder"
	"crm-mailmerge/internal/sanitizer"
)

// AttachmentTag marks attachments that came from the template.
const AttachmentTag = "template"

// Attachment is a template file in the shape the composer expects.
type Attachment struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NameForDisplay string `json:"nameForDisplay"`
	Tag            string `json:"tag"`
	Type           string `json:"type"`
}

// RecordRef points at a CRM record.
type RecordRef struct {
	Module string `json:"module"`
	ID     string `json:"id"`
}

// Recipient is a prefilled "to" address.
type Recipient struct {
	RecordRef
	Email string `json:"email,omitempty"`
}

// Payload is the finished message ready for the composer.
type Payload struct {
	Subject     string       `json:"subject"`
	BodyHTML    string       `json:"html_body"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments"`
	Related     RecordRef    `json:"related"`
	ToAddresses []Recipient  `json:"to_addresses"`
}

// Replace substitutes each descriptor's value, in order, for the first
// remaining occurrence of its full match. Unresolved descriptors blank their
// placeholder; text that never became a descriptor is left alone.
func Replace(text string, ds []placeholder.Descriptor) string {
	for _, d := range ds {
		if d.FullMatch == "" {
			continue
		}
		text = strings.Replace(text, d.FullMatch, d.Value, 1)
	}
	return text
}

// Build renders subject and body and attaches the template's files.
func Build(subject model.Record, tmpl model.EmailTemplate, ds []placeholder.Descriptor, atts []model.Attachment) Payload {
	p := Payload{
		Subject:     Replace(tmpl.Subject, ds),
		BodyHTML:    Replace(tmpl.BodyHTML, ds),
		Attachments: FormatAttachments(atts),
		Related:     RecordRef{Module: subject.Module, ID: subject.ID},
		ToAddresses: []Recipient{{
			RecordRef: RecordRef{Module: subject.Module, ID: subject.ID},
			Email:     subject.PrimaryEmail(),
		}},
	}
	p.Body = sanitizer.StripHTML(p.BodyHTML)
	return p
}

// FormatAttachments converts template notes into composer attachments.
func FormatAttachments(atts []model.Attachment) []Attachment {
	out := make([]Attachment, 0, len(atts))
	for _, a := range atts {
		out = append(out, Attachment{
			ID:             a.ID,
			Name:           a.Filename,
			NameForDisplay: a.Filename,
			Tag:            AttachmentTag,
			Type:           AttachmentTag,
		})
	}
	return out
}
