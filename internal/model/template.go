package model

import "errors"

// ErrTemplateNotFound is wrapped by template sources when no template has the requested id.
var ErrTemplateNotFound = errors.New("template not found")

// EmailTemplate is a stored template whose subject and body may contain placeholders.
type EmailTemplate struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Subject      string `json:"subject"`
	BodyHTML     string `json:"body_html"`
	ParentModule string `json:"parent_module_c,omitempty"`
}

// Text is what the tokenizer scans: subject and body joined so related
// modules are known before anything is substituted.
func (t EmailTemplate) Text() string {
	return t.Subject + " " + t.BodyHTML
}

// Attachment is a file note attached to a template.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}
