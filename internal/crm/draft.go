package crm

import (
	"context"
	"errors"
	"net/http"

	"crm-mailmerge/internal/render"
)

type draftAttachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Name     string `json:"name"`
}

type draftAddress struct {
	ParentType string `json:"parent_type"`
	ParentID   string `json:"parent_id"`
	Email      string `json:"email_address,omitempty"`
}

type draftEmail struct {
	State           string                       `json:"state"`
	Name            string                       `json:"name"`
	Description     string                       `json:"description"`
	DescriptionHTML string                       `json:"description_html"`
	ParentType      string                       `json:"parent_type"`
	ParentID        string                       `json:"parent_id"`
	Attachments     map[string][]draftAttachment `json:"attachments,omitempty"`
	To              map[string][]draftAddress    `json:"to,omitempty"`
}

// CreateDraftEmail stores a composed payload as a draft email linked to the
// payload's related record and returns the new email id.
func (c *Client) CreateDraftEmail(ctx context.Context, p render.Payload) (string, error) {
	in := draftEmail{
		State:           "Draft",
		Name:            p.Subject,
		Description:     p.Body,
		DescriptionHTML: p.BodyHTML,
		ParentType:      p.Related.Module,
		ParentID:        p.Related.ID,
	}
	if len(p.Attachments) > 0 {
		add := make([]draftAttachment, 0, len(p.Attachments))
		for _, a := range p.Attachments {
			add = append(add, draftAttachment{ID: a.ID, Filename: a.Name, Name: a.NameForDisplay})
		}
		in.Attachments = map[string][]draftAttachment{"add": add}
	}
	if len(p.ToAddresses) > 0 {
		to := make([]draftAddress, 0, len(p.ToAddresses))
		for _, r := range p.ToAddresses {
			to = append(to, draftAddress{ParentType: r.Module, ParentID: r.ID, Email: r.Email})
		}
		in.To = map[string][]draftAddress{"create": to}
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, c.endpoint(nil, "Emails"), in, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("crm: create draft: missing id in response")
	}
	return out.ID, nil
}
