package crm

import (
	"context"
	"net/http"
	"net/url"

	"crm-mailmerge/internal/model"
)

// FetchAttachments lists the notes stored against a template. Template files
// are notes whose parent is the template under the Emails parent type.
func (c *Client) FetchAttachments(ctx context.Context, templateID string) ([]model.Attachment, error) {
	q := url.Values{
		"filter[0][parent_type]": {"Emails"},
		"filter[0][parent_id]":   {templateID},
		"fields":                 {"id,filename"},
	}
	var out recordList
	if err := c.do(ctx, http.MethodGet, c.endpoint(q, "Notes"), nil, &out); err != nil {
		return nil, err
	}
	atts := make([]model.Attachment, 0, len(out.Records))
	for _, rec := range out.Records {
		atts = append(atts, model.Attachment{ID: rec.ID, Filename: rec.String("filename")})
	}
	return atts, nil
}
