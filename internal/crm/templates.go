package crm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"crm-mailmerge/internal/model"
)

const templateFields = "id,name,subject,body_html,parent_module_c"

// FetchTemplate loads an EmailTemplates record.
func (c *Client) FetchTemplate(ctx context.Context, id string) (model.EmailTemplate, error) {
	rec, err := c.FetchRecord(ctx, "EmailTemplates", id)
	if errors.Is(err, ErrNotFound) {
		return model.EmailTemplate{}, fmt.Errorf("%w: %w", model.ErrTemplateNotFound, err)
	}
	if err != nil {
		return model.EmailTemplate{}, err
	}
	return templateFromRecord(rec), nil
}

// ListTemplates returns templates whose parent module is module, at most limit.
func (c *Client) ListTemplates(ctx context.Context, module string, limit int) ([]model.EmailTemplate, error) {
	q := url.Values{
		"filter[0][parent_module_c]": {module},
		"fields":                     {templateFields},
		"order_by":                   {"name:asc"},
	}
	if limit > 0 {
		q.Set("max_num", strconv.Itoa(limit))
	}
	var out recordList
	if err := c.do(ctx, http.MethodGet, c.endpoint(q, "EmailTemplates"), nil, &out); err != nil {
		return nil, err
	}
	tmpls := make([]model.EmailTemplate, 0, len(out.Records))
	for _, rec := range out.Records {
		tmpls = append(tmpls, templateFromRecord(rec))
	}
	return tmpls, nil
}

func templateFromRecord(rec model.Record) model.EmailTemplate {
	return model.EmailTemplate{
		ID:           rec.ID,
		Name:         rec.String("name"),
		Subject:      rec.String("subject"),
		BodyHTML:     rec.String("body_html"),
		ParentModule: rec.String("parent_module_c"),
	}
}
