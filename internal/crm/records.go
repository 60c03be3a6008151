package crm

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"crm-mailmerge/internal/model"
)

type recordList struct {
	NextOffset int            `json:"next_offset"`
	Records    []model.Record `json:"records"`
}

// FetchRecord loads one record with all its fields.
func (c *Client) FetchRecord(ctx context.Context, module, id string) (model.Record, error) {
	var rec model.Record
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, module, id), nil, &rec); err != nil {
		return model.Record{}, err
	}
	if rec.Module == "" {
		rec.Module = module
	}
	return rec, nil
}

// FetchRelated lists up to limit records reached from module/id through link.
func (c *Client) FetchRelated(ctx context.Context, module, id, link string, limit int) ([]model.Record, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("max_num", strconv.Itoa(limit))
	}
	var out recordList
	if err := c.do(ctx, http.MethodGet, c.endpoint(q, module, id, "link", link), nil, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}
