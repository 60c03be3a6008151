package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"crm-mailmerge/internal/model"
)

type moduleMetadata struct {
	Modules map[string]struct {
		Fields map[string]json.RawMessage `json:"fields"`
	} `json:"modules"`
}

// FieldMetadata returns the field definitions of module. Entries that are not
// field objects (the metadata also carries a few scalar keys) are skipped.
func (c *Client) FieldMetadata(ctx context.Context, module string) (model.FieldMap, error) {
	q := url.Values{"type_filter": {"modules"}, "module_filter": {module}}
	var out moduleMetadata
	if err := c.do(ctx, http.MethodGet, c.endpoint(q, "metadata"), nil, &out); err != nil {
		return nil, err
	}
	mod, ok := out.Modules[module]
	if !ok {
		return nil, fmt.Errorf("%w: metadata for module %s", ErrNotFound, module)
	}
	fields := make(model.FieldMap, len(mod.Fields))
	for name, raw := range mod.Fields {
		var f model.FieldDef
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		if f.Name == "" {
			f.Name = name
		}
		fields[name] = f
	}
	return fields, nil
}

type appListStrings struct {
	Lists map[string]json.RawMessage `json:"app_list_strings"`
}

// OptionLabels returns the option key to display label map of an option list.
func (c *Client) OptionLabels(ctx context.Context, listID string) (map[string]string, error) {
	q := url.Values{"type_filter": {"app_list_strings"}}
	var out appListStrings
	if err := c.do(ctx, http.MethodGet, c.endpoint(q, "metadata"), nil, &out); err != nil {
		return nil, err
	}
	raw, ok := out.Lists[listID]
	if !ok {
		return nil, fmt.Errorf("%w: option list %s", ErrNotFound, listID)
	}
	labels := map[string]string{}
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, fmt.Errorf("crm: option list %s: %w", listID, err)
	}
	return labels, nil
}

// UserPreference returns one preference of the authenticated user as text.
func (c *Client) UserPreference(ctx context.Context, name string) (string, error) {
	var out any
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "me", "preference", name), nil, &out); err != nil {
		return "", err
	}
	switch v := out.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}

// CurrencySymbol returns the symbol of a currency record. The system currency
// (empty id or BaseCurrencyID) uses the configured base symbol.
func (c *Client) CurrencySymbol(ctx context.Context, currencyID string) (string, error) {
	if currencyID == "" || currencyID == BaseCurrencyID {
		return c.baseSymbol, nil
	}
	rec, err := c.FetchRecord(ctx, "Currencies", currencyID)
	if err != nil {
		return "", err
	}
	return rec.String("symbol"), nil
}
