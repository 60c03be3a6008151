package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"crm-mailmerge/internal/model"

	"golang.org/x/sync/singleflight"
)

// Upstream is the live metadata source a Catalog fronts.
type Upstream interface {
	FieldMetadata(ctx context.Context, module string) (model.FieldMap, error)
	OptionLabels(ctx context.Context, listID string) (map[string]string, error)
	UserPreference(ctx context.Context, name string) (string, error)
	CurrencySymbol(ctx context.Context, currencyID string) (string, error)
}

// Store is the cache a Catalog reads through. RedisStore implements it.
type Store interface {
	Fields(ctx context.Context, module string) (model.FieldMap, error)
	SetFields(ctx context.Context, module string, fm model.FieldMap, ttl time.Duration) error
	Options(ctx context.Context, listID string) (map[string]string, error)
	SetOptions(ctx context.Context, listID string, labels map[string]string, ttl time.Duration) error
	CurrencySymbol(ctx context.Context, id string) (string, error)
	SetCurrencySymbol(ctx context.Context, id, symbol string, ttl time.Duration) error
}

// Catalog serves field metadata, option lists and currency symbols from a
// Store, falling back to the upstream CRM on a miss. Concurrent misses for the
// same key share one upstream call. User preferences are per user and are
// never cached.
type Catalog struct {
	up    Upstream
	store Store
	ttl   time.Duration
	group singleflight.Group
}

func NewCatalog(up Upstream, store Store, ttl time.Duration) *Catalog {
	return &Catalog{up: up, store: store, ttl: ttl}
}

// FieldMetadata implements resolve.MetadataProvider.
func (c *Catalog) FieldMetadata(ctx context.Context, module string) (model.FieldMap, error) {
	if fm, err := c.store.Fields(ctx, module); err == nil {
		return fm, nil
	} else if !errors.Is(err, ErrMiss) {
		slog.Warn("catalog: read fields failed", "module", module, "error", err)
	}
	v, err, _ := c.group.Do("fields:"+module, func() (any, error) {
		return c.loadFields(ctx, module)
	})
	if err != nil {
		return nil, err
	}
	return v.(model.FieldMap), nil
}

// Refresh reloads a module's field metadata from upstream and overwrites the
// cached copy.
func (c *Catalog) Refresh(ctx context.Context, module string) error {
	_, err, _ := c.group.Do("fields:"+module, func() (any, error) {
		return c.loadFields(ctx, module)
	})
	return err
}

func (c *Catalog) loadFields(ctx context.Context, module string) (model.FieldMap, error) {
	fm, err := c.up.FieldMetadata(ctx, module)
	if err != nil {
		return nil, err
	}
	if err := c.store.SetFields(ctx, module, fm, c.ttl); err != nil {
		slog.Warn("catalog: write fields failed", "module", module, "error", err)
	}
	return fm, nil
}

// OptionLabels implements format.Locale.
func (c *Catalog) OptionLabels(ctx context.Context, listID string) (map[string]string, error) {
	if labels, err := c.store.Options(ctx, listID); err == nil {
		return labels, nil
	} else if !errors.Is(err, ErrMiss) {
		slog.Warn("catalog: read options failed", "list", listID, "error", err)
	}
	v, err, _ := c.group.Do("options:"+listID, func() (any, error) {
		labels, err := c.up.OptionLabels(ctx, listID)
		if err != nil {
			return nil, err
		}
		if err := c.store.SetOptions(ctx, listID, labels, c.ttl); err != nil {
			slog.Warn("catalog: write options failed", "list", listID, "error", err)
		}
		return labels, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

// CurrencySymbol implements format.Locale.
func (c *Catalog) CurrencySymbol(ctx context.Context, currencyID string) (string, error) {
	if sym, err := c.store.CurrencySymbol(ctx, currencyID); err == nil {
		return sym, nil
	} else if !errors.Is(err, ErrMiss) {
		slog.Warn("catalog: read currency failed", "currency_id", currencyID, "error", err)
	}
	v, err, _ := c.group.Do("currency:"+currencyID, func() (any, error) {
		sym, err := c.up.CurrencySymbol(ctx, currencyID)
		if err != nil {
			return "", err
		}
		if err := c.store.SetCurrencySymbol(ctx, currencyID, sym, c.ttl); err != nil {
			slog.Warn("catalog: write currency failed", "currency_id", currencyID, "error", err)
		}
		return sym, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// UserPreference implements format.Locale.
func (c *Catalog) UserPreference(ctx context.Context, name string) (string, error) {
	return c.up.UserPreference(ctx, name)
}
