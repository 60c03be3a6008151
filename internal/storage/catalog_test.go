package storage_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-mailmerge/internal/model"
	"crm-mailmerge/internal/storage"
)

type memStore struct {
	mu       sync.Mutex
	fields   map[string]model.FieldMap
	options  map[string]map[string]string
	currency map[string]string
	ttls     []time.Duration
}

func newMemStore() *memStore {
	return &memStore{
		fields:   map[string]model.FieldMap{},
		options:  map[string]map[string]string{},
		currency: map[string]string{},
	}
}

func (m *memStore) Fields(_ context.Context, module string) (model.FieldMap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fm, ok := m.fields[module]
	if !ok {
		return nil, storage.ErrMiss
	}
	return fm, nil
}

func (m *memStore) SetFields(_ context.Context, module string, fm model.FieldMap, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields[module] = fm
	m.ttls = append(m.ttls, ttl)
	return nil
}

func (m *memStore) Options(_ context.Context, listID string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.options[listID]
	if !ok {
		return nil, storage.ErrMiss
	}
	return l, nil
}

func (m *memStore) SetOptions(_ context.Context, listID string, labels map[string]string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.options[listID] = labels
	m.ttls = append(m.ttls, ttl)
	return nil
}

func (m *memStore) CurrencySymbol(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.currency[id]
	if !ok {
		return "", storage.ErrMiss
	}
	return s, nil
}

func (m *memStore) SetCurrencySymbol(_ context.Context, id, symbol string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currency[id] = symbol
	m.ttls = append(m.ttls, ttl)
	return nil
}

type countingUpstream struct {
	mu    sync.Mutex
	calls map[string]int
	fail  bool
}

func (u *countingUpstream) hit(key string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.calls == nil {
		u.calls = map[string]int{}
	}
	u.calls[key]++
}

func (u *countingUpstream) count(key string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls[key]
}

func (u *countingUpstream) FieldMetadata(_ context.Context, module string) (model.FieldMap, error) {
	u.hit("fields:" + module)
	if u.fail {
		return nil, errors.New("boom")
	}
	return model.FieldMap{"name": {Name: "name", Type: model.FieldText}}, nil
}

func (u *countingUpstream) OptionLabels(_ context.Context, listID string) (map[string]string, error) {
	u.hit("options:" + listID)
	return map[string]string{"a": "Alpha"}, nil
}

func (u *countingUpstream) UserPreference(_ context.Context, name string) (string, error) {
	u.hit("pref:" + name)
	return "d.m.Y", nil
}

func (u *countingUpstream) CurrencySymbol(_ context.Context, id string) (string, error) {
	u.hit("currency:" + id)
	return "€", nil
}

func TestCatalogReadThrough(t *testing.T) {
	t.Parallel()
	up := &countingUpstream{}
	st := newMemStore()
	c := storage.NewCatalog(up, st, time.Hour)
	ctx := context.Background()

	for range 3 {
		fm, err := c.FieldMetadata(ctx, "Contacts")
		require.NoError(t, err)
		assert.Equal(t, model.FieldText, fm["name"].Type)

		labels, err := c.OptionLabels(ctx, "dom")
		require.NoError(t, err)
		assert.Equal(t, "Alpha", labels["a"])

		sym, err := c.CurrencySymbol(ctx, "eur")
		require.NoError(t, err)
		assert.Equal(t, "€", sym)

		pref, err := c.UserPreference(ctx, "datepref")
		require.NoError(t, err)
		assert.Equal(t, "d.m.Y", pref)
	}

	assert.Equal(t, 1, up.count("fields:Contacts"))
	assert.Equal(t, 1, up.count("options:dom"))
	assert.Equal(t, 1, up.count("currency:eur"))
	assert.Equal(t, 3, up.count("pref:datepref"))
	assert.Equal(t, []time.Duration{time.Hour, time.Hour, time.Hour}, st.ttls)
}

func TestCatalogRefreshOverwrites(t *testing.T) {
	t.Parallel()
	up := &countingUpstream{}
	st := newMemStore()
	st.fields["Contacts"] = model.FieldMap{"stale": {Name: "stale"}}
	c := storage.NewCatalog(up, st, time.Minute)
	ctx := context.Background()

	fm, err := c.FieldMetadata(ctx, "Contacts")
	require.NoError(t, err)
	assert.Contains(t, fm, "stale")
	assert.Equal(t, 0, up.count("fields:Contacts"))

	require.NoError(t, c.Refresh(ctx, "Contacts"))
	fm, err = c.FieldMetadata(ctx, "Contacts")
	require.NoError(t, err)
	assert.NotContains(t, fm, "stale")
	assert.Contains(t, fm, "name")
}

func TestCatalogUpstreamErrorNotCached(t *testing.T) {
	t.Parallel()
	up := &countingUpstream{fail: true}
	st := newMemStore()
	c := storage.NewCatalog(up, st, time.Minute)
	ctx := context.Background()

	_, err := c.FieldMetadata(ctx, "Leads")
	require.Error(t, err)
	_, err = c.FieldMetadata(ctx, "Leads")
	require.Error(t, err)
	assert.Equal(t, 2, up.count("fields:Leads"))
	assert.Empty(t, st.fields)
}
