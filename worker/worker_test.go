package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRefresher struct {
	mu    sync.Mutex
	seen  []string
	calls chan struct{}
}

func (r *recordingRefresher) Refresh(_ context.Context, module string) error {
	r.mu.Lock()
	r.seen = append(r.seen, module)
	r.mu.Unlock()
	if r.calls != nil {
		r.calls <- struct{}{}
	}
	if module == "Broken" {
		return errors.New("boom")
	}
	return nil
}

func TestMetadataWarmerRunOnce(t *testing.T) {
	r := &recordingRefresher{}
	w := &MetadataWarmer{Catalog: r, Modules: []string{"Contacts", "Broken", "Accounts"}, Concurrency: 2}
	w.runOnce(context.Background())

	sort.Strings(r.seen)
	assert.Equal(t, []string{"Accounts", "Broken", "Contacts"}, r.seen)
}

func TestMetadataWarmerStopsOnCancel(t *testing.T) {
	r := &recordingRefresher{calls: make(chan struct{}, 16)}
	w := &MetadataWarmer{Catalog: r, Modules: []string{"Contacts"}, Interval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	select {
	case <-r.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("initial refresh did not run")
	}
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("warmer did not stop")
	}
}

type funcWorker func(ctx context.Context) error

func (f funcWorker) Start(ctx context.Context) error { return f(ctx) }

func TestManagerPropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	stopped := make(chan struct{})
	m := NewManager(
		funcWorker(func(ctx context.Context) error {
			<-ctx.Done()
			close(stopped)
			return nil
		}),
		funcWorker(func(context.Context) error { return boom }),
	)
	err := m.Start(context.Background())
	require.ErrorIs(t, err, boom)
	<-stopped
}

func TestManagerCleanShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(funcWorker(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}))
	cancel()
	require.NoError(t, m.Start(ctx))
}

func TestParseSchedule(t *testing.T) {
	sched, err := ParseSchedule("15 3 * * *")
	require.NoError(t, err)
	from := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 2, 3, 15, 0, 0, time.UTC), sched.Next(from))

	_, err = ParseSchedule("every day")
	require.Error(t, err)
}

func TestMetadataWarmerInvalidSchedule(t *testing.T) {
	r := &recordingRefresher{}
	w := &MetadataWarmer{Catalog: r, Modules: []string{"Contacts"}, Schedule: "* *"}
	require.Error(t, w.Start(context.Background()))
	assert.Empty(t, r.seen)
}

func TestMetadataWarmerScheduledStopsOnCancel(t *testing.T) {
	r := &recordingRefresher{calls: make(chan struct{}, 16)}
	w := &MetadataWarmer{Catalog: r, Modules: []string{"Accounts"}, Schedule: "0 0 1 1 *"}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	select {
	case <-r.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("initial refresh did not run")
	}
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("warmer did not stop")
	}
}
