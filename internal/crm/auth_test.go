package crm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-mailmerge/internal/crm"
)

func TestLoginPasswordGrant(t *testing.T) {
	t.Parallel()

	var logins atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "sugar", r.PostForm.Get("client_id"))
		assert.Equal(t, "ana", r.PostForm.Get("username"))
		if r.PostForm.Get("password") != "secret" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusUnauthorized)
			return
		}
		logins.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "issued",
			"token_type":    "bearer",
			"expires_in":    3600,
			"refresh_token": "r1",
		})
	})
	mux.HandleFunc("GET /Contacts/c1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("OAuth-Token") != "issued" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "c1", "_module": "Contacts", "first_name": "Ana"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	ctx := context.Background()

	ts, err := crm.Login(ctx, srv.URL, crm.Credentials{Username: "ana", Password: "secret"}, srv.Client())
	require.NoError(t, err)

	c := crm.New(srv.URL, "", 5*time.Second).WithTokenSource(ts)
	for range 2 {
		rec, err := c.FetchRecord(ctx, "Contacts", "c1")
		require.NoError(t, err)
		assert.Equal(t, "Ana", rec.String("first_name"))
	}
	assert.Equal(t, int32(1), logins.Load())

	_, err = crm.Login(ctx, srv.URL, crm.Credentials{Username: "ana", Password: "wrong"}, srv.Client())
	require.Error(t, err)

	_, err = crm.Login(ctx, srv.URL, crm.Credentials{}, nil)
	require.Error(t, err)
}
