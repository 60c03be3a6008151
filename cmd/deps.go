package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"crm-mailmerge/internal/config"
	"crm-mailmerge/internal/crm"
	"crm-mailmerge/internal/format"
	"crm-mailmerge/internal/redisclient"
	"crm-mailmerge/internal/resolve"
	"crm-mailmerge/internal/storage"

	"github.com/redis/go-redis/v9"
)

// services bundles the clients a command needs. close releases them.
type services struct {
	crm     *crm.Client
	catalog *storage.Catalog
	rdb     *redis.Client
}

func (s *services) close() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
}

// metadata returns the cached catalog when one is configured, else the CRM client.
func (s *services) metadata() resolve.MetadataProvider {
	if s.catalog != nil {
		return s.catalog
	}
	return s.crm
}

func (s *services) locale() format.Locale {
	if s.catalog != nil {
		return s.catalog
	}
	return s.crm
}

// engine builds a resolution engine reading templates from templates.
func (s *services) engine(cfg config.Config, templates resolve.TemplateSource) *resolve.Engine {
	return resolve.NewEngine(s.crm, templates, s.metadata(), s.locale()).
		WithRelatedLimit(cfg.Compose.RelatedLimit)
}

// newServices connects to the CRM and, when caching is enabled, to redis.
// An unreachable redis only disables the cache.
func newServices(ctx context.Context, cfg config.Config) (*services, error) {
	if strings.TrimSpace(cfg.CRM.BaseURL) == "" {
		return nil, errors.New("crm.base_url is not configured")
	}
	d, err := cfg.ParseDurations()
	if err != nil {
		return nil, err
	}
	s := &services{
		crm: crm.New(cfg.CRM.BaseURL, cfg.CRM.Token, d.CRMTimeout).
			WithBaseCurrencySymbol(cfg.Compose.BaseCurrencySymbol).
			WithRateLimit(cfg.CRM.RateLimit, cfg.CRM.RateBurst),
	}
	if cfg.CRM.Token == "" && cfg.CRM.Username != "" {
		ts, err := crm.Login(ctx, cfg.CRM.BaseURL, crm.Credentials{
			ClientID:     cfg.CRM.ClientID,
			ClientSecret: cfg.CRM.ClientSecret,
			Username:     cfg.CRM.Username,
			Password:     cfg.CRM.Password,
		}, &http.Client{Timeout: d.CRMTimeout})
		if err != nil {
			return nil, err
		}
		s.crm = s.crm.WithTokenSource(ts)
	}
	if !cfg.Cache.Enabled {
		return s, nil
	}
	rdb, err := redisclient.Connect(ctx, cfg.Redis, 2*time.Second)
	if err != nil {
		slog.Warn("metadata cache disabled", "error", err)
		return s, nil
	}
	s.rdb = rdb
	s.catalog = storage.NewCatalog(s.crm, storage.NewRedisStore(rdb, cfg.Redis.Prefix), d.MetadataTTL)
	return s, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
