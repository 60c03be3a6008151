package format

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"crm-mailmerge/internal/model"
)

// User preference names read from the CRM.
const (
	PrefDate     = "datepref"
	PrefTime     = "timepref"
	PrefTimezone = "timezone"
)

const (
	defaultDatePref = "Y-m-d"
	defaultTimePref = "H:i"
)

// Locale supplies option labels, user display preferences and currency symbols.
type Locale interface {
	OptionLabels(ctx context.Context, listID string) (map[string]string, error)
	UserPreference(ctx context.Context, name string) (string, error)
	CurrencySymbol(ctx context.Context, currencyID string) (string, error)
}

// NewEnv loads the acting user's preferences and the subject record's currency
// symbol. Lookups that fail fall back to defaults. Option lists are fetched on
// first use and remembered for the lifetime of the Env; the Env must only be
// used from one goroutine.
func NewEnv(ctx context.Context, loc Locale, subject model.Record) Env {
	datePref := pref(ctx, loc, PrefDate, defaultDatePref)
	timePref := pref(ctx, loc, PrefTime, defaultTimePref)

	env := Env{
		DateLayout:     Layout(datePref),
		DateTimeLayout: Layout(datePref + " " + timePref),
	}

	if tz := pref(ctx, loc, PrefTimezone, ""); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			env.Location = l
		} else {
			slog.Warn("format: unknown user timezone", "timezone", tz, "error", err)
		}
	}

	if loc != nil {
		sym, err := loc.CurrencySymbol(ctx, subject.String("currency_id"))
		if err != nil {
			slog.Warn("format: currency symbol lookup failed", "currency_id", subject.String("currency_id"), "error", err)
		}
		env.CurrencySymbol = sym
	}

	cache := map[string]map[string]string{}
	env.Labels = func(listID string) map[string]string {
		if labels, ok := cache[listID]; ok {
			return labels
		}
		var labels map[string]string
		if loc != nil {
			var err error
			labels, err = loc.OptionLabels(ctx, listID)
			if err != nil {
				slog.Warn("format: option list lookup failed", "list", listID, "error", err)
			}
		}
		cache[listID] = labels
		return labels
	}
	return env
}

func pref(ctx context.Context, loc Locale, name, def string) string {
	if loc == nil {
		return def
	}
	v, err := loc.UserPreference(ctx, name)
	if err != nil {
		slog.Warn("format: user preference lookup failed", "pref", name, "error", err)
		return def
	}
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// CRM preferences use PHP date() letters; these are their Go layout equivalents.
var layoutTokens = map[rune]string{
	'd': "02",
	'j': "2",
	'D': "Mon",
	'l': "Monday",
	'm': "01",
	'n': "1",
	'M': "Jan",
	'F': "January",
	'Y': "2006",
	'y': "06",
	'H': "15",
	'G': "15",
	'h': "03",
	'g': "3",
	'i': "04",
	's': "05",
	'a': "pm",
	'A': "PM",
	'T': "MST",
	'P': "-07:00",
	'O': "-0700",
}

// Layout converts a preference such as "m/d/Y h:ia" into a Go time layout.
// Characters without a mapping are copied through literally.
func Layout(pref string) string {
	var b strings.Builder
	for _, r := range pref {
		if tok, ok := layoutTokens[r]; ok {
			b.WriteString(tok)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
