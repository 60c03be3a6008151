// Package format turns raw CRM field values into display strings.
package format

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"crm-mailmerge/internal/model"
)

// Env carries everything formatting needs beyond the value and its field.
type Env struct {
	// Labels returns the option-key to label map for an option list id.
	Labels         func(listID string) map[string]string
	CurrencySymbol string
	DateLayout     string
	DateTimeLayout string
	// Location, when set, is the zone datetimes are shown in.
	Location *time.Location
}

var lineBreaks = strings.NewReplacer("\r\n", "<br>", "\r", "<br>", "\n", "<br>")

// Value formats raw according to field.Type. It never fails: unknown types
// and unparseable values come back as their plain string form.
func Value(raw any, field model.FieldDef, env Env) string {
	switch field.Type {
	case model.FieldText:
		return lineBreaks.Replace(Stringify(raw))
	case model.FieldEnum, model.FieldRadioEnum:
		return Enum(Stringify(raw), env.labels(field.Options))
	case model.FieldMultiEnum:
		return MultiEnum(raw, env.labels(field.Options))
	case model.FieldBool:
		return Bool(raw)
	case model.FieldRelate:
		return Stringify(raw)
	case model.FieldCurrency:
		return Currency(raw, env.CurrencySymbol)
	case model.FieldDate:
		return Date(Stringify(raw), env.DateLayout, nil)
	case model.FieldDatetime, model.FieldDatetimeCombo:
		return Date(Stringify(raw), env.DateTimeLayout, env.Location)
	default:
		return Stringify(raw)
	}
}

func (e Env) labels(listID string) map[string]string {
	if e.Labels == nil || listID == "" {
		return nil
	}
	return e.Labels(listID)
}

// Stringify renders a decoded JSON value as text. nil is the empty string.
func Stringify(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, it := range v {
			parts = append(parts, Stringify(it))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

// Enum looks up the display label for key; an unknown key is shown as is.
func Enum(key string, labels map[string]string) string {
	if label, ok := labels[key]; ok {
		return label
	}
	return key
}

// MultiEnum maps each selected key to its label and joins them with ", ".
func MultiEnum(raw any, labels map[string]string) string {
	keys := multiEnumKeys(raw)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, Enum(k, labels))
	}
	return strings.Join(out, ", ")
}

// multiEnumKeys accepts a JSON list or the CRM's encoded form ^a^,^b^.
func multiEnumKeys(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			out = append(out, Stringify(it))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.Trim(p, "^"))
		}
		return out
	default:
		return []string{Stringify(v)}
	}
}

// Bool renders truthy values as Yes and everything else as No.
func Bool(raw any) string {
	if truthy(raw) {
		return "Yes"
	}
	return "No"
}

func truthy(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		}
	}
	return false
}

// Currency rounds to two decimals, halves away from zero, and prefixes symbol.
// Empty amounts count as zero; anything non-numeric is returned unchanged.
func Currency(raw any, symbol string) string {
	s := strings.TrimSpace(Stringify(raw))
	if s == "" {
		s = "0"
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Stringify(raw)
	}
	return symbol + r.FloatString(2)
}

var inputLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Date reparses a stored date or datetime and formats it with layout.
// loc converts the instant before formatting; nil keeps the stored zone.
func Date(raw, layout string, loc *time.Location) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || layout == "" {
		return raw
	}
	for _, in := range inputLayouts {
		t, err := time.Parse(in, raw)
		if err != nil {
			continue
		}
		if loc != nil {
			t = t.In(loc)
		}
		return t.Format(layout)
	}
	return raw
}
