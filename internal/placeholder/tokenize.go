// Package placeholder finds and parses [[::Module::field::]] style placeholders.
package placeholder

import (
	"iter"
	"regexp"
)

// Placeholder syntax. Fixed; templates in the CRM are written against it.
const (
	LeftDelim  = "[[::"
	RightDelim = "::]]"
	Separator  = "::"
)

var pattern = regexp.MustCompile(regexp.QuoteMeta(LeftDelim) + `(.*?)` + regexp.QuoteMeta(RightDelim))

// Scan yields every non-overlapping placeholder in text, left to right.
// The sequence is lazy and can be ranged over any number of times.
func Scan(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		offset := 0
		for offset <= len(text) {
			loc := pattern.FindStringIndex(text[offset:])
			if loc == nil {
				return
			}
			if !yield(text[offset+loc[0] : offset+loc[1]]) {
				return
			}
			offset += loc[1]
		}
	}
}

// Tokenize collects Scan into a slice. No matches gives an empty, non-nil slice.
func Tokenize(text string) []string {
	out := []string{}
	for m := range Scan(text) {
		out = append(out, m)
	}
	return out
}
