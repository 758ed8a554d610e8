package dashboard

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Option is a selectable identifier with its display label.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// FormatOptionText turns a snake_case identifier into Title Case for display,
// e.g. "career_fair" -> "Career Fair". There is no inverse: identifiers are
// always kept alongside their labels.
func FormatOptionText(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// NewOptions pairs every identifier with its label, preserving order.
func NewOptions(ids []string) []Option {
	options := make([]Option, 0, len(ids))
	for _, id := range ids {
		options = append(options, Option{ID: id, Label: FormatOptionText(id)})
	}
	return options
}

func hasOption(options []Option, id string) bool {
	for _, o := range options {
		if o.ID == id {
			return true
		}
	}
	return false
}
