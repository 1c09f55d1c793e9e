package aggregate

import "strings"

// Record is a single list item: field name to raw value, as decoded from JSON.
type Record map[string]any

// Text returns the string value of field. Absent, null and non-string values
// report ok=false.
func (r Record) Text(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Tokens tokenizes a multi-valued field.
func (r Record) Tokens(field string) []string {
	s, _ := r.Text(field)
	return Tokenize(s)
}

// Tokenize splits "A, B, C" into ["A", "B", "C"]. Pieces are trimmed and
// empty pieces dropped; case and duplicates are kept.
func Tokenize(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
