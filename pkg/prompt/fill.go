// Package prompt fills prompt templates that use {name} placeholders.
package prompt

import (
	"fmt"
	"reflect"
	"strings"
)

// Params maps placeholder names to values. Slices are joined with newlines,
// nil renders as empty and everything else goes through fmt.Sprint.
type Params map[string]any

type span struct {
	start, end int // [start, end) covers "{name}"
	name       string
}

// scan returns every well-formed {name} span in template, left to right.
// A name cannot contain braces, so "{{x}}" yields the inner "{x}" only.
func scan(template string) []span {
	var spans []span
	for i := 0; i < len(template); i++ {
		if template[i] != '{' {
			continue
		}
		j := strings.IndexAny(template[i+1:], "{}")
		if j < 0 {
			break
		}
		j += i + 1
		if template[j] == '{' {
			// restart at the inner brace
			i = j - 1
			continue
		}
		if j > i+1 {
			spans = append(spans, span{start: i, end: j + 1, name: template[i+1 : j]})
		}
		i = j
	}
	return spans
}

// Fill substitutes params into template. Placeholders are located first and
// the result is assembled in a fresh buffer, so a substituted value is never
// scanned again. Unknown placeholders are kept verbatim.
func Fill(template string, params Params) string {
	spans := scan(template)
	if len(spans) == 0 || len(params) == 0 {
		return template
	}

	rendered := make(map[string]string, len(params))
	for k, v := range params {
		rendered[k] = render(v)
	}

	var b strings.Builder
	b.Grow(len(template))
	last := 0
	for _, s := range spans {
		v, ok := rendered[s.name]
		if !ok {
			continue
		}
		b.WriteString(template[last:s.start])
		b.WriteString(v)
		last = s.end
	}
	b.WriteString(template[last:])
	return b.String()
}

// Placeholders lists distinct placeholder names in order of first appearance.
func Placeholders(template string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range scan(template) {
		if !seen[s.name] {
			seen[s.name] = true
			names = append(names, s.name)
		}
	}
	return names
}

func render(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, "\n")
	case fmt.Stringer:
		return val.String()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = render(rv.Index(i).Interface())
		}
		return strings.Join(parts, "\n")
	}
	return fmt.Sprint(v)
}
