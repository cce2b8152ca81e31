// Package render implements message template rendering: substituting
// named {holes} in a template with the canonical string form of
// matching properties, left-to-right, leaving unmatched holes verbatim
// and treating "{{"/"}}" as literal braces.
//
// Parsed templates are memoized, keyed on an xxhash digest of the
// template text rather than the raw string, to keep the cache's hot
// path allocation-free on lookup.
package render

import (
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/quill-log/quill/core"
)

type token interface {
	render(lookup func(string) (core.JSONValue, bool)) string
}

type textToken string

func (t textToken) render(func(string) (core.JSONValue, bool)) string { return string(t) }

type holeToken string

func (h holeToken) render(lookup func(string) (core.JSONValue, bool)) string {
	if v, ok := lookup(string(h)); ok {
		return shortString(v)
	}
	return "{" + string(h) + "}"
}

type parsed struct {
	template string
	tokens   []token
}

var (
	cacheMu sync.RWMutex
	cache   = map[uint64][]*parsed{}
)

func parse(template string) *parsed {
	key := xxhash.Sum64String(template)

	cacheMu.RLock()
	for _, p := range cache[key] {
		if p.template == template {
			cacheMu.RUnlock()
			return p
		}
	}
	cacheMu.RUnlock()

	p := &parsed{template: template, tokens: tokenize(template)}

	cacheMu.Lock()
	cache[key] = append(cache[key], p)
	cacheMu.Unlock()

	return p
}

func tokenize(template string) []token {
	var tokens []token
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			tokens = append(tokens, textToken(text.String()))
			text.Reset()
		}
	}

	i := 0
	for i < len(template) {
		switch template[i] {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				text.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				text.WriteString(template[i:])
				i = len(template)
				continue
			}
			name := template[i+1 : i+1+end]
			flush()
			tokens = append(tokens, holeToken(name))
			i += end + 2
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				text.WriteByte('}')
				i += 2
				continue
			}
			text.WriteByte('}')
			i++
		default:
			text.WriteByte(template[i])
			i++
		}
	}
	flush()
	return tokens
}

// Render substitutes every {name} hole in template with the canonical
// string form of the matching property in props, left-to-right.
// Properties without a matching hole are ignored by rendering (they
// still become structured fields on the event). Holes without a
// matching property are left verbatim. Rendering is pure: it never
// consults ambient context.
func Render(template string, props []core.Property) string {
	p := parse(template)
	if len(p.tokens) == 0 {
		return template
	}

	lookup := func(name string) (core.JSONValue, bool) {
		for _, prop := range props {
			if prop.Name == name {
				return prop.Value, true
			}
		}
		return core.JSONValue{}, false
	}

	var b strings.Builder
	for _, t := range p.tokens {
		b.WriteString(t.render(lookup))
	}
	return b.String()
}

// shortString is the canonical short form used by rendering: integers
// as decimal, floats
// with Go's default round-trippable format, booleans as true/false,
// null as "null", and "<complex>" for arrays/objects.
func shortString(v core.JSONValue) string {
	switch v.Kind() {
	case core.KindNull:
		return "null"
	case core.KindBool:
		b, _ := v.AsBool()
		if b {
			return "true"
		}
		return "false"
	case core.KindInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10)
	case core.KindFloat:
		f, _ := v.AsFloat()
		return strconv.FormatFloat(f, 'g', -1, 64)
	case core.KindString:
		s, _ := v.AsString()
		return s
	default:
		return "<complex>"
	}
}
