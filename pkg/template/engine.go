// Package template renders the small {{ key }} substitution templates used
// for the HTML views. Templates are compiled once into a list of literal
// and key parts; rendering only concatenates.
package template

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strings"
)

var (
	ErrUnknownKey = errors.New("unknown template key")
	ErrParse      = errors.New("template parse error")
)

// Values maps keys to already-escaped text.
type Values map[string]string

// Set stores value HTML-escaped.
func (v Values) Set(key, value string) {
	v[key] = html.EscapeString(value)
}

// SetRaw stores value as is, for markup produced by trusted code.
func (v Values) SetRaw(key, value string) {
	v[key] = value
}

// Merge copies every entry of other into v.
func (v Values) Merge(other Values) {
	for k, val := range other {
		v[k] = val
	}
}

type part struct {
	text string
	key  bool
}

// Template is a compiled template. It is immutable and safe for concurrent use.
type Template struct {
	name  string
	parts []part
}

func (t *Template) Name() string {
	return t.name
}

// Keys returns the keys referenced by the template, in order of appearance.
func (t *Template) Keys() []string {
	var keys []string
	for _, p := range t.parts {
		if p.key {
			keys = append(keys, p.text)
		}
	}
	return keys
}

// Parse compiles src. Whitespace inside a {{ }} token is ignored. A token
// that is not closed, or a '}' inside a token not followed by another '}',
// is an error.
func Parse(name, src string) (*Template, error) {
	t := &Template{name: name}

	var lit, key strings.Builder
	inKey := false
	line := 1

	flushLiteral := func() {
		if lit.Len() > 0 {
			t.parts = append(t.parts, part{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\n' {
			line++
		}

		if !inKey {
			if c == '{' && i+1 < len(src) && src[i+1] == '{' {
				flushLiteral()
				inKey = true
				i++
				continue
			}
			lit.WriteByte(c)
			continue
		}

		switch {
		case c == '}':
			if i+1 >= len(src) || src[i+1] != '}' {
				return nil, fmt.Errorf("%w: %s:%d: expected '}}'", ErrParse, name, line)
			}
			if key.Len() == 0 {
				return nil, fmt.Errorf("%w: %s:%d: empty key", ErrParse, name, line)
			}
			t.parts = append(t.parts, part{text: key.String(), key: true})
			key.Reset()
			inKey = false
			i++
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		default:
			key.WriteByte(c)
		}
	}

	if inKey {
		return nil, fmt.Errorf("%w: %s:%d: unclosed '{{'", ErrParse, name, line)
	}
	flushLiteral()
	return t, nil
}

// Render substitutes every key from values. A key with no value fails the
// whole render.
func (t *Template) Render(values Values) ([]byte, error) {
	var buf bytes.Buffer
	for _, p := range t.parts {
		if !p.key {
			buf.WriteString(p.text)
			continue
		}
		v, ok := values[p.text]
		if !ok {
			return nil, fmt.Errorf("%w: %q in %s", ErrUnknownKey, p.text, t.name)
		}
		buf.WriteString(v)
	}
	return buf.Bytes(), nil
}
