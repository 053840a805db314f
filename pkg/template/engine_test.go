package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndRender(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		values Values
		want   string
	}{
		{"plain text", "<p>hello</p>", Values{}, "<p>hello</p>"},
		{"single key", "<h1>{{title}}</h1>", Values{"title": "One"}, "<h1>One</h1>"},
		{"whitespace in token", "{{  ti tle \n}}", Values{"title": "One"}, "One"},
		{"adjacent keys", "{{a}}{{b}}", Values{"a": "1", "b": "2"}, "12"},
		{"single braces", "a { b } c", Values{}, "a { b } c"},
		{"trailing brace", "x{", Values{}, "x{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, err := Parse(tt.name, tt.src)
			require.NoError(t, err)

			got, err := tpl.Render(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unclosed", "<h1>{{title</h1>"},
		{"single closing brace", "{{title}x"},
		{"closing brace at end", "{{title}"},
		{"empty key", "{{ }}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.name, tt.src)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestRenderUnknownKey(t *testing.T) {
	tpl, err := Parse("page", "{{title}} {{missing}}")
	require.NoError(t, err)

	_, err = tpl.Render(Values{"title": "x"})
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Equal(t, []string{"title", "missing"}, tpl.Keys())
}

func TestValuesEscaping(t *testing.T) {
	v := Values{}
	v.Set("title", `<script>"x"&`)
	v.SetRaw("css", `<link href="/a.css" />`)

	tpl, err := Parse("page", "{{title}}|{{css}}")
	require.NoError(t, err)
	got, err := tpl.Render(v)
	require.NoError(t, err)
	assert.Equal(t, `&lt;script&gt;&#34;x&#34;&amp;|<link href="/a.css" />`, string(got))
}

func TestAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css", "compiled"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "compiled", "prod.css"), []byte("body{}"), 0644))

	t.Run("development", func(t *testing.T) {
		a := NewAssets(dir, false)
		assert.Empty(t, a.Version)
		assert.Equal(t, 3, strings.Count(a.CSS, "<link "))
		assert.Equal(t, 2, strings.Count(a.JS, "<script "))
		assert.NotContains(t, a.CSS, "?")
	})

	t.Run("production", func(t *testing.T) {
		a := NewAssets(dir, true)
		require.Len(t, a.Version, 16)
		assert.Contains(t, a.CSS, `/css/compiled/prod.css?`+a.Version)
		assert.Contains(t, a.JS, `/js/compiled/prod.js?`+a.Version)
	})

	t.Run("version follows content", func(t *testing.T) {
		before := NewAssets(dir, true).Version
		require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "compiled", "prod.css"), []byte("body{color:red}"), 0644))
		assert.NotEqual(t, before, NewAssets(dir, true).Version)
	})

	t.Run("values are raw", func(t *testing.T) {
		a := NewAssets(dir, false)
		v := a.Values()
		assert.Equal(t, a.CSS, v["css"])
		assert.Equal(t, a.JS, v["js"])
	})
}
