package template

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders manifest templates.
//
// Templates use Go text/template syntax with the sprig function library.
// Bare references to context keys, as written in jinja-style templates
// ("{{ namespace }}", "{{ if namespace }}", "{{ index labels \"team\" }}"), are
// rewritten to field access ("{{ .namespace }}") before parsing, so both
// spellings work. String literals, fields and variables are never rewritten.
type Engine struct {
	// Pattern to match a whole action, delimiters included
	actionPattern *regexp.Regexp
	funcs         template.FuncMap
}

// New creates a new template engine
func New() *Engine {
	return &Engine{
		actionPattern: regexp.MustCompile(`(?s)\{\{.*?\}\}`),
		funcs:         sprig.TxtFuncMap(),
	}
}

// Render executes the template text against the context. Missing context
// keys are errors rather than "<no value>".
func (e *Engine) Render(name, text string, ctx Context) (string, error) {
	tmpl, err := e.parse(name, text, ctx)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]interface{}(ctx)); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// Parse checks the template syntax without executing it. ctx only decides
// which bare references are context keys; its values are not used.
func (e *Engine) Parse(name, text string, ctx Context) error {
	_, err := e.parse(name, text, ctx)
	return err
}

func (e *Engine) parse(name, text string, ctx Context) (*template.Template, error) {
	tmpl, err := template.New(name).
		Funcs(e.funcs).
		Option("missingkey=error").
		Parse(e.Normalize(text, ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// Normalize rewrites bare references to context keys into field access.
// Identifiers that are not context keys (sprig functions, keywords) are left alone.
func (e *Engine) Normalize(text string, ctx Context) string {
	return e.actionPattern.ReplaceAllStringFunc(text, func(action string) string {
		return rewriteAction(action, ctx)
	})
}

// rewriteAction prefixes every standalone context key identifier in action
// with a dot.
func rewriteAction(action string, ctx Context) string {
	var b strings.Builder
	b.Grow(len(action) + 4)

	for i := 0; i < len(action); {
		c := action[i]
		switch {
		case c == '"' || c == '\'' || c == '`':
			end := literalEnd(action, i)
			b.WriteString(action[i:end])
			i = end
		case isIdentStart(c):
			j := i + 1
			for j < len(action) && isIdentChar(action[j]) {
				j++
			}
			word := action[i:j]
			if _, ok := ctx[word]; ok && !isQualified(action, i) {
				b.WriteByte('.')
			}
			b.WriteString(word)
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// isQualified reports whether the identifier at i is a field (.x), a
// variable ($x) or the tail of a longer token.
func isQualified(action string, i int) bool {
	if i == 0 {
		return false
	}
	prev := action[i-1]
	return prev == '.' || prev == '$' || isIdentChar(prev)
}

// literalEnd returns the index just past the string, raw string or rune
// literal starting at start. An unterminated literal runs to the end.
func literalEnd(s string, start int) int {
	quote := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if quote != '`' {
				i++
			}
		case quote:
			return i + 1
		}
	}
	return len(s)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
