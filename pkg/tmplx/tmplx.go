// Package tmplx renders short text templates used for notification titles and bodies.
package tmplx

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

var (
	ErrRenderTemplate = errors.New("tmplx: render error")
	ErrParseTemplate  = errors.New("tmplx: parse error")
)

type Template struct {
	tmpl *template.Template
}

type Options struct {
	validate ValidateFunc
	testData any
	funcs    template.FuncMap
}

type Option func(*Options) error

type ValidateFunc func(*bytes.Buffer) error

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"quote":    quoteFunc,
		"default":  defaultFunc,
		"json":     jsonFunc,
		"jsonGet":  jsonGet,
		"truncate": truncateFunc,
		"join":     joinFunc,
		"title":    titleFunc,
	}
}

// WithTemplateFunc adds a single custom template function
func WithTemplateFunc(name string, fn any) Option {
	return func(t *Options) error {
		t.funcs[name] = fn
		return nil
	}
}

// WithValidate renders testData at parse time and runs validateFn on the output.
func WithValidate(testData any, validateFn ValidateFunc) Option {
	return func(t *Options) error {
		t.validate = validateFn
		t.testData = testData
		return nil
	}
}

func MustParse(name string, text string, opts ...Option) *Template {
	t, err := Parse(name, text, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func Parse(name string, text string, args ...Option) (*Template, error) {
	opts := &Options{
		funcs: defaultFuncs(),
	}
	for _, arg := range args {
		if err := arg(opts); err != nil {
			return nil, err
		}
	}

	tmpl, err := template.New(name).
		Option("missingkey=zero").
		Funcs(opts.funcs).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseTemplate, err)
	}

	t := &Template{tmpl: tmpl}
	if opts.validate != nil {
		buf, err := t.Render(opts.testData)
		if err != nil {
			return nil, err
		}
		if err := opts.validate(buf); err != nil {
			return nil, fmt.Errorf("validate template: %w", err)
		}
	}

	return t, nil
}

func (t *Template) Render(data any) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := t.tmpl.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderTemplate, err)
	}
	return buf, nil
}

// RenderString renders data and trims surrounding whitespace.
func (t *Template) RenderString(data any) (string, error) {
	buf, err := t.Render(data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// NotEmpty is a ValidateFunc rejecting templates that render to blank text.
func NotEmpty(buf *bytes.Buffer) error {
	if strings.TrimSpace(buf.String()) == "" {
		return errors.New("rendered empty text")
	}
	return nil
}

func quoteFunc(s string) (string, error) {
	return jsonFunc(s)
}

func defaultFunc(def any, value any) any {
	if value != nil && value != "" {
		return value
	}
	return def
}

func jsonFunc(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func jsonGet(path string, raw string) string {
	return gjson.Get(raw, path).String()
}

// truncateFunc cuts value to at most n runes, appending an ellipsis when cut.
func truncateFunc(n any, value any) string {
	s := cast.ToString(value)
	limit := cast.ToInt(n)
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}

func joinFunc(sep string, values any) string {
	return strings.Join(cast.ToStringSlice(values), sep)
}

func titleFunc(value any) string {
	s := cast.ToString(value)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}
