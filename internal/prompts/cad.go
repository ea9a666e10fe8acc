package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// OutputPath is where every template tells the generated script to save
// its document. Downstream tooling collects the result from this path, so
// the string must stay identical across variants.
const OutputPath = "/data/output.FCStd"

// Slot marks the position in a template where the user request goes.
const Slot = "{{user_request}}"

// Variant selects an instruction template.
type Variant string

// Defined variants.
const (
	// Basic is the minimal instruction set: imports, geometry, save path,
	// code only.
	Basic Variant = "basic"

	// Enhanced adds document setup, parametric and commenting rules, an
	// API reference, and six worked examples.
	Enhanced Variant = "enhanced"
)

var (
	// ErrUnknownVariant is returned when a variant selector does not name
	// a defined template.
	ErrUnknownVariant = errors.New("unknown prompt variant")

	// ErrMissingRequest is returned when rendering without a user request.
	ErrMissingRequest = errors.New("missing user request")
)

//go:embed templates/*.md
var templateFS embed.FS

// Template is an immutable instruction template with a single [Slot].
// The zero value is not usable; obtain templates from [GetTemplate].
type Template struct {
	variant Variant
	text    string
	// before and after are the text on either side of the slot, split
	// once at load so rendering never rescans the request.
	before string
	after  string
}

// templates is populated at init and never mutated afterwards.
var templates = mustLoadTemplates()

// Variants returns the defined variants in order of increasing detail.
func Variants() []Variant {
	return []Variant{Basic, Enhanced}
}

// ParseVariant converts a selector string to a [Variant]. Matching is
// exact; an unrecognized selector wraps [ErrUnknownVariant].
func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	if _, ok := templates[v]; !ok {
		return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownVariant, s, variantList())
	}
	return v, nil
}

// GetTemplate returns the template for the given variant.
func GetTemplate(v Variant) (Template, error) {
	t, ok := templates[v]
	if !ok {
		return Template{}, fmt.Errorf("%w %q (valid: %s)", ErrUnknownVariant, string(v), variantList())
	}
	return t, nil
}

// Render looks up the variant and renders it with the user request.
func Render(v Variant, userRequest string) (string, error) {
	t, err := GetTemplate(v)
	if err != nil {
		return "", err
	}
	return t.Render(userRequest)
}

// Variant returns the template's variant name.
func (t Template) Variant() Variant {
	return t.variant
}

// Text returns the raw template text, slot included.
func (t Template) Text() string {
	return t.text
}

// Render returns the template text with the slot replaced by userRequest.
// The request is inserted exactly once and never re-scanned, so any
// slot-like text inside it stays literal. An empty request wraps
// [ErrMissingRequest]; whitespace-only requests are passed through.
func (t Template) Render(userRequest string) (string, error) {
	if t.variant == "" {
		return "", fmt.Errorf("%w: zero Template", ErrUnknownVariant)
	}
	if userRequest == "" {
		return "", fmt.Errorf("render %s prompt: %w", t.variant, ErrMissingRequest)
	}

	var sb strings.Builder
	sb.Grow(len(t.before) + len(userRequest) + len(t.after))
	sb.WriteString(t.before)
	sb.WriteString(userRequest)
	sb.WriteString(t.after)
	return sb.String(), nil
}

// mustLoadTemplates reads every variant's embedded file and checks that
// it carries exactly one slot and the output path. A violation is a
// build defect, so it panics.
func mustLoadTemplates() map[Variant]Template {
	out := make(map[Variant]Template, len(Variants()))
	for _, v := range Variants() {
		t, err := parseTemplate(v, templateFS)
		if err != nil {
			panic(err)
		}
		out[v] = t
	}
	return out
}

// parseTemplate reads templates/<variant>.md from fsys and validates it.
func parseTemplate(v Variant, fsys fs.FS) (Template, error) {
	data, err := fs.ReadFile(fsys, "templates/"+string(v)+".md")
	if err != nil {
		return Template{}, fmt.Errorf("read %s template: %w", v, err)
	}
	return newTemplate(v, string(data))
}

// newTemplate validates text and splits it at the slot.
func newTemplate(v Variant, text string) (Template, error) {
	if n := strings.Count(text, Slot); n != 1 {
		return Template{}, fmt.Errorf("%s template: want exactly one %s slot, found %d", v, Slot, n)
	}
	if n := strings.Count(text, "{{"); n != 1 {
		return Template{}, fmt.Errorf("%s template: unexpected placeholder besides %s", v, Slot)
	}
	if !strings.Contains(text, OutputPath) {
		return Template{}, fmt.Errorf("%s template: missing output path %s", v, OutputPath)
	}
	before, after, _ := strings.Cut(text, Slot)
	return Template{variant: v, text: text, before: before, after: after}, nil
}

func variantList() string {
	names := make([]string, 0, len(Variants()))
	for _, v := range Variants() {
		names = append(names, string(v))
	}
	return strings.Join(names, ", ")
}
