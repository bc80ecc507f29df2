package view

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/jcmexdev/storefront/internal/pkg/dom"
)

// FormState is the render contract of a checkout form.
type FormState struct {
	Valid  bool
	Errors []string
}

// Form is the part shared by both checkout steps: inputs, a submit button
// and an error line.
type Form struct {
	env    Env
	root   *html.Node
	inputs []*html.Node
	submit *html.Node
	errors *html.Node

	// lockInvalid disables the submit button while the step is invalid.
	lockInvalid bool
	state       FormState
}

func newForm(env Env, root *html.Node, lockInvalid bool, onInput func(name, value string), onSubmit func()) *Form {
	f := &Form{
		env:         env,
		root:        root,
		inputs:      dom.QueryAll(root, ".form__input"),
		submit:      dom.MustQuery(root, `button[type="submit"]`),
		errors:      dom.MustQuery(root, ".form__errors"),
		lockInvalid: lockInvalid,
	}
	for _, in := range f.inputs {
		name, _ := dom.Attr(in, "name")
		env.Listeners.OnInput(in, func(v string) { onInput(name, v) })
	}
	env.Listeners.OnSubmit(root, onSubmit)
	return f
}

// Render applies state and returns the form root.
func (f *Form) Render(state FormState) *html.Node {
	f.state = state
	f.setValid(state.Valid)
	f.setErrors(state.Errors)
	return f.root
}

// Clear empties every input, marks the form invalid and drops the errors.
func (f *Form) Clear() {
	for _, in := range f.inputs {
		dom.SetAttr(in, "value", "")
	}
	f.Render(FormState{})
}

// Root returns the form element.
func (f *Form) Root() *html.Node { return f.root }

// State returns the last rendered state.
func (f *Form) State() FormState { return f.state }

// Value returns the current value of the named input.
func (f *Form) Value(name string) string {
	for _, in := range f.inputs {
		if n, _ := dom.Attr(in, "name"); n == name {
			v, _ := dom.Attr(in, "value")
			return v
		}
	}
	return ""
}

// SetValue writes the named input.
func (f *Form) SetValue(name, value string) {
	for _, in := range f.inputs {
		if n, _ := dom.Attr(in, "name"); n == name {
			dom.SetAttr(in, "value", value)
		}
	}
}

// SubmitDisabled reports whether the submit button is disabled.
func (f *Form) SubmitDisabled() bool { return dom.IsDisabled(f.submit) }

// ErrorText returns the rendered error line.
func (f *Form) ErrorText() string { return dom.Text(f.errors) }

func (f *Form) setValid(valid bool) {
	if f.lockInvalid {
		dom.SetDisabled(f.submit, !valid)
	}
	dom.ToggleClass(f.root, "form_invalid", len(f.state.Errors) > 0)
}

func (f *Form) setErrors(errs []string) {
	dom.SetText(f.errors, strings.Join(errs, ", "))
}
