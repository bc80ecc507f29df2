package dom

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// ActionPath is where every listener-bearing form posts.
	ActionPath = "/events"

	// ActionsFormID is the id of the shared form that buttons outside any
	// form submit through.
	ActionsFormID = "dom-actions"

	// ActionField carries the id of the clicked button.
	ActionField = "action"

	// SubmitField carries the id of the submitted form.
	SubmitField = "submit"
)

var (
	// ErrNoListener is returned when a post names no listener at all.
	ErrNoListener = errors.New("dom: no listener in request")

	// ErrStaleListener is returned when a post names a listener whose node
	// is no longer part of the document.
	ErrStaleListener = errors.New("dom: stale listener")
)

type inputListener struct {
	node *html.Node
	fn   func(value string)
}

type formListener struct {
	node   *html.Node
	submit []func()
	inputs []inputListener
}

type clickListener struct {
	node *html.Node
	fns  []func()
}

// Listeners maps form posts back onto the click, submit and input callbacks
// registered on element nodes. Registration rewrites the nodes so that a
// browser without scripting posts enough information to find the callback:
// buttons become submit buttons named ActionField, forms get a hidden
// SubmitField input.
//
// Listeners is not safe for concurrent use.
type Listeners struct {
	seq    int
	ids    map[*html.Node]string
	clicks map[string]*clickListener
	forms  map[string]*formListener
}

// NewListeners returns an empty registry.
func NewListeners() *Listeners {
	return &Listeners{
		ids:    make(map[*html.Node]string),
		clicks: make(map[string]*clickListener),
		forms:  make(map[string]*formListener),
	}
}

func (l *Listeners) id(n *html.Node) (string, bool) {
	if id, ok := l.ids[n]; ok {
		return id, false
	}
	l.seq++
	id := "l" + strconv.Itoa(l.seq)
	l.ids[n] = id
	return id, true
}

// OnClick registers fn for clicks on the button n. It panics when n is not
// a <button>.
func (l *Listeners) OnClick(n *html.Node, fn func()) {
	if n == nil || n.DataAtom != atom.Button {
		panic(fmt.Sprintf("dom: click listener on %s, want button", describe(n)))
	}
	id, fresh := l.id(n)
	if fresh {
		SetAttr(n, "type", "submit")
		SetAttr(n, "name", ActionField)
		SetAttr(n, "value", id)
		if ancestor(n, atom.Form) == nil {
			SetAttr(n, "form", ActionsFormID)
		}
		l.clicks[id] = &clickListener{node: n}
	}
	c := l.clicks[id]
	c.fns = append(c.fns, fn)
}

// OnSubmit registers fn for submissions of the form n. It panics when n is
// not a <form>.
func (l *Listeners) OnSubmit(n *html.Node, fn func()) {
	f := l.form(n)
	f.submit = append(f.submit, fn)
}

// OnInput registers fn for value changes of an input inside a form. The
// callback runs during dispatch of any post of that form whose value for
// the input's name differs from the one last rendered, before the click or
// submit callbacks run.
func (l *Listeners) OnInput(input *html.Node, fn func(value string)) {
	if input == nil || input.DataAtom != atom.Input {
		panic(fmt.Sprintf("dom: input listener on %s, want input", describe(input)))
	}
	form := ancestor(input, atom.Form)
	if form == nil {
		panic("dom: input listener outside a form")
	}
	f := l.form(form)
	f.inputs = append(f.inputs, inputListener{node: input, fn: fn})
}

func (l *Listeners) form(n *html.Node) *formListener {
	if n == nil || n.DataAtom != atom.Form {
		panic(fmt.Sprintf("dom: submit listener on %s, want form", describe(n)))
	}
	id, fresh := l.id(n)
	if fresh {
		SetAttr(n, "method", "post")
		SetAttr(n, "action", ActionPath)
		hidden := Element("input", "")
		SetAttr(hidden, "type", "hidden")
		SetAttr(hidden, "name", SubmitField)
		SetAttr(hidden, "value", id)
		n.AppendChild(hidden)
		l.forms[id] = &formListener{node: n}
	}
	return l.forms[id]
}

// Dispatch runs the callbacks a post addresses. Inputs of the posted form
// are synchronised first, then the clicked button's callbacks run, or the
// form's submit callbacks when no button is named. Listeners whose nodes
// are not inside root are refused with ErrStaleListener.
func (l *Listeners) Dispatch(root *html.Node, values url.Values) error {
	formID := values.Get(SubmitField)
	actionID := values.Get(ActionField)
	if formID == "" && actionID == "" {
		return ErrNoListener
	}

	var form *formListener
	if formID != "" {
		f, ok := l.forms[formID]
		if !ok || !Contains(root, f.node) {
			return fmt.Errorf("%w: form %s", ErrStaleListener, formID)
		}
		form = f
	}

	var click *clickListener
	if actionID != "" {
		c, ok := l.clicks[actionID]
		if !ok || !Contains(root, c.node) {
			return fmt.Errorf("%w: button %s", ErrStaleListener, actionID)
		}
		click = c
	}

	if form != nil {
		for _, in := range form.inputs {
			name, _ := Attr(in.node, "name")
			if name == "" || !values.Has(name) {
				continue
			}
			v := values.Get(name)
			if old, _ := Attr(in.node, "value"); old == v {
				continue
			}
			SetAttr(in.node, "value", v)
			in.fn(v)
		}
	}

	if click != nil {
		for _, fn := range click.fns {
			fn()
		}
		return nil
	}
	for _, fn := range form.submit {
		fn()
	}
	return nil
}

// Prune forgets every listener whose node lives outside all of roots.
// Fragments that keep detached subtrees across renders pass those subtrees
// along with the document.
func (l *Listeners) Prune(roots ...*html.Node) {
	alive := func(n *html.Node) bool {
		for _, r := range roots {
			if Contains(r, n) {
				return true
			}
		}
		return false
	}
	for id, c := range l.clicks {
		if !alive(c.node) {
			delete(l.clicks, id)
			delete(l.ids, c.node)
		}
	}
	for id, f := range l.forms {
		if !alive(f.node) {
			delete(l.forms, id)
			delete(l.ids, f.node)
		}
	}
}

// Len reports the number of registered buttons and forms.
func (l *Listeners) Len() int { return len(l.clicks) + len(l.forms) }

// ActionsForm builds the shared form buttons outside any form submit
// through.
func ActionsForm() *html.Node {
	f := Element("form", "")
	SetAttr(f, "id", ActionsFormID)
	SetAttr(f, "method", "post")
	SetAttr(f, "action", ActionPath)
	SetHidden(f, true)
	return f
}

func ancestor(n *html.Node, a atom.Atom) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == a {
			return p
		}
	}
	return nil
}

func describe(n *html.Node) string {
	if n == nil {
		return "nil node"
	}
	return "<" + n.Data + ">"
}
