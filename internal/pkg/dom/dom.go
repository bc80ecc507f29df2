// Package dom is a small helper layer over golang.org/x/net/html for
// building server-side views: CSS selector queries, template cloning and
// the attribute/text mutations view fragments need.
package dom

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var selectors sync.Map // string -> cascadia.Sel

func compile(selector string) (cascadia.Sel, error) {
	if s, ok := selectors.Load(selector); ok {
		return s.(cascadia.Sel), nil
	}
	s, err := cascadia.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: selector %q: %w", selector, err)
	}
	selectors.Store(selector, s)
	return s, nil
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return doc, nil
}

// Render writes n and its subtree as HTML.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// Query returns the first descendant of root matching selector, or nil.
// An invalid selector matches nothing.
func Query(root *html.Node, selector string) *html.Node {
	s, err := compile(selector)
	if err != nil || root == nil {
		return nil
	}
	return cascadia.Query(root, s)
}

// QueryAll returns every descendant of root matching selector in document
// order.
func QueryAll(root *html.Node, selector string) []*html.Node {
	s, err := compile(selector)
	if err != nil || root == nil {
		return nil
	}
	return cascadia.QueryAll(root, s)
}

// MustQuery is like Query but panics when nothing matches. Views use it for
// anchors their templates are required to provide.
func MustQuery(root *html.Node, selector string) *html.Node {
	if _, err := compile(selector); err != nil {
		panic(err)
	}
	n := Query(root, selector)
	if n == nil {
		panic(fmt.Sprintf("dom: required element %q not found", selector))
	}
	return n
}

// MustQueryAll panics when nothing matches.
func MustQueryAll(root *html.Node, selector string) []*html.Node {
	nodes := QueryAll(root, selector)
	if len(nodes) == 0 {
		panic(fmt.Sprintf("dom: required elements %q not found", selector))
	}
	return nodes
}

// Templates collects every <template id="..."> element under root.
func Templates(root *html.Node) map[string]*html.Node {
	out := make(map[string]*html.Node)
	for _, t := range QueryAll(root, "template[id]") {
		id, _ := Attr(t, "id")
		out[id] = t
	}
	return out
}

// Instantiate deep-copies the first element inside a template.
func Instantiate(tmpl *html.Node) (*html.Node, error) {
	for c := tmpl.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return Clone(c), nil
		}
	}
	id, _ := Attr(tmpl, "id")
	return nil, fmt.Errorf("dom: template %q has no element content", id)
}

// Clone returns a detached deep copy of n.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// Element creates a detached element with optional text content.
func Element(tag, text string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}

// Contains reports whether n is root or one of its descendants.
func Contains(root, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// ReplaceChildren removes every child of parent and appends children,
// detaching them from wherever they currently live.
func ReplaceChildren(parent *html.Node, children ...*html.Node) {
	for parent.FirstChild != nil {
		parent.RemoveChild(parent.FirstChild)
	}
	for _, c := range children {
		Detach(c)
		parent.AppendChild(c)
	}
}

// SetText replaces the content of n with a single text node.
func SetText(n *html.Node, text string) {
	if n == nil {
		return
	}
	ReplaceChildren(n, &html.Node{Type: html.TextNode, Data: text})
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// Attr returns the value of attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets attribute key, replacing a previous value.
func SetAttr(n *html.Node, key, val string) {
	if n == nil {
		return
	}
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key.
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == key
	})
}

func classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries class.
func HasClass(n *html.Node, class string) bool {
	return slices.Contains(classes(n), class)
}

// ToggleClass adds class when on is true and removes it otherwise.
func ToggleClass(n *html.Node, class string, on bool) {
	if n == nil {
		return
	}
	cs := classes(n)
	has := slices.Contains(cs, class)
	switch {
	case on && !has:
		cs = append(cs, class)
	case !on && has:
		cs = slices.DeleteFunc(cs, func(c string) bool { return c == class })
	default:
		return
	}
	SetAttr(n, "class", strings.Join(cs, " "))
}

// SetClass replaces the whole class list.
func SetClass(n *html.Node, classes ...string) {
	SetAttr(n, "class", strings.Join(classes, " "))
}

// SetDisabled toggles the disabled attribute.
func SetDisabled(n *html.Node, disabled bool) {
	setFlag(n, "disabled", disabled)
}

// IsDisabled reports whether n carries the disabled attribute.
func IsDisabled(n *html.Node) bool {
	_, ok := Attr(n, "disabled")
	return ok
}

// SetHidden toggles the hidden attribute.
func SetHidden(n *html.Node, hidden bool) {
	setFlag(n, "hidden", hidden)
}

// SetVisible is the inverse of SetHidden.
func SetVisible(n *html.Node, visible bool) {
	SetHidden(n, !visible)
}

// IsHidden reports whether n carries the hidden attribute.
func IsHidden(n *html.Node) bool {
	_, ok := Attr(n, "hidden")
	return ok
}

// SetImage points an <img> at src. The alt text is only replaced when
// non-empty.
func SetImage(n *html.Node, src, alt string) {
	if n == nil {
		return
	}
	SetAttr(n, "src", src)
	if alt != "" {
		SetAttr(n, "alt", alt)
	}
}

func setFlag(n *html.Node, key string, on bool) {
	if n == nil {
		return
	}
	if on {
		SetAttr(n, key, key)
		return
	}
	RemoveAttr(n, key)
}
