package dom_test

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/jcmexdev/storefront/internal/pkg/dom"
)

const page = `<!doctype html>
<html><body>
<main class="page">
  <span class="counter">0</span>
  <ul class="list"><li>one</li><li>two</li></ul>
</main>
<template id="card">
  <div class="card"><span class="card__title"></span><button class="card__button">buy</button></div>
</template>
<template id="empty"> </template>
<template id="checkout">
  <form name="checkout">
    <input name="address" value="">
    <button class="pay" name="card" type="button">card</button>
    <button type="submit">next</button>
  </form>
</template>
</body></html>`

func parse(t *testing.T) *html.Node {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, dom.Render(&buf, n))
	return buf.String()
}

func TestQuery(t *testing.T) {
	t.Parallel()
	doc := parse(t)

	assert.Equal(t, "0", dom.Text(dom.Query(doc, ".counter")))
	assert.Nil(t, dom.Query(doc, ".missing"))
	assert.Nil(t, dom.Query(doc, "[[bad"))
	assert.Len(t, dom.QueryAll(doc, ".list li"), 2)
	assert.Panics(t, func() { dom.MustQuery(doc, ".missing") })
	assert.Panics(t, func() { dom.MustQuery(doc, "[[bad") })
	assert.Panics(t, func() { dom.MustQueryAll(doc, ".missing") })
}

func TestTemplatesAndInstantiate(t *testing.T) {
	t.Parallel()
	doc := parse(t)

	tmpls := dom.Templates(doc)
	require.Contains(t, tmpls, "card")
	require.Contains(t, tmpls, "checkout")

	a, err := dom.Instantiate(tmpls["card"])
	require.NoError(t, err)
	b, err := dom.Instantiate(tmpls["card"])
	require.NoError(t, err)

	dom.SetText(dom.MustQuery(a, ".card__title"), "first")

	assert.True(t, dom.HasClass(a, "card"))
	assert.Nil(t, a.Parent)
	assert.Equal(t, "first", dom.Text(dom.MustQuery(a, ".card__title")))
	assert.Empty(t, dom.Text(dom.MustQuery(b, ".card__title")), "clones share no nodes")

	_, err = dom.Instantiate(tmpls["empty"])
	assert.Error(t, err)
}

func TestMutations(t *testing.T) {
	t.Parallel()
	doc := parse(t)
	counter := dom.MustQuery(doc, ".counter")

	dom.SetText(counter, "<3>")
	assert.Equal(t, "<3>", dom.Text(counter))
	assert.Contains(t, render(t, counter), "&lt;3&gt;")

	dom.ToggleClass(counter, "active", true)
	dom.ToggleClass(counter, "active", true)
	assert.True(t, dom.HasClass(counter, "active"))
	v, _ := dom.Attr(counter, "class")
	assert.Equal(t, "counter active", v)

	dom.ToggleClass(counter, "active", false)
	assert.False(t, dom.HasClass(counter, "active"))
	assert.True(t, dom.HasClass(counter, "counter"))

	dom.SetDisabled(counter, true)
	assert.True(t, dom.IsDisabled(counter))
	dom.SetDisabled(counter, false)
	assert.False(t, dom.IsDisabled(counter))

	dom.SetVisible(counter, false)
	assert.True(t, dom.IsHidden(counter))
	dom.SetHidden(counter, false)
	assert.False(t, dom.IsHidden(counter))

	img := dom.Element("img", "")
	dom.SetImage(img, "https://cdn/x.svg", "")
	dom.SetImage(img, "https://cdn/y.svg", "title")
	src, _ := dom.Attr(img, "src")
	alt, _ := dom.Attr(img, "alt")
	assert.Equal(t, "https://cdn/y.svg", src)
	assert.Equal(t, "title", alt)

	// nil nodes are tolerated by the mutation helpers
	assert.NotPanics(t, func() {
		dom.SetText(nil, "x")
		dom.ToggleClass(nil, "x", true)
		dom.SetDisabled(nil, true)
	})
}

func TestReplaceChildren_MovesNodes(t *testing.T) {
	t.Parallel()
	doc := parse(t)
	list := dom.MustQuery(doc, ".list")
	main := dom.MustQuery(doc, "main")
	items := dom.QueryAll(list, "li")

	dom.ReplaceChildren(main, items...)

	assert.Len(t, dom.QueryAll(main, "li"), 2)
	assert.Nil(t, list.Parent, "previous children are detached")
	assert.True(t, dom.Contains(doc, items[0]))
	assert.False(t, dom.Contains(doc, list))
}

func TestListeners_ClickOutsideForm(t *testing.T) {
	t.Parallel()
	doc := parse(t)
	body := dom.MustQuery(doc, "body")
	body.AppendChild(dom.ActionsForm())

	card, err := dom.Instantiate(dom.Templates(doc)["card"])
	require.NoError(t, err)
	button := dom.MustQuery(card, ".card__button")

	l := dom.NewListeners()
	var calls []string
	l.OnClick(button, func() { calls = append(calls, "first") })
	l.OnClick(button, func() { calls = append(calls, "second") })

	id, _ := dom.Attr(button, "value")
	form, _ := dom.Attr(button, "form")
	assert.Equal(t, dom.ActionsFormID, form)
	assert.Equal(t, 1, l.Len())

	// not mounted yet
	err = l.Dispatch(doc, url.Values{dom.ActionField: {id}})
	assert.ErrorIs(t, err, dom.ErrStaleListener)

	body.AppendChild(card)
	require.NoError(t, l.Dispatch(doc, url.Values{dom.ActionField: {id}}))
	assert.Equal(t, []string{"first", "second"}, calls)

	assert.Contains(t, render(t, doc), `<form id="dom-actions" method="post" action="/events" hidden="hidden">`)
}

func TestListeners_FormInputsSyncBeforeSubmit(t *testing.T) {
	t.Parallel()
	doc := parse(t)
	body := dom.MustQuery(doc, "body")

	form, err := dom.Instantiate(dom.Templates(doc)["checkout"])
	require.NoError(t, err)
	body.AppendChild(form)

	l := dom.NewListeners()
	var calls []string
	address := dom.MustQuery(form, `[name="address"]`)
	pay := dom.MustQuery(form, ".pay")

	l.OnInput(address, func(v string) { calls = append(calls, "address="+v) })
	l.OnSubmit(form, func() { calls = append(calls, "submit") })
	l.OnClick(pay, func() { calls = append(calls, "pay") })

	formID, _ := dom.Attr(dom.MustQuery(form, `input[type="hidden"]`), "value")
	payID, _ := dom.Attr(pay, "value")
	_, hasFormAttr := dom.Attr(pay, "form")
	assert.False(t, hasFormAttr, "buttons inside a form post that form")

	require.NoError(t, l.Dispatch(doc, url.Values{
		dom.SubmitField: {formID},
		"address":       {"Main st."},
	}))
	assert.Equal(t, []string{"address=Main st.", "submit"}, calls)
	v, _ := dom.Attr(address, "value")
	assert.Equal(t, "Main st.", v)

	calls = nil
	require.NoError(t, l.Dispatch(doc, url.Values{
		dom.SubmitField: {formID},
		dom.ActionField: {payID},
		"address":       {"Main st."},
	}))
	assert.Equal(t, []string{"pay"}, calls, "unchanged inputs are not reported and the button wins over submit")
}

func TestListeners_DispatchErrors(t *testing.T) {
	t.Parallel()
	doc := parse(t)
	l := dom.NewListeners()

	assert.ErrorIs(t, l.Dispatch(doc, url.Values{}), dom.ErrNoListener)
	assert.ErrorIs(t, l.Dispatch(doc, url.Values{dom.ActionField: {"l99"}}), dom.ErrStaleListener)
	assert.ErrorIs(t, l.Dispatch(doc, url.Values{dom.SubmitField: {"l99"}}), dom.ErrStaleListener)

	assert.Panics(t, func() { l.OnClick(dom.Element("div", ""), func() {}) })
	assert.Panics(t, func() { l.OnSubmit(dom.Element("div", ""), func() {}) })
	assert.Panics(t, func() { l.OnInput(dom.Element("input", ""), func(string) {}) })
}

func TestListeners_Prune(t *testing.T) {
	t.Parallel()
	doc := parse(t)
	body := dom.MustQuery(doc, "body")
	tmpl := dom.Templates(doc)["card"]

	mounted, _ := dom.Instantiate(tmpl)
	kept, _ := dom.Instantiate(tmpl)
	dropped, _ := dom.Instantiate(tmpl)
	body.AppendChild(mounted)

	l := dom.NewListeners()
	for _, c := range []*html.Node{mounted, kept, dropped} {
		l.OnClick(dom.MustQuery(c, "button"), func() {})
	}
	require.Equal(t, 3, l.Len())

	l.Prune(doc, kept)

	assert.Equal(t, 2, l.Len())
	id, _ := dom.Attr(dom.MustQuery(dropped, "button"), "value")
	assert.ErrorIs(t, l.Dispatch(doc, url.Values{dom.ActionField: {id}}), dom.ErrStaleListener)
}
