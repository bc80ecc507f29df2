package view

import (
	"golang.org/x/net/html"

	"github.com/jcmexdev/storefront/internal/pkg/dom"
	"github.com/jcmexdev/storefront/internal/storefront/core/topics"
)

const modalActive = "modal_active"

// Modal hosts one fragment at a time.
type Modal struct {
	env       Env
	container *html.Node
	content   *html.Node
	mounted   *html.Node
}

// NewModal binds the modal container of doc.
func NewModal(env Env, doc *html.Node) *Modal {
	m := &Modal{
		env:       env,
		container: dom.MustQuery(doc, "#modal-container"),
		content:   dom.MustQuery(doc, "#modal-container .modal__content"),
	}
	env.Listeners.OnClick(dom.MustQuery(m.container, ".modal__close"), m.Close)
	return m
}

// Render mounts content, opens the modal and announces modal-open.
func (m *Modal) Render(content *html.Node) *html.Node {
	dom.ReplaceChildren(m.content, content)
	m.mounted = content
	dom.ToggleClass(m.container, modalActive, true)
	emit(m.env, topics.ModalOpenTopic, topics.ModalOpen{Content: content})
	return m.container
}

// Close empties and hides the modal and announces modal-close.
func (m *Modal) Close() {
	dom.ReplaceChildren(m.content)
	m.mounted = nil
	dom.ToggleClass(m.container, modalActive, false)
	emit(m.env, topics.ModalCloseTopic, struct{}{})
}

// Active reports whether the modal is open.
func (m *Modal) Active() bool { return dom.HasClass(m.container, modalActive) }

// Content returns the mounted fragment root, or nil.
func (m *Modal) Content() *html.Node { return m.mounted }
