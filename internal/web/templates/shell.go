package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/junlend/web/internal/app/provider"
)

// Layout renders the header, the page content from the context children and the footer.
func Layout() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)

		h := newWriter(w)
		h.component(ctx, Header())
		h.raw(`<div class="content">`)
		h.component(ctx, children)
		h.raw("</div>")
		h.component(ctx, Footer())
		return h.err
	})
}

// Page renders a full document for content with the stack installed.
// The layout and the toaster render as siblings.
func Page(stack *provider.Stack, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ctx = stack.Install(ctx)

		body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			h := newWriter(w)
			h.component(templ.WithChildren(ctx, content), Layout())
			h.component(ctx, Toaster())
			return h.err
		})

		return Document(stack.Snapshot()).Render(templ.WithChildren(ctx, body), w)
	})
}

// HomePage renders the landing page.
func HomePage(stack *provider.Stack) templ.Component {
	return Page(stack, Home())
}
