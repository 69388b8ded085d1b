package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/junlend/web/internal/app/provider"
)

// Toaster renders the toast region with the visitor's queued toasts.
func Toaster() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ts := provider.Toaster(ctx)

		h := newWriter(w)
		h.raw(`<ol id="toaster" class="toaster fixed right-4 top-16 z-20" aria-live="polite">`)
		for _, t := range ts.Toasts {
			h.raw(`<li class="toast" role="status"`)
			h.attr("data-id", t.ID)
			h.attr("data-kind", string(t.Kind))
			h.attr("data-seq", strconv.FormatUint(t.Seq, 10))
			h.raw(">")
			h.text(t.Message)
			h.raw("</li>")
		}
		h.raw("</ol>")
		return h.err
	})
}
