package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderFlaggedEmptyMountWithFrameworkScript(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<div id="root"></div>
<script src="/static/js/react-dom.production.min.js"></script>
</body></html>`
	require.True(t, NewDetector().RenderFlagged(parseDoc(t, html)))
}

func TestRenderFlaggedInlineBootstrap(t *testing.T) {
	t.Parallel()

	html := `<html><body><script>window.__NUXT__={state:{}}</script></body></html>`
	require.True(t, NewDetector().RenderFlagged(parseDoc(t, html)))
}

func TestRenderNotFlaggedWhenContentPresent(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<script src="/static/js/react.js"></script>
<article><p>` + strings.Repeat("plenty of server rendered text ", 20) + `</p></article>
</body></html>`
	require.False(t, NewDetector().RenderFlagged(parseDoc(t, html)))
}

func TestRenderNotFlaggedPlainStaticPage(t *testing.T) {
	t.Parallel()

	html := `<html><body><p>short static page</p></body></html>`
	require.False(t, NewDetector().RenderFlagged(parseDoc(t, html)))
}
