package templates

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junlend/web/internal/app/provider"
	"github.com/junlend/web/internal/app/toast"
	"github.com/junlend/web/internal/domain/label"
	"github.com/junlend/web/internal/domain/site"
	"github.com/junlend/web/internal/domain/theme"
	"github.com/junlend/web/internal/domain/wallet"
)

func testSite() *site.Info {
	return &site.Info{
		Name:          "JunLend",
		Description:   "The smarter way to borrow in DeFi.",
		Emoji:         "🌟",
		URL:           "https://junlend.xyz",
		SocialGithub:  "junlend",
		SocialTwitter: "junlend",
		ThemeColor:    "#000000",
	}
}

func testStack(pref theme.Preference, state wallet.InitialState, toasts []toast.Toast) *provider.Stack {
	return provider.New(provider.Input{
		Theme:   provider.ThemeScope{Preference: pref, Attribute: "class", Cookie: "theme", DisableTransitionOnChange: true},
		Wallet:  provider.WalletScope{Initial: state, ChainIDs: []int64{1}},
		Toaster: provider.ToasterScope{VisitorID: "v1", Toasts: toasts},
		Page: provider.PageScope{
			Site:     testSite(),
			Labels:   label.MustNew("Aave", "Compound", "Morpho", "Fluid", "Euler"),
			PeriodMs: 2500,
		},
	})
}

func render(t *testing.T, stack *provider.Stack) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, HomePage(stack).Render(context.Background(), &b))
	return b.String()
}

func TestHomePage_RendersIdenticalBytes(t *testing.T) {
	toasts := []toast.Toast{{ID: "t1", Kind: toast.KindInfo, Message: "hi", Seq: 1, CreatedAt: time.Unix(0, 0).UTC()}}

	first := render(t, testStack(theme.System, wallet.Disconnected(1), toasts))
	second := render(t, testStack(theme.System, wallet.Disconnected(1), toasts))

	assert.Equal(t, first, second)
}

func TestHomePage_Structure(t *testing.T) {
	got := render(t, testStack(theme.System, wallet.Disconnected(1), nil))

	assert.True(t, strings.HasPrefix(got, "<!DOCTYPE html><html"))
	for _, want := range []string{
		` suppresshydrationwarning`,
		`<title>JunLend</title>`,
		`<meta name="description" content="The smarter way to borrow in DeFi.">`,
		`<link rel="manifest" href="/manifest.json">`,
		`<meta property="og:image" content="https://junlend.xyz/opengraph-image">`,
		`<meta name="twitter:card" content="summary_large_image">`,
		`<meta name="viewport" content="width=device-width, height=device-height, initial-scale=1, viewport-fit=cover">`,
		`<meta name="theme-color" content="#000000">`,
		`font-size=%2290%22`,
		`<h1 class="text-xl font-bold">🌟 JunLend</h1>`,
		`data-action="wallet-connect"`,
		`Migrate your <span id="protocol-label"`,
		`data-key="Aave"`,
		`>Aave</span> position.</h2>`,
		`One-Click Migrate`,
		`<img src="/background.svg"`,
		`href="https://github.com/junlend"`,
		`href="https://x.com/junlend"`,
		`<ol id="toaster"`,
		`<script id="__junlend_snapshot" type="application/json">`,
	} {
		assert.Contains(t, got, want)
	}

	header := strings.Index(got, "<header")
	content := strings.Index(got, `<div class="content">`)
	footer := strings.Index(got, "<footer")
	toaster := strings.Index(got, `<ol id="toaster"`)
	snapshot := strings.Index(got, SnapshotElementID)
	assert.True(t, header < content && content < footer && footer < toaster && toaster < snapshot,
		"header, content, footer, toaster, snapshot must appear in order")
}

func TestHomePage_ThemeClass(t *testing.T) {
	tests := []struct {
		name      string
		pref      theme.Preference
		wantClass string
	}{
		{name: "system renders no class", pref: theme.System, wantClass: ""},
		{name: "dark", pref: theme.Dark, wantClass: `class="dark"`},
		{name: "light", pref: theme.Light, wantClass: `class="light"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, testStack(tt.pref, wallet.Disconnected(1), nil))
			html := got[:strings.Index(got, "<head>")]
			if tt.wantClass == "" {
				assert.NotContains(t, html, "class=")
			} else {
				assert.Contains(t, html, tt.wantClass)
			}
			assert.Contains(t, html, `data-theme-cookie="theme"`)
		})
	}
}

func TestHomePage_ConnectedWallet(t *testing.T) {
	state := wallet.InitialState{
		Status:  wallet.StatusReconnecting,
		Address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		ChainID: 1,
	}
	got := render(t, testStack(theme.System, state, nil))

	assert.Contains(t, got, `data-status="reconnecting"`)
	assert.Contains(t, got, "0x5aAe…eAed")
	assert.Contains(t, got, `action="/api/wallet/disconnect"`)
	assert.NotContains(t, got, `data-action="wallet-connect"`)
}

func TestToaster_RendersEscapedToasts(t *testing.T) {
	toasts := []toast.Toast{{ID: "t1", Kind: toast.KindError, Message: "<b>nope</b>", Seq: 3}}
	got := render(t, testStack(theme.System, wallet.Disconnected(1), toasts))

	assert.Contains(t, got, `data-kind="error"`)
	assert.Contains(t, got, "&lt;b&gt;nope&lt;/b&gt;")
	assert.NotContains(t, got, "<b>nope</b>")
}

func TestThemeToggle_PostsNextPreference(t *testing.T) {
	got := render(t, testStack(theme.Dark, wallet.Disconnected(1), nil))

	assert.Contains(t, got, `<input type="hidden" name="theme" value="system"><button type="submit"`)
	assert.Contains(t, got, `data-theme-current="dark"`)
}

func TestFooter_SocialLinks(t *testing.T) {
	got := render(t, testStack(theme.System, wallet.Disconnected(1), nil))

	assert.Contains(t, got, `<div class="flex gap-4">`+
		`<a href="https://github.com/junlend" target="_blank" rel="noopener noreferrer" aria-label="GitHub">GitHub</a>`+
		`<a href="https://x.com/junlend" target="_blank" rel="noopener noreferrer" aria-label="X">X</a>`+
		`</div></footer>`)
}

func TestHome_HighlightsAndBackground(t *testing.T) {
	got := render(t, testStack(theme.System, wallet.Disconnected(1), nil))

	assert.Contains(t, got, `<ul class="mb-6 flex justify-center space-x-4"><li>🌟 Guaranteed better rates</li><li>🌟 Liquidation protection</li></ul>`)
	assert.Contains(t, got, `<div><img src="/background.svg" alt="Blockchain Icons" width="800" height="300"></div></main>`)
}

func TestComponents_WithoutStack(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Footer().Render(context.Background(), &b))
	assert.Contains(t, b.String(), "<footer")

	b.Reset()
	require.NoError(t, Header().Render(context.Background(), &b))
	assert.Contains(t, b.String(), "JunLend")
}
