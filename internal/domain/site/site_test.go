package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testInfo() *Info {
	return &Info{
		Name:          "JunLend",
		Description:   "The smarter way to borrow in DeFi.",
		Emoji:         "🌟",
		URL:           "https://junlend.xyz",
		SocialGithub:  "junlend-gh",
		SocialTwitter: "junlend_x",
		ThemeColor:    "#000000",
	}
}

func TestInfo_Title(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{name: "default title", page: "", want: "JunLend"},
		{name: "whitespace only", page: "   ", want: "JunLend"},
		{name: "templated title", page: "Migrate", want: "JunLend · Migrate"},
	}

	info := testInfo()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, info.Title(tt.page))
		})
	}
}

func TestInfo_SocialLinks(t *testing.T) {
	info := testInfo()

	assert.Equal(t, "https://github.com/junlend-gh", info.GithubURL())
	assert.Equal(t, "https://x.com/junlend_x", info.TwitterURL())
}

func TestInfo_IconDataURI(t *testing.T) {
	icon := testInfo().IconDataURI()

	assert.Contains(t, icon, "data:image/svg+xml,")
	assert.Contains(t, icon, "🌟</text>")
	assert.NotContains(t, icon, `"`, "quotes must be percent-encoded")
}

func TestInfo_Metadata(t *testing.T) {
	md := testInfo().Metadata("")

	assert.Equal(t, "JunLend", md.Title)
	assert.Equal(t, "/manifest.json", md.Manifest)
	assert.Equal(t, "website", md.OpenGraph.Type)
	assert.Equal(t, "https://junlend.xyz/opengraph-image", md.OpenGraph.Image)
	assert.Equal(t, "summary_large_image", md.Twitter.Card)
	assert.Equal(t, "junlend_x", md.Twitter.Site)
	assert.Equal(t, "black-translucent", md.AppleStatusBarStyle)
	assert.True(t, md.AppleCapable)
	assert.Equal(t, "cover", md.Viewport.ViewportFit)
	assert.Equal(t, "#000000", md.Viewport.ThemeColor)
}

func TestInfo_Metadata_RelativeImageWithoutBaseURL(t *testing.T) {
	info := testInfo()
	info.URL = ""

	assert.Equal(t, "/opengraph-image", info.Metadata("").OpenGraph.Image)
}

func TestInfo_Manifest(t *testing.T) {
	m := testInfo().Manifest()

	assert.Equal(t, "JunLend", m.Name)
	assert.Equal(t, "/", m.StartURL)
	assert.Equal(t, "standalone", m.Display)
}
