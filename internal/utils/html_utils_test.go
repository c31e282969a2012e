package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnhanceHTMLContent(t *testing.T) {
	out := string(EnhanceHTMLContent(`<p><img src="/a.png"></p><p>https://youtu.be/abc123?t=5</p>`))
	assert.Contains(t, out, `referrerpolicy="no-referrer"`)
	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, "https://www.youtube.com/embed/abc123")

	assert.Empty(t, string(EnhanceHTMLContent("")))
}

func TestYouTubeID(t *testing.T) {
	assert.Equal(t, "dQw4w9WgXcQ", youTubeID("https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=1"))
	assert.Equal(t, "dQw4w9WgXcQ", youTubeID("https://youtu.be/dQw4w9WgXcQ"))
	assert.Empty(t, youTubeID("https://example.com/video"))
	assert.Empty(t, youTubeID(`https://youtube.com/watch?v=x"onload="alert(1)`))
	assert.Empty(t, youTubeID("https://youtu.be/<b>"))
}

func TestFirstImage(t *testing.T) {
	assert.Equal(t, "/one.jpg", FirstImage(`<p>text</p><img src="/one.jpg"><img src="/two.jpg">`))
	assert.Empty(t, FirstImage("<p>no images</p>"))
}

func TestPlainExcerpt(t *testing.T) {
	assert.Equal(t, "Hello world", PlainExcerpt("<p>Hello\n   <b>world</b></p>", 50))
	assert.Equal(t, "Hello...", PlainExcerpt("<p>Hello world</p>", 6))
	assert.Equal(t, "校园新闻...", PlainExcerpt("校园新闻发布", 4))
}

func TestConversions(t *testing.T) {
	assert.Equal(t, 12, StringToInt("12"))
	assert.Zero(t, StringToInt("twelve"))

	id, valid := ParseID("42")
	assert.True(t, valid)
	assert.Equal(t, uint(42), id)
	for _, s := range []string{"", "0", "-1", "1.5", "abc"} {
		_, valid := ParseID(s)
		assert.False(t, valid, s)
	}
}
