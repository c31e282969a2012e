package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"campusfeed/internal/models"
	"campusfeed/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRenderNote(t *testing.T) {
	file := "https://cdn.example.com/week1.pdf"

	tests := []struct {
		name string
		note models.Note
		kind string
	}{
		{"html content", models.Note{Content: "<p>Hello <script>x</script></p>"}, RenderHTML},
		{"plain content", models.Note{Content: "OVERVIEW\nSome text"}, RenderBlocks},
		{"content wins over file", models.Note{Content: "text", FileURL: &file}, RenderBlocks},
		{"file only", models.Note{FileURL: &file}, RenderFile},
		{"whitespace only", models.Note{Content: "  \n "}, RenderEmpty},
		{"nothing", models.Note{}, RenderEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, renderNote(&tt.note).Kind)
		})
	}

	r := renderNote(&models.Note{Content: "<p>Hello <script>x</script></p>"})
	assert.NotContains(t, string(r.HTML), "script")

	r = renderNote(&models.Note{Content: "OVERVIEW\nSome text"})
	assert.Equal(t, []utils.NoteBlock{
		{Type: utils.BlockTitle, Text: "OVERVIEW"},
		{Type: utils.BlockParagraph, Text: "Some text"},
	}, r.Blocks)
}

func TestParsePostRef(t *testing.T) {
	id, valid := parsePostRef("42-career-fair")
	assert.True(t, valid)
	assert.Equal(t, uint(42), id)

	id, valid = parsePostRef("7")
	assert.True(t, valid)
	assert.Equal(t, uint(7), id)

	_, valid = parsePostRef("career-fair")
	assert.False(t, valid)
	_, valid = parsePostRef("-3")
	assert.False(t, valid)
}

func TestPageParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query         string
		page, perPage int
	}{
		{"", 1, defaultPerPage},
		{"page=3&per_page=10", 3, 10},
		{"page=0&per_page=-1", 1, defaultPerPage},
		{"page=abc&per_page=1000", 1, maxPerPage},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/posts?"+tt.query, nil)
		page, perPage := pageParams(c)
		assert.Equal(t, tt.page, page, tt.query)
		assert.Equal(t, tt.perPage, perPage, tt.query)
	}
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, 1, newPagination(1, 20, 0).TotalPages)
	assert.Equal(t, 3, newPagination(1, 20, 41).TotalPages)
	assert.Equal(t, 2, newPagination(2, 20, 40).TotalPages)
}

func TestPostPath(t *testing.T) {
	assert.Equal(t, "/p/5-hello", postPath(&models.Post{ID: 5, Slug: "hello"}))
	assert.Equal(t, "/p/5", postPath(&models.Post{ID: 5}))
}
