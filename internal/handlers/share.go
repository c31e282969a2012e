package handlers

import (
	"net/http"
	"strings"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/utils"

	"github.com/gin-gonic/gin"
)

// ShareHandler 文章分享页，带 OpenGraph 元信息
type ShareHandler struct {
	siteURL string
}

func NewShareHandler(siteURL string) *ShareHandler {
	return &ShareHandler{siteURL: strings.TrimSuffix(siteURL, "/")}
}

// parsePostRef 支持 "12" 和 "12-some-title" 两种形式
func parsePostRef(ref string) (uint, bool) {
	if i := strings.IndexByte(ref, '-'); i > 0 {
		ref = ref[:i]
	}
	return utils.ParseID(ref)
}

func (h *ShareHandler) Show(c *gin.Context) {
	id, valid := parsePostRef(c.Param("ref"))
	if !valid {
		RenderError(c, http.StatusNotFound, "This post does not exist.")
		return
	}

	var post models.Post
	if err := db.DB.Preload("Category").First(&post, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "This post does not exist.")
		return
	}

	description := post.Excerpt
	if description == "" {
		description = utils.PlainExcerpt(string(renderPostContent(post.Content)), 160)
	}

	Render(c, http.StatusOK, "post/share.html", gin.H{
		"Title":        post.Title,
		"Post":         post,
		"Content":      renderPostContent(post.Content),
		"Description":  description,
		"CanonicalURL": h.siteURL + postPath(&post),
		"SiteURL":      h.siteURL,
	})
}
