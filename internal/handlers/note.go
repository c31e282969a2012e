package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	RenderHTML   = "html"
	RenderBlocks = "blocks"
	RenderFile   = "file"
	RenderEmpty  = "empty"
)

// NoteRender tells the client how to display a note.
type NoteRender struct {
	Kind    string            `json:"kind"`
	HTML    template.HTML     `json:"html,omitempty"`
	Blocks  []utils.NoteBlock `json:"blocks,omitempty"`
	FileURL string            `json:"file_url,omitempty"`
}

// renderNote HTML 内容清洗后直接展示，纯文本按行分类，其余回退到附件
func renderNote(note *models.Note) NoteRender {
	switch {
	case note.Content != "" && utils.ContainsHTML(note.Content):
		return NoteRender{Kind: RenderHTML, HTML: utils.SanitizeHTML(note.Content)}
	case strings.TrimSpace(note.Content) != "":
		return NoteRender{Kind: RenderBlocks, Blocks: utils.ClassifyNoteContent(note.Content)}
	case note.FileURL != nil && *note.FileURL != "":
		return NoteRender{Kind: RenderFile, FileURL: *note.FileURL}
	default:
		return NoteRender{Kind: RenderEmpty}
	}
}

type NoteHandler struct{}

func NewNoteHandler() *NoteHandler {
	return &NoteHandler{}
}

func loadNote(c *gin.Context) (*models.Note, bool) {
	id, valid := paramID(c, "id")
	if !valid {
		return nil, false
	}
	var note models.Note
	if err := db.DB.First(&note, id).Error; err != nil {
		fail(c, http.StatusNotFound, "Note not found.")
		return nil, false
	}
	return &note, true
}

// Show 笔记详情及渲染方式
func (h *NoteHandler) Show(c *gin.Context) {
	note, found := loadNote(c)
	if !found {
		return
	}
	ok(c, gin.H{"note": note, "render": renderNote(note)})
}

// View 供 App 内 WebView 使用的完整 HTML 页面
func (h *NoteHandler) View(c *gin.Context) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		RenderError(c, http.StatusBadRequest, "Invalid note.")
		return
	}
	var note models.Note
	if err := db.DB.First(&note, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Note not found.")
		return
	}
	Render(c, http.StatusOK, "note/view.html", gin.H{
		"Title":  note.Title,
		"Note":   note,
		"Render": renderNote(&note),
	})
}

// ListByModule 后台：模块下的笔记
func (h *NoteHandler) ListByModule(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	notes := make([]models.Note, 0)
	if err := db.DB.Where("module_id = ?", id).Order("created_at ASC").Find(&notes).Error; err != nil {
		handleError(c, err)
		return
	}
	ok(c, notes)
}

type noteInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	FileURL  string `json:"file_url"`
	Type     string `json:"type"` // content | file
	ModuleID uint   `json:"module_id"`
}

// apply 校验并写入字段：content 模式清空附件，file 模式清空正文
func (in noteInput) apply(note *models.Note) string {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.ModuleID == 0 {
		return "Please fill in all required fields."
	}
	var count int64
	db.DB.Model(&models.Module{}).Where("id = ?", in.ModuleID).Count(&count)
	if count == 0 {
		return "Module not found."
	}

	switch in.Type {
	case "", "content":
		if strings.TrimSpace(in.Content) == "" {
			return "Please enter note content."
		}
		note.Content = in.Content
		note.FileURL = nil
	case "file":
		fileURL := strings.TrimSpace(in.FileURL)
		if fileURL == "" {
			return "Please upload a file."
		}
		note.Content = ""
		note.FileURL = &fileURL
	default:
		return "Note type must be content or file."
	}
	note.Title = title
	note.ModuleID = in.ModuleID
	return ""
}

func (h *NoteHandler) Create(c *gin.Context) {
	var req noteInput
	if !bindJSON(c, &req) {
		return
	}
	var note models.Note
	if msg := req.apply(&note); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	if err := db.DB.Create(&note).Error; err != nil {
		handleError(c, err)
		return
	}
	created(c, note)
}

func (h *NoteHandler) Update(c *gin.Context) {
	note, found := loadNote(c)
	if !found {
		return
	}
	var req noteInput
	if !bindJSON(c, &req) {
		return
	}
	if msg := req.apply(note); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	err := db.DB.Model(note).Updates(map[string]interface{}{
		"title":     note.Title,
		"content":   note.Content,
		"file_url":  note.FileURL,
		"module_id": note.ModuleID,
	}).Error
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, note)
}

func (h *NoteHandler) Delete(c *gin.Context) {
	note, found := loadNote(c)
	if !found {
		return
	}
	if err := db.DB.Delete(note).Error; err != nil {
		handleError(c, err)
		return
	}
	ok(c, nil)
}
