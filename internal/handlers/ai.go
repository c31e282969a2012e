package handlers

import (
	"campusfeed/internal/services"

	"github.com/gin-gonic/gin"
)

// AIHandler Gemini 辅助写笔记
type AIHandler struct {
	llm *services.LLMService
}

func NewAIHandler(llm *services.LLMService) *AIHandler {
	return &AIHandler{llm: llm}
}

func (h *AIHandler) GenerateNote(c *gin.Context) {
	var req services.NoteRequest
	if !bindJSON(c, &req) {
		return
	}
	content, err := h.llm.GenerateNote(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, gin.H{"content": content})
}

func (h *AIHandler) Enhance(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if !bindJSON(c, &req) {
		return
	}
	content, err := h.llm.EnhanceNote(c.Request.Context(), req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, gin.H{"content": content})
}
