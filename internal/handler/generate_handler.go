package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quizora/quizora-backend/internal/ai"
	"github.com/quizora/quizora-backend/internal/middleware"
	"github.com/quizora/quizora-backend/internal/model"
	"github.com/quizora/quizora-backend/internal/response"
	"github.com/quizora/quizora-backend/internal/service"
	"github.com/quizora/quizora-backend/internal/validator"
)

// Upload types the multimodal backend accepts.
var allowedUploadTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"text/plain":      true,
}

// GenerateHandler handles quiz generation and file text extraction.
type GenerateHandler struct {
	generation     *service.GenerationService
	maxUploadBytes int64
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(generation *service.GenerationService, maxUploadBytes int64) *GenerateHandler {
	return &GenerateHandler{generation: generation, maxUploadBytes: maxUploadBytes}
}

// generateRequest is the JSON body for text-only generation.
type generateRequest struct {
	DisplayName string                 `json:"display_name" binding:"max=120"`
	Topic       string                 `json:"topic" binding:"max=300"`
	Prompt      string                 `json:"prompt" binding:"max=4000"`
	Config      model.GenerationConfig `json:"config"`
}

// Generate godoc
// POST /api/v1/quiz/generate
// Runs one gated generation request. Accepts a JSON body, or a multipart
// form with file attachments and the same fields as form values (config as
// a JSON string).
func (h *GenerateHandler) Generate(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	var in service.GenerateInput
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		parsed, ok := h.bindMultipart(c)
		if !ok {
			return
		}
		in = *parsed
	} else {
		var req generateRequest
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
		in = service.GenerateInput{
			DisplayName: req.DisplayName,
			Topic:       req.Topic,
			Prompt:      req.Prompt,
			Config:      req.Config,
		}
	}

	session, f := h.generation.GenerateQuiz(c.Request.Context(), clientID, in)
	if f != nil {
		failWithFault(c, f)
		return
	}
	response.Success(c, http.StatusCreated, session)
}

// Extract godoc
// POST /api/v1/quiz/extract
// Pulls text out of an uploaded file. Not credit-gated.
func (h *GenerateHandler) Extract(c *gin.Context) {
	file, ok := h.readUpload(c, "file")
	if !ok {
		return
	}

	result, f := h.generation.ExtractFileText(c.Request.Context(), *file)
	if f != nil {
		failWithFault(c, f)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// bindMultipart parses the file-bearing generation form. On failure it has
// already written the error response.
func (h *GenerateHandler) bindMultipart(c *gin.Context) (*service.GenerateInput, bool) {
	in := service.GenerateInput{
		DisplayName: c.PostForm("display_name"),
		Topic:       c.PostForm("topic"),
		Prompt:      c.PostForm("prompt"),
	}

	if raw := c.PostForm("config"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Config); err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
				map[string]string{"config": "must be a JSON object"})
			return nil, false
		}
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return nil, false
	}
	for _, header := range form.File["files"] {
		file, ok := h.readUploadHeader(c, header)
		if !ok {
			return nil, false
		}
		in.Files = append(in.Files, *file)
	}
	return &in, true
}

// readUpload reads a single named upload. On failure it has already written
// the error response.
func (h *GenerateHandler) readUpload(c *gin.Context, field string) (*ai.File, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return nil, false
	}
	return h.readUploadHeader(c, header)
}

func (h *GenerateHandler) readUploadHeader(c *gin.Context, header *multipart.FileHeader) (*ai.File, bool) {
	if header.Size > h.maxUploadBytes {
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		return nil, false
	}

	mimeType := header.Header.Get("Content-Type")
	if !allowedUploadTypes[mimeType] {
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil, false
	}
	if int64(len(data)) > h.maxUploadBytes {
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		return nil, false
	}

	return &ai.File{Name: header.Filename, MIMEType: mimeType, Data: data}, true
}
