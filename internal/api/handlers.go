package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"docflow/internal/apperr"
	"docflow/internal/auth"
	"docflow/internal/models"
)

// Pipeline is the document workflow the routes drive.
type Pipeline interface {
	Create(ctx context.Context, r io.Reader, filename string) (*models.Document, error)
	Classify(ctx context.Context, id, text string) (bool, error)
	Summarize(ctx context.Context, id, text string) (string, error)
	Translate(ctx context.Context, id, text, lang string) (string, error)
	GenerateDocument(ctx context.Context, id, content string) (string, error)
	GenerateTranslatedDocument(ctx context.Context, id string) (string, error)
	Fetch(ctx context.Context, id string) (*models.Document, error)
	FetchGeneratedFile(ctx context.Context, id string) (string, error)
}

type Config struct {
	MaxUploadBytes int64
	APIKey         string
}

// multipart framing allowance on top of the file size limit
const formOverheadBytes = 1 << 20

// Handler wires HTTP routes to the document pipeline.
type Handler struct {
	pipeline Pipeline
	cfg      Config
	logger   zerolog.Logger
}

// NewHandler constructs a Handler instance.
func NewHandler(pipeline Pipeline, cfg Config, logger zerolog.Logger) *Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		pipeline: pipeline,
		cfg:      cfg,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.healthz)

	routes := router.Group("/")
	routes.Use(auth.APIKey(h.cfg.APIKey))
	routes.POST("/upload", h.upload)
	routes.POST("/check_legal", h.checkLegal)
	routes.POST("/summarize", h.summarize)
	routes.POST("/translate", h.translate)
	routes.POST("/generate_document", h.generateDocument)
	routes.GET("/download/:document_id", h.download)
	routes.GET("/download_translated/:document_id", h.downloadTranslated)
	routes.GET("/documents/:document_id", h.getDocument)
}

// DocumentID accepts a JSON string or number. Relational stores hand out
// integer ids, the others strings.
type DocumentID string

func (d *DocumentID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*d = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DocumentID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("document_id must be a string or number")
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("document_id must be an integer")
	}
	*d = DocumentID(n.String())
	return nil
}

type textRequest struct {
	DocumentID DocumentID `json:"document_id" binding:"required"`
	Text       string     `json:"text"`
}

type translateRequest struct {
	DocumentID DocumentID `json:"document_id" binding:"required"`
	Text       string     `json:"text"`
	Lang       string     `json:"lang"`
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) upload(c *gin.Context) {
	limit := h.cfg.MaxUploadBytes + formOverheadBytes
	if c.Request.ContentLength > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file part"})
		return
	}
	if file.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no selected file"})
		return
	}
	if file.Size > h.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "open file failed"})
		return
	}
	defer f.Close()

	doc, err := h.pipeline.Create(c.Request.Context(), f, file.Filename)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"text":        doc.ExtractedText,
		"document_id": doc.ID,
	})
}

func (h *Handler) checkLegal(c *gin.Context) {
	var req textRequest
	if !h.bind(c, &req) {
		return
	}
	isLegal, err := h.pipeline.Classify(c.Request.Context(), string(req.DocumentID), req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_legal": isLegal})
}

func (h *Handler) summarize(c *gin.Context) {
	var req textRequest
	if !h.bind(c, &req) {
		return
	}
	summary, err := h.pipeline.Summarize(c.Request.Context(), string(req.DocumentID), req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *Handler) translate(c *gin.Context) {
	var req translateRequest
	if !h.bind(c, &req) {
		return
	}
	translated, err := h.pipeline.Translate(c.Request.Context(), string(req.DocumentID), req.Text, req.Lang)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"translated_text": translated})
}

func (h *Handler) generateDocument(c *gin.Context) {
	var req textRequest
	if !h.bind(c, &req) {
		return
	}
	if _, err := h.pipeline.GenerateDocument(c.Request.Context(), string(req.DocumentID), req.Text); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"File": "Downloaded Successfully."})
}

func (h *Handler) download(c *gin.Context) {
	id := c.Param("document_id")
	path, err := h.pipeline.FetchGeneratedFile(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.FileAttachment(path, "generated_"+id+".pdf")
}

// downloadTranslated renders the stored translation on every request.
func (h *Handler) downloadTranslated(c *gin.Context) {
	id := c.Param("document_id")
	path, err := h.pipeline.GenerateTranslatedDocument(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.FileAttachment(path, "translated_"+id+".pdf")
}

func (h *Handler) getDocument(c *gin.Context) {
	doc, err := h.pipeline.Fetch(c.Request.Context(), c.Param("document_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: document_id is required"})
		return false
	}
	return true
}

// writeError maps pipeline error kinds to status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, apperr.ErrBadRequest):
		status, msg = http.StatusBadRequest, causeMessage(err)
	case errors.Is(err, apperr.ErrNotFound):
		status, msg = http.StatusNotFound, causeMessage(err)
	case errors.Is(err, apperr.ErrBusy):
		status, msg = http.StatusTooManyRequests, "server is busy, retry later"
	case errors.Is(err, apperr.ErrAdapter):
		status, msg = http.StatusBadGateway, err.Error()
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": msg})
}

func causeMessage(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Err != nil {
		return appErr.Err.Error()
	}
	return err.Error()
}
