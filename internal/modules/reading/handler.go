package reading

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/readaloud/core/internal/pkg/response"
	"go.uber.org/zap"
)

// Handler exposes the submission boundary over HTTP.
type Handler struct {
	orch  *Orchestrator
	store Store
	hist  *Projector
	log   *zap.Logger
}

func NewHandler(orch *Orchestrator, store Store, hist *Projector, log *zap.Logger) *Handler {
	return &Handler{orch: orch, store: store, hist: hist, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/reader")

	g.POST("/process", h.process)
	g.GET("/history", h.listHistory)
	g.DELETE("/history/:id", h.deleteHistoryEntry)
	g.GET("/results/:id", h.getResult)
	g.GET("/results/:id/audio", h.getResultAudio)
}

type processDTO struct {
	Text        string `json:"text"`
	FileContent []byte `json:"fileContent"` // base64 in JSON
	MimeType    string `json:"mimeType"`
}

// POST /reader/process
func (h *Handler) process(c *gin.Context) {
	var dto processDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	input := Input{
		Text:        dto.Text,
		FileContent: dto.FileContent,
		MIMEType:    dto.MimeType,
	}

	outcome, err := h.orch.Process(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrInputRejected):
			response.BadRequest(c, "submission is empty")
		case errors.Is(err, ErrTranscriptionFailed):
			response.BadGateway(c, "could not process document")
		case errors.Is(err, ErrSynthesisFailed):
			response.BadGateway(c, "could not synthesize audio for document")
		default:
			response.InternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          outcome.Record.ID,
		"timestamp":   outcome.Record.Timestamp,
		"wasCacheHit": outcome.WasCacheHit,
		"persisted":   outcome.Persisted,
		"result":      outcome.Record.Data,
	})
}

// GET /reader/history
func (h *Handler) listHistory(c *gin.Context) {
	entries, err := h.hist.ListHistory(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, entries)
}

// DELETE /reader/history/:id
func (h *Handler) deleteHistoryEntry(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// GET /reader/results/:id
func (h *Handler) getResult(c *gin.Context) {
	record, ok, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !ok {
		response.NotFoundMsg(c, "result not found")
		return
	}
	response.OK(c, record)
}

// GET /reader/results/:id/audio
func (h *Handler) getResultAudio(c *gin.Context) {
	record, ok, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !ok || len(record.Data.Audio.Data) == 0 {
		response.NotFoundMsg(c, "audio not found")
		return
	}

	mime := record.Data.Audio.MIMEType
	if mime == "" {
		mime = "application/octet-stream"
	}
	c.Data(http.StatusOK, mime, record.Data.Audio.Data)
}
