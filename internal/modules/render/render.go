package render

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/readaloud/core/internal/modules/reading"
	"github.com/readaloud/core/internal/pkg/response"
)

// Handler serves the HTML view of a processed document's display script.
type Handler struct {
	store reading.Store
}

func NewHandler(store reading.Store) *Handler { return &Handler{store: store} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/reader")
	g.GET("/results/:id/html", h.renderResult)
}

func (h *Handler) renderResult(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.NotFound(c)
		return
	}

	record, ok, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !ok {
		response.NotFound(c)
		return
	}

	body := renderScript(record.Data.Script)
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, renderHTMLDocument(documentTitle(record.Data.Script), body))
}

// documentTitle takes the first non-empty line of the script, with any
// leading markdown heading markers stripped.
func documentTitle(script string) string {
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			return line
		}
	}
	return ""
}
