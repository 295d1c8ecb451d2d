package rest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SkylarKelty/Rapid/internal/domain/models"
	"github.com/SkylarKelty/Rapid/internal/infrastructure/persistence"
	"github.com/SkylarKelty/Rapid/pkg/errors"
	"github.com/SkylarKelty/Rapid/pkg/query"
)

// WidgetHandler serves widgets through the typed model path, so request
// bodies are validated against the Widget schema before anything is written.
type WidgetHandler struct {
	store  *persistence.Store
	logger *slog.Logger
}

func NewWidgetHandler(store *persistence.Store, logger *slog.Logger) *WidgetHandler {
	return &WidgetHandler{store: store, logger: logger}
}

// List handles GET /api/widgets
func (h *WidgetHandler) List(c *gin.Context) {
	params, _ := filters(c)
	HandleGetEnvelope(c, h.logger, "widgets", func() (interface{}, error) {
		return persistence.GetModels(c.Request.Context(), h.store, models.NewWidget, params)
	})
}

// Get handles GET /api/widgets/:id
func (h *WidgetHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, h.logger, "widget", func() (interface{}, error) {
		id, err := ParseID(c)
		if err != nil {
			return nil, err
		}
		w, err := persistence.GetModel(c.Request.Context(), h.store, models.NewWidget, query.Params{query.IDColumn: id})
		if err != nil {
			return nil, err
		}
		if w == nil {
			return nil, errors.NewNotFoundError("widget", strconv.FormatInt(id, 10))
		}
		return w, nil
	})
}

// Create handles POST /api/widgets. Locked fields such as id and serial
// cannot be supplied by the client.
func (h *WidgetHandler) Create(c *gin.Context) {
	row, ok := BindRow(c, h.logger)
	if !ok {
		return
	}

	w := models.NewWidget()
	if err := w.Hydrate(row, false); err != nil {
		RespondAppError(c, h.logger, err)
		return
	}

	if _, err := persistence.SaveModel(c.Request.Context(), h.store, w); err != nil {
		RespondAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Widget created successfully", "widget": w})
}
