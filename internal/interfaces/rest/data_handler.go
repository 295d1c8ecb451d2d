package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SkylarKelty/Rapid/internal/infrastructure/persistence"
	"github.com/SkylarKelty/Rapid/pkg/errors"
	"github.com/SkylarKelty/Rapid/pkg/models"
	"github.com/SkylarKelty/Rapid/pkg/query"
)

// DataStore is the subset of the persistence facade the generic data
// endpoints need
type DataStore interface {
	GetRecords(ctx context.Context, table string, params query.Params, fields ...string) (*persistence.RowSet, error)
	GetRecord(ctx context.Context, table string, params query.Params) (models.Row, error)
	CountRecords(ctx context.Context, table string, params query.Params) (int64, error)
	InsertRecord(ctx context.Context, table string, params query.Params) (int64, error)
	UpdateRecord(ctx context.Context, table string, params query.Params) (int64, error)
	DeleteRecords(ctx context.Context, table string, params query.Params) (int64, error)
}

// DataHandler exposes table-level CRUD over JSON
type DataHandler struct {
	store  DataStore
	logger *slog.Logger
}

func NewDataHandler(store DataStore, logger *slog.Logger) *DataHandler {
	return &DataHandler{store: store, logger: logger}
}

// filters turns the query string into equality filters. "fields" is reserved
// for the column projection.
func filters(c *gin.Context) (query.Params, []string) {
	params := query.Params{}
	var fields []string
	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		if key == "fields" {
			for _, f := range strings.Split(values[0], ",") {
				if f = strings.TrimSpace(f); f != "" {
					fields = append(fields, f)
				}
			}
			continue
		}
		params[key] = values[0]
	}
	return params, fields
}

// List handles GET /api/data/:table
func (h *DataHandler) List(c *gin.Context) {
	params, fields := filters(c)
	HandleGetEnvelope(c, h.logger, "records", func() (interface{}, error) {
		rs, err := h.store.GetRecords(c.Request.Context(), c.Param("table"), params, fields...)
		if err != nil {
			return nil, err
		}
		return rs.Rows, nil
	})
}

// Count handles GET /api/data/:table/count
func (h *DataHandler) Count(c *gin.Context) {
	params, _ := filters(c)
	HandleGetEnvelope(c, h.logger, "count", func() (interface{}, error) {
		return h.store.CountRecords(c.Request.Context(), c.Param("table"), params)
	})
}

// Get handles GET /api/data/:table/:id
func (h *DataHandler) Get(c *gin.Context) {
	table := c.Param("table")
	HandleGetEnvelope(c, h.logger, "record", func() (interface{}, error) {
		id, err := ParseID(c)
		if err != nil {
			return nil, err
		}
		row, err := h.store.GetRecord(c.Request.Context(), table, query.Params{query.IDColumn: id})
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, errors.NewNotFoundError(table, strconv.FormatInt(id, 10))
		}
		return row, nil
	})
}

// Create handles POST /api/data/:table
func (h *DataHandler) Create(c *gin.Context) {
	row, ok := BindRow(c, h.logger)
	if !ok {
		return
	}

	id, err := h.store.InsertRecord(c.Request.Context(), c.Param("table"), query.Params(row))
	if err != nil {
		RespondAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Record created successfully", "id": id})
}

// Update handles PUT /api/data/:table/:id
func (h *DataHandler) Update(c *gin.Context) {
	table := c.Param("table")
	id, err := ParseID(c)
	if err != nil {
		RespondAppError(c, h.logger, err)
		return
	}

	row, ok := BindRow(c, h.logger)
	if !ok {
		return
	}
	params := query.Params(row)
	params[query.IDColumn] = id

	n, err := h.store.UpdateRecord(c.Request.Context(), table, params)
	if err != nil {
		RespondAppError(c, h.logger, err)
		return
	}
	if n == 0 {
		RespondAppError(c, h.logger, errors.NewNotFoundError(table, strconv.FormatInt(id, 10)))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record updated successfully", "rows_affected": n})
}

// Delete handles DELETE /api/data/:table/:id
func (h *DataHandler) Delete(c *gin.Context) {
	table := c.Param("table")
	id, err := ParseID(c)
	if err != nil {
		RespondAppError(c, h.logger, err)
		return
	}

	n, err := h.store.DeleteRecords(c.Request.Context(), table, query.Params{query.IDColumn: id})
	if err != nil {
		RespondAppError(c, h.logger, err)
		return
	}
	if n == 0 {
		RespondAppError(c, h.logger, errors.NewNotFoundError(table, strconv.FormatInt(id, 10)))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}
