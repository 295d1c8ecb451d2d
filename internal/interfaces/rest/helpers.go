package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SkylarKelty/Rapid/pkg/errors"
)

// RespondAppError sends a standardised JSON error response using pkg/errors
func RespondAppError(c *gin.Context, logger *slog.Logger, err error) {
	code := errors.GetHTTPStatus(err)
	if code >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", code,
			"error", err)
	}
	c.JSON(code, errors.ToResponse(err))
}

// HandleGetEnvelope executes a read action and returns the result wrapped in a JSON key
// Response: { [key]: result }
func HandleGetEnvelope(c *gin.Context, logger *slog.Logger, key string, action func() (interface{}, error)) {
	result, err := action()
	if err != nil {
		RespondAppError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{key: result})
}

// BindRow decodes a JSON object body into column values. Numbers are kept as
// int64 when integral and float64 otherwise, so Int fields validate.
func BindRow(c *gin.Context, logger *slog.Logger) (map[string]interface{}, bool) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		RespondAppError(c, logger, errors.NewInvalidValueError("body", nil, err.Error()))
		return nil, false
	}

	row := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case json.Number:
			if n, err := val.Int64(); err == nil {
				row[k] = n
			} else if f, err := val.Float64(); err == nil {
				row[k] = f
			} else {
				row[k] = val.String()
			}
		case map[string]interface{}, []interface{}:
			RespondAppError(c, logger, errors.NewInvalidValueError(k, nil, "nested values are not supported"))
			return nil, false
		default:
			row[k] = val
		}
	}
	return row, true
}

// ParseID reads the :id path parameter
func ParseID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidValueError("id", raw, "expected a positive integer")
	}
	return id, nil
}
