package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dentika/clinic-api/internal/validation"
	apperrors "github.com/dentika/clinic-api/pkg/errors"
	"github.com/dentika/clinic-api/pkg/httputil"
)

// ParseID reads the :id path parameter. On failure it writes the 400
// itself and returns false, so call sites stay one line.
func ParseID(c *gin.Context) (int64, bool) {
	return ParseIDParam(c, "id")
}

func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondWithError(c, apperrors.NewBadRequest(name+" must be a positive integer", err))
		return 0, false
	}
	return id, true
}

// DecodeJSON reads the body and runs it through the insertion
// validator. Validation failures come back as the field-error
// envelope; decoding never panics on junk input.
func DecodeJSON(c *gin.Context, v *validation.Validator, dst interface{}) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("failed to read request body", err))
		return false
	}

	if err := v.Decode(body, dst); err != nil {
		var vErr *validation.Error
		if errors.As(err, &vErr) {
			httputil.RespondWithValidationError(c, vErr.Fields)
			return false
		}
		httputil.RespondWithError(c, err)
		return false
	}
	return true
}

// QueryInt64 parses an optional integer query parameter; 0 means
// absent.
func QueryInt64(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || val <= 0 {
		httputil.RespondWithError(c, apperrors.NewBadRequest(name+" must be a positive integer", err))
		return 0, false
	}
	return val, true
}
