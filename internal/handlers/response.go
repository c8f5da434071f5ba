package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"order_service/internal/services"

	"github.com/gin-gonic/gin"
)

// Every response uses the platform envelope: code 0 is success, 1 a
// business refusal, 2 a system error.
const (
	codeSuccess = 0
	codeFailure = 1
	codeError   = 2
)

func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"code":    codeSuccess,
		"message": message,
		"data":    data,
	})
}

// respondError maps the service error taxonomy onto the envelope.
// Validation errors additionally carry every violated constraint.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    codeFailure,
			"message": "Invalid request",
			"errors":  validationErr.Errors,
		})
		return
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    codeFailure,
			"message": notFoundErr.Message,
		})
		return
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    codeFailure,
			"message": conflictErr.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    codeError,
		"message": "Internal server error",
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    codeFailure,
		"message": message,
	})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func parseUintQuery(c *gin.Context, name string) uint {
	value, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(value)
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// parseDateRange reads start_date and end_date query params in
// yyyy-mm-dd form. The range covers both days fully. Either both are
// given or neither.
func parseDateRange(c *gin.Context) (start, end *time.Time, ok bool) {
	startStr := c.Query("start_date")
	endStr := c.Query("end_date")
	if startStr == "" && endStr == "" {
		return nil, nil, true
	}
	if !datePattern.MatchString(startStr) || !datePattern.MatchString(endStr) {
		respondBadRequest(c, "start_date and end_date must both be given as yyyy-mm-dd")
		return nil, nil, false
	}

	startDay, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		respondBadRequest(c, "Invalid start_date")
		return nil, nil, false
	}
	endDay, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		respondBadRequest(c, "Invalid end_date")
		return nil, nil, false
	}
	if endDay.Before(startDay) {
		respondBadRequest(c, "end_date must not be before start_date")
		return nil, nil, false
	}

	endOfDay := endDay.Add(24*time.Hour - time.Nanosecond)
	return &startDay, &endOfDay, true
}
