package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"order_service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performError(err error) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(c, err)
	return recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestRespondErrorValidation(t *testing.T) {
	recorder := performError(services.NewValidationError("reason is required", "items is required"))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeEnvelope(t, recorder)
	assert.Equal(t, float64(1), body["code"])
	assert.Len(t, body["errors"], 2)
}

func TestRespondErrorNotFound(t *testing.T) {
	recorder := performError(&services.NotFoundError{Message: "Order does not exist"})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	body := decodeEnvelope(t, recorder)
	assert.Equal(t, float64(1), body["code"])
	assert.Equal(t, "Order does not exist", body["message"])
}

func TestRespondErrorConflict(t *testing.T) {
	recorder := performError(&services.ConflictError{Message: "Order already paid, cannot cancel"})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeEnvelope(t, recorder)
	assert.Equal(t, float64(1), body["code"])
	assert.Equal(t, "Order already paid, cannot cancel", body["message"])
}

func TestRespondErrorUpstream(t *testing.T) {
	recorder := performError(&services.UpstreamError{Op: "check stock", Err: errors.New("connection refused")})

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	body := decodeEnvelope(t, recorder)
	assert.Equal(t, float64(2), body["code"])
	// Upstream details never leak to the client.
	assert.Equal(t, "Internal server error", body["message"])
}

func TestParseDateRange(t *testing.T) {
	newContext := func(query string) (*gin.Context, *httptest.ResponseRecorder) {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		return c, recorder
	}

	t.Run("empty range passes through", func(t *testing.T) {
		c, _ := newContext("")
		start, end, ok := parseDateRange(c)
		assert.True(t, ok)
		assert.Nil(t, start)
		assert.Nil(t, end)
	})

	t.Run("valid range covers both days fully", func(t *testing.T) {
		c, _ := newContext("start_date=2024-03-01&end_date=2024-03-02")
		start, end, ok := parseDateRange(c)
		require.True(t, ok)
		require.NotNil(t, start)
		require.NotNil(t, end)
		assert.Equal(t, "2024-03-01", start.Format("2006-01-02"))
		assert.True(t, end.After(*start))
		assert.Equal(t, 2, end.Day())
		assert.Equal(t, 23, end.Hour())
	})

	t.Run("half a range is rejected", func(t *testing.T) {
		c, recorder := newContext("start_date=2024-03-01")
		_, _, ok := parseDateRange(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("malformed dates are rejected", func(t *testing.T) {
		c, recorder := newContext("start_date=01-03-2024&end_date=2024-03-02")
		_, _, ok := parseDateRange(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		c, recorder := newContext("start_date=2024-03-05&end_date=2024-03-02")
		_, _, ok := parseDateRange(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
