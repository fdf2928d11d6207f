package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"garageflow-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("empty value is no filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		got, ok := dateQuery(c, "from", "")
		assert.True(t, ok)
		assert.Nil(t, got)
		assert.False(t, c.IsAborted())
	})

	t.Run("valid date", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		got, ok := dateQuery(c, "from", "2026-01-12")
		require.True(t, ok)
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC), *got)
	})

	t.Run("malformed date answers 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		got, ok := dateQuery(c, "to", "2026-02-30")
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body utils.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "INVALID_REQUEST", body.Code)
		assert.Equal(t, "Invalid to date, expected YYYY-MM-DD", body.Message)
	})
}
