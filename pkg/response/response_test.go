package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.sabacc/internal/sabacc/core"
)

func record(t *testing.T, fn func(c *gin.Context)) Response {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	resp := record(t, func(c *gin.Context) { Success(c, gin.H{"id": "s1"}) })
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.Equal(t, map[string]any{"id": "s1"}, resp.Data)
}

func TestErrorFromGameError(t *testing.T) {
	resp := record(t, func(c *gin.Context) {
		ErrorFromGameError(c, core.ErrNotYourTurn.WithContext("active", "b"))
	})
	assert.Equal(t, CodeNotYourTurn, resp.Code)
	assert.Contains(t, resp.Message, "NOT_YOUR_TURN")
	assert.Nil(t, resp.Data)

	resp = record(t, func(c *gin.Context) { ErrorFromGameError(c, errors.New("boom")) })
	assert.Equal(t, CodeServerError, resp.Code)
	assert.Equal(t, "服务器内部错误", resp.Message)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeSuccess, CodeOf(nil))
	assert.Equal(t, CodeSessionNotFound, CodeOf(core.ErrSessionNotFound))
	assert.Equal(t, CodeServerError, CodeOf(errors.New("x")))
}
