package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/stemsi/exstem-paper/internal/model"
)

func bindBody(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBindBlockType(t *testing.T) {
	Setup()

	var ok model.AddBlockRequest
	assert.Nil(t, bindBody(t, `{"type":"sum"}`, &ok))
	assert.Equal(t, model.BlockTypeSum, ok.Type)

	var bad model.AddBlockRequest
	fields := bindBody(t, `{"type":"crossword"}`, &bad)
	assert.Equal(t, "type must be a known block type", fields["type"])
}

func TestBindNestedBlocks(t *testing.T) {
	Setup()

	var req model.SaveBlocksRequest
	fields := bindBody(t, `{"blocks":[{"id":"a","type":"text","content":{}},{"id":"","type":"essay"}]}`, &req)

	assert.Equal(t, "id is a required field", fields["blocks[1].id"])
	assert.NotContains(t, fields, "blocks[0].id")
}

func TestBindWrongFieldType(t *testing.T) {
	Setup()

	var req model.AddBlockRequest
	fields := bindBody(t, `{"type":5}`, &req)

	assert.Equal(t, "must be a string", fields["type"])
}

func TestBindMalformedJSON(t *testing.T) {
	Setup()

	var req model.AddBlockRequest
	fields := bindBody(t, `{"type":`, &req)

	assert.Contains(t, fields, "detail")
}
