package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestEnvelopes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ok", func(c *gin.Context) { Success(c, http.StatusCreated, "saved", "cv-1", nil) })
	r.GET("/fail", func(c *gin.Context) { Error(c, http.StatusForbidden, "forbidden", "permission denied", nil) })

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ok", nil))
	var ok map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &ok)
	if resp.Code != http.StatusCreated || ok["success"] != true || ok["id"] != "cv-1" || ok["message"] != "saved" {
		t.Fatalf("unexpected success body %d %s", resp.Code, resp.Body.String())
	}
	if _, has := ok["data"]; has {
		t.Fatalf("data must be omitted when nil")
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/fail", nil))
	var fail struct {
		Success bool      `json:"success"`
		Error   ErrorBody `json:"error"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &fail)
	if resp.Code != http.StatusForbidden || fail.Success || fail.Error.Code != "forbidden" {
		t.Fatalf("unexpected error body %d %s", resp.Code, resp.Body.String())
	}
}
