package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONResponse(rec, http.StatusCreated, Payload{Success: true, Message: "done", Data: map[string]int{"file_count": 2}})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"message":"done","data":{"file_count":2}}`, rec.Body.String())
}

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusGone, "This code has expired")

	assert.Equal(t, http.StatusGone, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"This code has expired"}`, rec.Body.String())
}
