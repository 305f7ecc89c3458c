package utils

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"farmlyf_back_end/internal/store"
	"farmlyf_back_end/internal/workflow"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewAppError(http.StatusTeapot, "tea"), http.StatusTeapot},
		{fmt.Errorf("load order: %w", store.ErrNotFound), http.StatusNotFound},
		{store.ErrConflict, http.StatusConflict},
		{store.ErrNoStock, http.StatusConflict},
		{fmt.Errorf("%w: Pending → Refunded", workflow.ErrInvalidTransition), http.StatusUnprocessableEntity},
		{workflow.ErrUnknownStatus, http.StatusBadRequest},
		{workflow.ErrNotReturnable, http.StatusUnprocessableEntity},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, _ := StatusFor(tc.err)
		assert.Equal(t, tc.want, got, tc.err.Error())
	}
}

func TestHandleErrorWritesJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleError(c, WrapError(http.StatusBadRequest, "Invalid order id", fmt.Errorf("bad hex")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid order id"}`, w.Body.String())
	assert.True(t, c.IsAborted())
}
