package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/storekeeper/internal/shared/apperrors"
)

func TestFromAppError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"validation", apperrors.Invalid("name", "too short"), http.StatusBadRequest, TypeValidation},
		{"selection", &apperrors.SelectionError{Reason: "pick one"}, http.StatusBadRequest, TypeSelection},
		{"not found", apperrors.NotFound("product", 7), http.StatusNotFound, TypeNotFound},
		{"stock", apperrors.NewInsufficientStock(apperrors.Shortage{ProductID: 1, Available: 2}), http.StatusConflict, TypeInsufficientStock},
		{"conflict", apperrors.Duplicate("product", "sku", "A-1"), http.StatusConflict, TypeConflict},
		{"persistence", apperrors.Persistence("save", errors.New("boom")), http.StatusInternalServerError, TypeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			problem, ok := FromAppError(tc.err)
			require.True(t, ok)
			assert.Equal(t, tc.status, problem.Status)
			assert.Equal(t, tc.typ, problem.Type)
		})
	}

	_, ok := FromAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestFromAppErrorKeepsShortagesOfRejectedQuantity(t *testing.T) {
	err := apperrors.NewValidation("quantities[0]", apperrors.NewInsufficientStock(apperrors.Shortage{ProductID: 3, Name: "Mug", Requested: 4, Available: 2}))
	problem, ok := FromAppError(err)
	require.True(t, ok)
	assert.Equal(t, TypeValidation, problem.Type)
	assert.Equal(t, http.StatusBadRequest, problem.Status)
	require.Contains(t, problem.Extensions, "shortages")
	assert.Contains(t, problem.Extensions, "fields")
}

func TestPersistenceDetailDoesNotLeakCause(t *testing.T) {
	problem, _ := FromAppError(apperrors.Persistence("save", errors.New("pq: password authentication failed")))
	assert.NotContains(t, problem.Detail, "password")
}

func TestChainedResponderHidesUnmappedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	responder := NewChainedResponder(slog.New(slog.NewJSONHandler(&logs, nil)), FromAppError)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/owners/1", nil)
	responder.RespondError(c, errors.New("dial tcp: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, rec.Body.String(), `"instance":"/v1/owners/1"`)
	assert.Contains(t, logs.String(), "connection refused")
}

func TestChainedResponderMapsKnownErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	responder := NewChainedResponder(nil, FromAppError)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/owners/1/products/9", nil)
	responder.RespondError(c, apperrors.NotFound("product", 9))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), TypeNotFound)
}
