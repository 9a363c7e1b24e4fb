package errors_test

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	apperrors "github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/errors"
)

func TestIs_MatchesKindSentinels(t *testing.T) {
	err := fmt.Errorf("lookup: %w", apperrors.NotFound("order not found"))

	assert.True(t, stderrors.Is(err, apperrors.ErrNotFound))
	assert.False(t, stderrors.Is(err, apperrors.ErrConflict))
	assert.True(t, stderrors.Is(apperrors.Storage("upload failed", nil), apperrors.ErrStorage))
	assert.False(t, stderrors.Is(apperrors.NotFound("a"), apperrors.NotFound("a")), "only sentinels act as kinds")
}

func TestFromStore_TranslatesGormErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, http.StatusConflict},
		{"foreign key", gorm.ErrForeignKeyViolated, http.StatusNotFound},
		{"other", stderrors.New("connection reset"), http.StatusBadGateway},
		{"already translated", apperrors.Validation("bad"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, apperrors.StatusOf(apperrors.FromStore(tt.err, "product")))
		})
	}
	assert.NoError(t, apperrors.FromStore(nil, "product"))
}

func TestRespond_HidesWrappedCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	apperrors.Respond(c, apperrors.Storage("failed to access order", stderrors.New("dial tcp 10.0.0.1:5432")))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "failed to access order", body["error"])
}

func TestRespond_UnknownErrorIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	apperrors.Respond(c, stderrors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestErrorMiddleware_RendersAttachedError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(apperrors.Forbidden("admin only"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "admin only")
}
