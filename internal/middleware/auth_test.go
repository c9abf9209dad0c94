package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	"github.com/SscSPs/btc_rate_service/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSessionVerifier struct {
	mock.Mock
}

func (m *mockSessionVerifier) Verify(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func newAuthRouter(verifier *mockSessionVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", middleware.AuthMiddleware(verifier), func(c *gin.Context) {
		subject, ok := middleware.GetSubjectFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, subject)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	verifier := new(mockSessionVerifier)
	verifier.On("Verify", mock.Anything, "good").Return(&domain.Session{Subject: "a@x.io"}, nil)
	verifier.On("Verify", mock.Anything, "bad").Return(nil, apperrors.ErrUnauthorized)
	router := newAuthRouter(verifier)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"valid bearer", "Bearer good", http.StatusOK, "a@x.io"},
		{"lowercase scheme", "bearer good", http.StatusOK, "a@x.io"},
		{"missing header", "", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"no token", "Bearer", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"blank token", "Bearer   ", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"rejected token", "Bearer bad", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.wantBody, w.Body.String())
			} else {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}
