package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	logger := zerolog.Nop()
	cfg := config.AuthConfig{JWTSecret: "test-secret", JWTIssuer: "storefront"}

	valid, err := auth.MintToken(cfg, time.Now(), 7, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectHandler  bool
	}{
		{
			name:           "Valid bearer token",
			header:         "Bearer " + valid,
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
		{
			name:           "Lowercase scheme",
			header:         "bearer " + valid,
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
		{
			name:           "Missing header",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Scheme without token",
			header:         "Bearer ",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid token",
			header:         "Bearer not-a-token",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var profileID int64
			handlerCalled := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				profileID, _ = auth.ProfileIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := Authenticate(cfg, logger)(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
			if tt.expectHandler {
				assert.Equal(t, int64(7), profileID)
			} else {
				assert.Contains(t, w.Body.String(), `"error":"UNAUTHORIZED"`)
			}
		})
	}
}
