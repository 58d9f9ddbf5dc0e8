package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"tradedesk_backend/internal/feature/auth/usecase"
)

// mockAuthUsecase is a mock implementation of the AuthUsecase interface.
type mockAuthUsecase struct {
	SignupFunc  func(ctx context.Context, email, password string) error
	LoginFunc   func(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.TokenPair, error)
	RefreshFunc func(ctx context.Context, refreshToken string, client usecase.ClientInfo) (*usecase.TokenPair, error)
	LogoutFunc  func(ctx context.Context, refreshToken string) error
}

func (m *mockAuthUsecase) Signup(ctx context.Context, email, password string) error {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, email, password)
	}
	return nil
}

func (m *mockAuthUsecase) Login(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.TokenPair, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, client)
	}
	return nil, usecase.ErrInvalidCredentials
}

func (m *mockAuthUsecase) Refresh(ctx context.Context, refreshToken string, client usecase.ClientInfo) (*usecase.TokenPair, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken, client)
	}
	return nil, usecase.ErrInvalidRefreshToken
}

func (m *mockAuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, refreshToken)
	}
	return nil
}

// mockMarketCredentials counts credential invalidations triggered by logout.
type mockMarketCredentials struct {
	clearCalls int
}

func (m *mockMarketCredentials) Clear() {
	m.clearCalls++
}

func testPair() *usecase.TokenPair {
	return &usecase.TokenPair{
		AccessToken:  "dummy-jwt-token",
		RefreshToken: "dummy-refresh-token",
		ExpiresIn:    900,
	}
}

func postJSON(router *gin.Engine, path string, body gin.H) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requestBody    gin.H
		mockSignupFunc func(ctx context.Context, email, password string) error
		expectedStatus int
		expectedBody   gin.H
	}{
		{
			name:           "success: user registration",
			requestBody:    gin.H{"email": "test@example.com", "password": "password123"},
			mockSignupFunc: func(ctx context.Context, email, password string) error { return nil },
			expectedStatus: http.StatusCreated,
			expectedBody:   gin.H{"message": "ok"},
		},
		{
			name:           "failure: invalid email address",
			requestBody:    gin.H{"email": "invalid-email", "password": "password123"},
			mockSignupFunc: nil, // Usecase is not called
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "Key: 'SignupReq.Email' Error:Field validation for 'Email' failed on the 'email' tag"},
		},
		{
			name:           "failure: short password",
			requestBody:    gin.H{"email": "test@example.com", "password": "short"},
			mockSignupFunc: nil, // Usecase is not called
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "Key: 'SignupReq.Password' Error:Field validation for 'Password' failed on the 'min' tag"},
		},
		{
			name:        "failure: duplicate email",
			requestBody: gin.H{"email": "existing@example.com", "password": "password123"},
			mockSignupFunc: func(ctx context.Context, email, password string) error {
				return usecase.ErrEmailAlreadyExists
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   gin.H{"error": "email already exists"},
		},
		{
			name:        "failure: unexpected usecase error",
			requestBody: gin.H{"email": "test@example.com", "password": "password123"},
			mockSignupFunc: func(ctx context.Context, email, password string) error {
				return errors.New("db is down")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   gin.H{"error": "signup failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockAuthUsecase{SignupFunc: tt.mockSignupFunc}
			handler := NewAuthHandler(mockUC, nil)

			router := gin.New()
			router.POST("/signup", handler.Signup)

			w := postJSON(router, "/signup", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var responseBody gin.H
			err := json.Unmarshal(w.Body.Bytes(), &responseBody)
			assert.NoError(t, err)

			// Error messages include Gin validation error details, so check partial match
			if tt.expectedStatus == http.StatusBadRequest {
				assert.Contains(t, responseBody["error"], tt.expectedBody["error"])
			} else {
				assert.Equal(t, tt.expectedBody, responseBody)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requestBody    gin.H
		mockLoginFunc  func(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.TokenPair, error)
		expectedStatus int
		expectedBody   gin.H
	}{
		{
			name:        "success: user login",
			requestBody: gin.H{"email": "test@example.com", "password": "password123"},
			mockLoginFunc: func(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.TokenPair, error) {
				return testPair(), nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: gin.H{
				"access_token":  "dummy-jwt-token",
				"refresh_token": "dummy-refresh-token",
				"expires_in":    float64(900),
			},
		},
		{
			name:           "failure: invalid email address",
			requestBody:    gin.H{"email": "invalid-email", "password": "password123"},
			mockLoginFunc:  nil, // Usecase is not called
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "Key: 'LoginReq.Email' Error:Field validation for 'Email' failed on the 'email' tag"},
		},
		{
			name:           "failure: missing password",
			requestBody:    gin.H{"email": "test@example.com"},
			mockLoginFunc:  nil, // Usecase is not called
			expectedStatus: http.StatusBadRequest,
			expectedBody:   gin.H{"error": "Key: 'LoginReq.Password' Error:Field validation for 'Password' failed on the 'required' tag"},
		},
		{
			name:        "failure: invalid credentials",
			requestBody: gin.H{"email": "wrong@example.com", "password": "wrong-password"},
			mockLoginFunc: func(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.TokenPair, error) {
				return nil, usecase.ErrInvalidCredentials
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   gin.H{"error": "invalid email or password"},
		},
		{
			name:        "failure: token generation error is hidden",
			requestBody: gin.H{"email": "test@example.com", "password": "password123"},
			mockLoginFunc: func(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.TokenPair, error) {
				return nil, errors.New("failed to generate token: boom")
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   gin.H{"error": "invalid email or password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockAuthUsecase{LoginFunc: tt.mockLoginFunc}
			handler := NewAuthHandler(mockUC, nil)

			router := gin.New()
			router.POST("/login", handler.Login)

			w := postJSON(router, "/login", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var responseBody gin.H
			err := json.Unmarshal(w.Body.Bytes(), &responseBody)
			assert.NoError(t, err)

			if tt.expectedStatus == http.StatusBadRequest {
				assert.Contains(t, responseBody["error"], tt.expectedBody["error"])
			} else {
				assert.Equal(t, tt.expectedBody, responseBody)
			}
		})
	}
}

func TestAuthHandler_Login_PassesClientInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got usecase.ClientInfo
	mockUC := &mockAuthUsecase{
		LoginFunc: func(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.TokenPair, error) {
			got = client
			return testPair(), nil
		},
	}
	handler := NewAuthHandler(mockUC, nil)

	router := gin.New()
	router.POST("/login", handler.Login)

	data, _ := json.Marshal(gin.H{"email": "test@example.com", "password": "password123"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "dashboard/1.0")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dashboard/1.0", got.UserAgent)
	assert.NotEmpty(t, got.IPAddress)
}

func TestAuthHandler_Refresh(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		requestBody     gin.H
		mockRefreshFunc func(ctx context.Context, refreshToken string, client usecase.ClientInfo) (*usecase.TokenPair, error)
		expectedStatus  int
		expectedError   string
	}{
		{
			name:        "success: tokens rotated",
			requestBody: gin.H{"refresh_token": "old-token"},
			mockRefreshFunc: func(ctx context.Context, refreshToken string, client usecase.ClientInfo) (*usecase.TokenPair, error) {
				return testPair(), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:            "failure: missing token",
			requestBody:     gin.H{},
			mockRefreshFunc: nil,
			expectedStatus:  http.StatusBadRequest,
		},
		{
			name:        "failure: unknown token",
			requestBody: gin.H{"refresh_token": "unknown"},
			mockRefreshFunc: func(ctx context.Context, refreshToken string, client usecase.ClientInfo) (*usecase.TokenPair, error) {
				return nil, usecase.ErrInvalidRefreshToken
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "invalid refresh token",
		},
		{
			name:        "failure: revoked token reuse",
			requestBody: gin.H{"refresh_token": "stolen"},
			mockRefreshFunc: func(ctx context.Context, refreshToken string, client usecase.ClientInfo) (*usecase.TokenPair, error) {
				return nil, usecase.ErrSessionRevoked
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "invalid refresh token",
		},
		{
			name:        "failure: expired token",
			requestBody: gin.H{"refresh_token": "expired"},
			mockRefreshFunc: func(ctx context.Context, refreshToken string, client usecase.ClientInfo) (*usecase.TokenPair, error) {
				return nil, usecase.ErrSessionExpired
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "invalid refresh token",
		},
		{
			name:        "failure: storage error",
			requestBody: gin.H{"refresh_token": "any"},
			mockRefreshFunc: func(ctx context.Context, refreshToken string, client usecase.ClientInfo) (*usecase.TokenPair, error) {
				return nil, errors.New("db is down")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "refresh failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockAuthUsecase{RefreshFunc: tt.mockRefreshFunc}
			handler := NewAuthHandler(mockUC, nil)

			router := gin.New()
			router.POST("/refresh", handler.Refresh)

			w := postJSON(router, "/refresh", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				var responseBody gin.H
				err := json.Unmarshal(w.Body.Bytes(), &responseBody)
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedError, responseBody["error"])
			}
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success: revokes session and clears market credentials", func(t *testing.T) {
		var revoked string
		mockUC := &mockAuthUsecase{
			LogoutFunc: func(ctx context.Context, refreshToken string) error {
				revoked = refreshToken
				return nil
			},
		}
		market := &mockMarketCredentials{}
		handler := NewAuthHandler(mockUC, market)

		router := gin.New()
		router.POST("/logout", handler.Logout)

		w := postJSON(router, "/logout", gin.H{"refresh_token": "some-token"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"logged out"}`, w.Body.String())
		assert.Equal(t, "some-token", revoked)
		assert.Equal(t, 1, market.clearCalls)
	})

	t.Run("success: unknown token still returns 200", func(t *testing.T) {
		mockUC := &mockAuthUsecase{
			LogoutFunc: func(ctx context.Context, refreshToken string) error {
				return usecase.ErrSessionNotFound
			},
		}
		market := &mockMarketCredentials{}
		handler := NewAuthHandler(mockUC, market)

		router := gin.New()
		router.POST("/logout", handler.Logout)

		w := postJSON(router, "/logout", gin.H{"refresh_token": "unknown"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, market.clearCalls)
	})

	t.Run("failure: missing token", func(t *testing.T) {
		handler := NewAuthHandler(&mockAuthUsecase{}, nil)

		router := gin.New()
		router.POST("/logout", handler.Logout)

		w := postJSON(router, "/logout", gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("failure: storage error", func(t *testing.T) {
		mockUC := &mockAuthUsecase{
			LogoutFunc: func(ctx context.Context, refreshToken string) error {
				return errors.New("db is down")
			},
		}
		market := &mockMarketCredentials{}
		handler := NewAuthHandler(mockUC, market)

		router := gin.New()
		router.POST("/logout", handler.Logout)

		w := postJSON(router, "/logout", gin.H{"refresh_token": "any"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 0, market.clearCalls, "credentials should not be cleared on failure")
	})
}
