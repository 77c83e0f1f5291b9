package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sns-backend/internal/auth"
	"sns-backend/internal/mocks"
	"sns-backend/internal/models"
	"sns-backend/internal/repositories"
)

func setupAuthRouter(users *mocks.UserRepositoryMock, tokens *auth.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewAuthHandler(users, tokens)
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	return r
}

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", time.Minute)
}

func TestRegisterSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(users, testTokens())

	users.On("GetByUsername", mock.Anything, "alice").Return(models.User{}, repositories.ErrUserNotFound).Once()
	users.On("GetByEmail", mock.Anything, "alice@example.com").Return(models.User{}, repositories.ErrUserNotFound).Once()
	users.On("Create", mock.Anything, "alice", "alice@example.com", mock.AnythingOfType("string"), (*string)(nil)).
		Return(models.User{ID: 1, Username: "alice", Email: "alice@example.com"}, nil).Once()

	body := bytes.NewBufferString(`{"username":"alice","email":"alice@example.com","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(1), resp.ID)
	users.AssertExpectations(t)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(users, testTokens())

	users.On("GetByUsername", mock.Anything, "alice").Return(models.User{ID: 1, Username: "alice"}, nil).Once()

	body := bytes.NewBufferString(`{"username":"alice","email":"other@example.com","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterRejectsBadPayload(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(users, testTokens())

	for _, body := range []string{
		`{}`,
		`{"username":"al","email":"a@b.com","password":"password123"}`,
		`{"username":"alice","email":"not-an-email","password":"password123"}`,
		`{"username":"alice","email":"a@b.com","password":"short"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body=%s", body)
	}
}

func TestLoginSuccess(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	tokens := testTokens()
	router := setupAuthRouter(users, tokens)

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	users.On("GetByUsername", mock.Anything, "alice").
		Return(models.User{ID: 9, Username: "alice", HashedPassword: hash}, nil).Once()

	body := bytes.NewBufferString(`{"username":"alice","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "bearer", resp.TokenType)

	userID, err := tokens.Validate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(9), userID)
}

func TestLoginWrongPassword(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(users, testTokens())

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	users.On("GetByUsername", mock.Anything, "alice").
		Return(models.User{ID: 9, HashedPassword: hash}, nil).Once()

	body := bytes.NewBufferString(`{"username":"alice","password":"wrong-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	router := setupAuthRouter(users, testTokens())

	users.On("GetByUsername", mock.Anything, "ghost").
		Return(models.User{}, repositories.ErrUserNotFound).Once()

	body := bytes.NewBufferString(`{"username":"ghost","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
