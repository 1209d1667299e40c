package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func TestAuthController_SignUp(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		fakeErr       error
		wantStatus    int
		wantErrSubstr string
	}{
		{name: "created", body: `{"email":" Ada@Example.com ","password":"secret1","name":"Ada"}`, wantStatus: http.StatusCreated},
		{name: "bad email", body: `{"email":"ada","password":"secret1","name":"Ada"}`, wantStatus: http.StatusBadRequest, wantErrSubstr: "invalid email format"},
		{name: "short password", body: `{"email":"ada@example.com","password":"123","name":"Ada"}`, wantStatus: http.StatusBadRequest, wantErrSubstr: "at least 6"},
		{name: "email taken", body: `{"email":"ada@example.com","password":"secret1","name":"Ada"}`, fakeErr: domain.ErrDuplicateEmail, wantStatus: http.StatusConflict, wantErrSubstr: "already in use"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger, &fakeUserService{err: tt.fakeErr})
			req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.SignUp(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantErrSubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantErrSubstr)
				return
			}
			var user domain.User
			decodeData(t, envelope, &user)
			assert.Equal(t, "ada@example.com", user.Email)
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	t.Run("token issued", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{token: "tok", user: &domain.User{ID: testUserID, PasswordHash: "secret-hash"}})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"ada@example.com","password":"secret1"}`))
		rr := httptest.NewRecorder()

		ctrl.Login(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), "secret-hash")
		var resp LoginResponse
		decodeData(t, decodeEnvelope(t, rr), &resp)
		assert.Equal(t, "tok", resp.Token)
		assert.Equal(t, "Bearer", resp.TokenType)
	})

	t.Run("bad credentials", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{err: domain.ErrInvalidCredentials})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"ada@example.com","password":"nope12"}`))
		rr := httptest.NewRecorder()

		ctrl.Login(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "unauthorized", decodeEnvelope(t, rr).Error.Code)
	})
}
