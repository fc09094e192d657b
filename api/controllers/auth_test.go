package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/internal/auth"
	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/logger"
)

type stubAuthService struct {
	auth.Service
	registered *auth.RegisterInput
	session    *auth.Session
	loginErr   error
}

func (s *stubAuthService) Register(_ context.Context, input auth.RegisterInput) (*auth.Session, error) {
	s.registered = &input
	return s.session, nil
}

func (s *stubAuthService) Login(_ context.Context, _ auth.LoginInput) (*auth.Session, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.session, nil
}

func testControllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func testSession() *auth.Session {
	return &auth.Session{
		User: &models.User{
			ID:           uuid.New(),
			Email:        "ana@example.com",
			PasswordHash: "secret-hash",
			Name:         "Ana",
			Role:         enums.UserRoleCustomer,
		},
		AccessToken: "token-123",
	}
}

func TestAuthRegisterReturnsSessionWithoutHash(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{session: testSession()}
	handler := AuthRegister(svc, testControllerLogger())

	body := `{"name":"Ana","email":"ana@example.com","password":"supersegura"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if svc.registered == nil || svc.registered.Email != "ana@example.com" {
		t.Fatalf("register input not forwarded: %+v", svc.registered)
	}
	if strings.Contains(rec.Body.String(), "secret-hash") {
		t.Fatal("response leaked the password hash")
	}

	var envelope struct {
		Data sessionResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "token-123" {
		t.Fatalf("access token = %q", envelope.Data.AccessToken)
	}
	if envelope.Data.User.Email != "ana@example.com" {
		t.Fatalf("user email = %q", envelope.Data.User.Email)
	}
}

func TestAuthRegisterRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	handler := AuthRegister(&stubAuthService{session: testSession()}, testControllerLogger())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"name":`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAuthLoginMapsUnauthorized(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "credenciais inválidas")}
	handler := AuthLogin(svc, testControllerLogger())

	body := `{"email":"ana@example.com","password":"errada-mas-longa"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), "credenciais inválidas") {
		t.Fatalf("body %s missing safe message", rec.Body.String())
	}
}
