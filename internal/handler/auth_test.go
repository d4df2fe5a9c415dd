package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lumina-pos/api/internal/auth"
	"github.com/lumina-pos/api/internal/enum"
	"github.com/lumina-pos/api/internal/handler"
)

func newAuthRouter(t *testing.T) *chi.Mux {
	t.Helper()
	users := auth.NewDirectory()
	if _, err := users.Add("casey@lumina.test", "Casey", enum.UserRoleCashier, "hunter22"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	r := chi.NewRouter()
	handler.NewAuthHandler(users, testJWTSecret).RegisterRoutes(r)
	return r
}

func TestLogin(t *testing.T) {
	router := newAuthRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/auth/login",
		map[string]string{"email": "casey@lumina.test", "password": "hunter22"}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeBody(t, rr)
	if resp["access_token"] == "" || resp["access_token"] == nil {
		t.Error("expected access_token in response")
	}
	if resp["refresh_token"] == "" || resp["refresh_token"] == nil {
		t.Error("expected refresh_token in response")
	}
	user, ok := resp["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected user object, got %v", resp["user"])
	}
	if user["role"] != enum.UserRoleCashier {
		t.Errorf("expected CASHIER role, got %v", user["role"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := newAuthRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/auth/login",
		map[string]string{"email": "casey@lumina.test", "password": "wrong"}, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	router := newAuthRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/auth/login",
		map[string]string{"email": "nobody@lumina.test", "password": "hunter22"}, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestLoginMissingFields(t *testing.T) {
	router := newAuthRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/auth/login",
		map[string]string{"email": "casey@lumina.test"}, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestRefresh(t *testing.T) {
	router := newAuthRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/auth/login",
		map[string]string{"email": "casey@lumina.test", "password": "hunter22"}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rr.Code)
	}
	refreshToken, _ := decodeBody(t, rr)["refresh_token"].(string)
	if refreshToken == "" {
		t.Fatal("expected refresh token from login")
	}

	rr = doRequest(t, router, http.MethodPost, "/auth/refresh",
		map[string]string{"refresh_token": refreshToken}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeBody(t, rr); resp["access_token"] == "" || resp["access_token"] == nil {
		t.Error("expected fresh access_token")
	}
}

func TestRefreshInvalidToken(t *testing.T) {
	router := newAuthRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/auth/refresh",
		map[string]string{"refresh_token": "not-a-token"}, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
