package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lumina-pos/api/internal/enum"
)

func requestShortage(t *testing.T, router *chi.Mux, amount string) string {
	t.Helper()
	rr := doRequest(t, router, http.MethodPost, "/cash/requests", map[string]interface{}{
		"type":   enum.CashTypeShortage,
		"amount": amount,
		"reason": "Drawer count came up short at close",
	}, tokenFor(t, enum.UserRoleCashier))
	if rr.Code != http.StatusCreated {
		t.Fatalf("request cash adjustment: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	id, _ := decodeBody(t, rr)["id"].(string)
	if id == "" {
		t.Fatal("expected request id")
	}
	return id
}

func TestRequestCashAdjustment(t *testing.T) {
	router, _ := newTestRouter(t)

	requestShortage(t, router, "12.50")

	rr := doRequest(t, router, http.MethodGet, "/cash/requests?status="+enum.RequestStatusPending, nil, tokenFor(t, enum.UserRoleAdmin))
	resp := decodeBody(t, rr)
	if reqs, _ := resp["requests"].([]interface{}); len(reqs) != 1 {
		t.Fatalf("expected 1 pending request, got %v", resp["requests"])
	}
}

func TestRequestCashAdjustmentInvalidType(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/cash/requests", map[string]interface{}{
		"type":   "MYSTERY",
		"amount": "5.00",
		"reason": "Unknown",
	}, tokenFor(t, enum.UserRoleCashier))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRequestCashAdjustmentForbiddenForKitchen(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/cash/requests", map[string]interface{}{
		"type":   enum.CashTypeOverage,
		"amount": "3.00",
		"reason": "Extra bill in drawer",
	}, tokenFor(t, enum.UserRoleKitchen))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestReviewCashAdjustmentApprove(t *testing.T) {
	router, _ := newTestRouter(t)
	reqID := requestShortage(t, router, "12.50")

	rr := doRequest(t, router, http.MethodPost, "/cash/requests/"+reqID+"/review",
		map[string]interface{}{"approve": true, "note": "Verified against the register tape"}, tokenFor(t, enum.UserRoleAdmin))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeBody(t, rr); resp["status"] != enum.RequestStatusApproved {
		t.Errorf("expected APPROVED, got %v", resp["status"])
	}

	rr = doRequest(t, router, http.MethodGet, "/cash/adjustments", nil, tokenFor(t, enum.UserRoleAdmin))
	resp := decodeBody(t, rr)
	adjustments, _ := resp["adjustments"].([]interface{})
	if len(adjustments) != 1 {
		t.Fatalf("expected 1 adjustment, got %v", resp["adjustments"])
	}
	adj := adjustments[0].(map[string]interface{})
	if adj["type"] != enum.CashTypeShortage {
		t.Errorf("expected SHORTAGE, got %v", adj["type"])
	}
	if adj["amount"] != "12.5" && adj["amount"] != "12.50" {
		t.Errorf("expected amount 12.50, got %v", adj["amount"])
	}
}

func TestReviewCashAdjustmentReject(t *testing.T) {
	router, _ := newTestRouter(t)
	reqID := requestShortage(t, router, "4.00")

	rr := doRequest(t, router, http.MethodPost, "/cash/requests/"+reqID+"/review",
		map[string]interface{}{"approve": false, "note": "Recount matched"}, tokenFor(t, enum.UserRoleAdmin))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeBody(t, rr); resp["status"] != enum.RequestStatusRejected {
		t.Errorf("expected REJECTED, got %v", resp["status"])
	}

	rr = doRequest(t, router, http.MethodGet, "/cash/adjustments", nil, tokenFor(t, enum.UserRoleAdmin))
	resp := decodeBody(t, rr)
	if adjustments, _ := resp["adjustments"].([]interface{}); len(adjustments) != 0 {
		t.Errorf("expected no adjustments after rejection, got %v", resp["adjustments"])
	}
}

func TestReviewCashAdjustmentForbiddenForCashier(t *testing.T) {
	router, _ := newTestRouter(t)
	reqID := requestShortage(t, router, "4.00")

	rr := doRequest(t, router, http.MethodPost, "/cash/requests/"+reqID+"/review",
		map[string]interface{}{"approve": true}, tokenFor(t, enum.UserRoleCashier))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCashAuditTrail(t *testing.T) {
	router, _ := newTestRouter(t)
	reqID := requestShortage(t, router, "4.00")

	rr := doRequest(t, router, http.MethodPost, "/cash/requests/"+reqID+"/review",
		map[string]interface{}{"approve": true}, tokenFor(t, enum.UserRoleAdmin))
	if rr.Code != http.StatusOK {
		t.Fatalf("review: expected 200, got %d", rr.Code)
	}

	rr = doRequest(t, router, http.MethodGet, "/cash/audit", nil, tokenFor(t, enum.UserRoleAdmin))
	resp := decodeBody(t, rr)
	entries, _ := resp["entries"].([]interface{})
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %v", resp["entries"])
	}
	// Newest first.
	if first := entries[0].(map[string]interface{}); first["action"] != enum.CashAuditApproved {
		t.Errorf("expected APPROVED first, got %v", first["action"])
	}
}
