package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mzhuravlev/supplyhub-backend/internal/models"
)

func TestQuotationHandler_CreateQuotation_ClientForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withActor(models.RoleClient))
	handler := &QuotationHandler{negotiation: nil, requests: nil}
	r.POST("/requests/:id/quotations", handler.CreateQuotation)

	requestID := uuid.New()
	body := strings.NewReader(`{"amount":100}`)
	req, _ := http.NewRequest("POST", "/requests/"+requestID.String()+"/quotations", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestQuotationHandler_ResolveQuotation_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &QuotationHandler{negotiation: nil, requests: nil}
	r.POST("/requests/:id/quotations/:quotationId/resolve", handler.ResolveQuotation)

	requestID := uuid.New()
	quotationID := uuid.New()
	req, _ := http.NewRequest("POST",
		"/requests/"+requestID.String()+"/quotations/"+quotationID.String()+"/resolve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQuotationHandler_ResolveQuotation_SupplierForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withActor(models.RoleSupplier))
	handler := &QuotationHandler{negotiation: nil, requests: nil}
	r.POST("/requests/:id/quotations/:quotationId/resolve", handler.ResolveQuotation)

	requestID := uuid.New()
	quotationID := uuid.New()
	body := strings.NewReader(`{"status":"accepted"}`)
	req, _ := http.NewRequest("POST",
		"/requests/"+requestID.String()+"/quotations/"+quotationID.String()+"/resolve", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestQuotationHandler_CreateQuotation_InvalidRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withActor(models.RoleSupplier))
	handler := &QuotationHandler{negotiation: nil, requests: nil}
	r.POST("/requests/:id/quotations", handler.CreateQuotation)

	body := strings.NewReader(`{"amount":100}`)
	req, _ := http.NewRequest("POST", "/requests/invalid-uuid/quotations", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
