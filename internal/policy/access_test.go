package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mzhuravlev/supplyhub-backend/internal/models"
)

func TestCanViewRequest(t *testing.T) {
	clientID := uuid.New()
	supplierID := uuid.New()
	staffID := uuid.New()
	strangerID := uuid.New()

	published := &models.ServiceRequest{ClientID: clientID, Status: models.RequestStatusPublished}
	draft := &models.ServiceRequest{ClientID: clientID, Status: models.RequestStatusDraft}
	assigned := &models.ServiceRequest{
		ClientID:           clientID,
		Status:             models.RequestStatusInProgress,
		AssignedSupplierID: &supplierID,
		AssignedStaffID:    &staffID,
	}

	tests := []struct {
		name  string
		req   *models.ServiceRequest
		actor Actor
		want  bool
	}{
		{"админ видит всё", draft, Actor{ID: strangerID, Role: models.RoleAdmin}, true},
		{"клиент видит свою заявку", draft, Actor{ID: clientID, Role: models.RoleClient}, true},
		{"чужой клиент не видит", draft, Actor{ID: strangerID, Role: models.RoleClient}, false},
		{"поставщик видит опубликованную", published, Actor{ID: strangerID, Role: models.RoleSupplier}, true},
		{"поставщик не видит черновик", draft, Actor{ID: strangerID, Role: models.RoleSupplier}, false},
		{"назначенный поставщик видит in_progress", assigned, Actor{ID: supplierID, Role: models.RoleSupplier}, true},
		{"посторонний поставщик не видит in_progress", assigned, Actor{ID: strangerID, Role: models.RoleSupplier}, false},
		{"назначенный сотрудник видит", assigned, Actor{ID: staffID, Role: models.RoleStaff}, true},
		{"посторонний сотрудник не видит", assigned, Actor{ID: strangerID, Role: models.RoleStaff}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanViewRequest(tt.req, tt.actor))
		})
	}
}

func TestCanMutateRequest(t *testing.T) {
	clientID := uuid.New()
	req := &models.ServiceRequest{ClientID: clientID, Status: models.RequestStatusPublished}

	assert.True(t, CanMutateRequest(req, Actor{ID: uuid.New(), Role: models.RoleAdmin}))
	assert.True(t, CanMutateRequest(req, Actor{ID: clientID, Role: models.RoleClient}))
	assert.False(t, CanMutateRequest(req, Actor{ID: uuid.New(), Role: models.RoleClient}))
	assert.False(t, CanMutateRequest(req, Actor{ID: clientID, Role: models.RoleSupplier}))
	assert.False(t, CanMutateRequest(req, Actor{ID: clientID, Role: models.RoleStaff}))
}

func TestCanDeleteRequest(t *testing.T) {
	clientID := uuid.New()
	draft := &models.ServiceRequest{ClientID: clientID, Status: models.RequestStatusDraft}
	published := &models.ServiceRequest{ClientID: clientID, Status: models.RequestStatusPublished}

	assert.True(t, CanDeleteRequest(draft, Actor{ID: clientID, Role: models.RoleClient}))
	assert.False(t, CanDeleteRequest(published, Actor{ID: clientID, Role: models.RoleClient}))
	assert.True(t, CanDeleteRequest(published, Actor{ID: uuid.New(), Role: models.RoleAdmin}))
	assert.False(t, CanDeleteRequest(draft, Actor{ID: clientID, Role: models.RoleSupplier}))
}

func TestCanQuoteAndResolve(t *testing.T) {
	assert.True(t, CanQuote(Actor{Role: models.RoleSupplier}))
	assert.False(t, CanQuote(Actor{Role: models.RoleClient}))
	assert.False(t, CanQuote(Actor{Role: models.RoleAdmin}))
	assert.False(t, CanQuote(Actor{Role: models.RoleStaff}))

	assert.True(t, CanResolveQuotation(Actor{Role: models.RoleClient}))
	assert.True(t, CanResolveQuotation(Actor{Role: models.RoleAdmin}))
	assert.False(t, CanResolveQuotation(Actor{Role: models.RoleSupplier}))
	assert.False(t, CanResolveQuotation(Actor{Role: models.RoleStaff}))
}
