// Package policy содержит чистые проверки доступа к заявкам и котировкам.
// Никакого I/O: каждое решение — полная функция от роли, идентификатора
// актора и владельцев/назначенных целевой сущности, что делает проверки
// детерминированно тестируемыми.
package policy

import (
	"github.com/google/uuid"

	"github.com/mzhuravlev/supplyhub-backend/internal/models"
)

// Actor — аутентифицированный пользователь в момент проверки.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

// CanViewRequest разрешает чтение заявки администратору, владельцу,
// назначенному поставщику или сотруднику, а также любому поставщику,
// пока заявка опубликована (открытая витрина маркетплейса).
func CanViewRequest(req *models.ServiceRequest, actor Actor) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleClient:
		return req.ClientID == actor.ID
	case models.RoleSupplier:
		if req.AssignedSupplierID != nil && *req.AssignedSupplierID == actor.ID {
			return true
		}
		return req.Status == models.RequestStatusPublished
	case models.RoleStaff:
		return req.AssignedStaffID != nil && *req.AssignedStaffID == actor.ID
	default:
		return false
	}
}

// CanMutateRequest разрешает изменение полей заявки администратору
// и владеющему клиенту.
func CanMutateRequest(req *models.ServiceRequest, actor Actor) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleClient:
		return req.ClientID == actor.ID
	case models.RoleSupplier, models.RoleStaff:
		return false
	default:
		return false
	}
}

// CanDeleteRequest разрешает удаление администратору, а владеющему
// клиенту — только пока заявка в черновике. Независимо от роли удаление
// дополнительно блокируется хранилищем при наличии котировок.
func CanDeleteRequest(req *models.ServiceRequest, actor Actor) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleClient:
		return req.ClientID == actor.ID && req.Status == models.RequestStatusDraft
	case models.RoleSupplier, models.RoleStaff:
		return false
	default:
		return false
	}
}

// CanQuote разрешает подачу котировок только поставщикам.
func CanQuote(actor Actor) bool {
	switch actor.Role {
	case models.RoleSupplier:
		return true
	case models.RoleClient, models.RoleStaff, models.RoleAdmin:
		return false
	default:
		return false
	}
}

// CanResolveQuotation разрешает принимать и отклонять котировки
// клиентам и администраторам.
func CanResolveQuotation(actor Actor) bool {
	switch actor.Role {
	case models.RoleClient, models.RoleAdmin:
		return true
	case models.RoleSupplier, models.RoleStaff:
		return false
	default:
		return false
	}
}
