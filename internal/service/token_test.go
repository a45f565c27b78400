package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mzhuravlev/supplyhub-backend/internal/models"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	manager := NewTokenManager("access-secret-for-tests", "refresh-secret-for-tests",
		15*time.Minute, 24*time.Hour)

	user := &models.User{ID: uuid.New(), Role: models.RoleSupplier}

	pair, accessExp, refreshExp, err := manager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось выпустить пару токенов: %v", err)
	}
	if !refreshExp.After(accessExp) {
		t.Fatal("refresh токен должен жить дольше access токена")
	}

	userID, role, err := manager.ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("access токен не распарсился: %v", err)
	}
	if userID != user.ID || role != models.RoleSupplier {
		t.Fatalf("клеймы не совпадают: %s / %s", userID, role)
	}

	claims, err := manager.ParseRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh токен не распарсился: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Fatalf("subject не совпадает: %s", claims.Subject)
	}
	if claims.ID == "" {
		t.Fatal("refresh токен должен нести случайный ID")
	}
}

func TestTokenManager_RejectsForeignTokens(t *testing.T) {
	manager := NewTokenManager("access-secret-for-tests", "refresh-secret-for-tests",
		15*time.Minute, 24*time.Hour)
	foreign := NewTokenManager("other-access-secret-here", "other-refresh-secret-xx",
		15*time.Minute, 24*time.Hour)

	user := &models.User{ID: uuid.New(), Role: models.RoleClient}
	pair, _, _, err := foreign.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось выпустить пару токенов: %v", err)
	}

	if _, _, err := manager.ParseAccess(pair.AccessToken); err == nil {
		t.Fatal("чужой access токен должен отклоняться")
	}
	if _, err := manager.ParseRefresh(pair.RefreshToken); err == nil {
		t.Fatal("чужой refresh токен должен отклоняться")
	}

	// Access и refresh подписаны разными секретами.
	if _, err := manager.ParseRefresh(pair.AccessToken); err == nil {
		t.Fatal("access токен не должен приниматься как refresh")
	}
}
