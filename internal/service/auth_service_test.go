package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mzhuravlev/supplyhub-backend/internal/models"
	"github.com/mzhuravlev/supplyhub-backend/internal/pkg/apperror"
	"github.com/mzhuravlev/supplyhub-backend/internal/repository"
)

// mockAuthRepository хранит пользователей и сессии в map.
type mockAuthRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
	sessions     map[string]*models.Session
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
		sessions:     make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) Create(ctx context.Context, user *models.User) error {
	if _, exists := m.usersByEmail[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	user.ID = uuid.New()
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockAuthRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	if session, ok := m.sessions[refreshToken]; ok {
		return session, nil
	}
	return nil, repository.ErrSessionNotFound
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func newAuthService() (*AuthService, *mockAuthRepository) {
	repo := newMockAuthRepository()
	tokens := NewTokenManager("access-secret-for-tests", "refresh-secret-for-tests",
		15*time.Minute, 7*24*time.Hour)
	return NewAuthService(repo, tokens), repo
}

func TestAuthService_Register(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "client@example.com",
		Password: "Passw0rd",
		Role:     "client",
	}, nil)
	if err != nil {
		t.Fatalf("регистрация не прошла: %v", err)
	}
	if result.User.Username != "client" {
		t.Fatalf("username должен выводиться из email, получили %q", result.User.Username)
	}
	if result.TokenPair.AccessToken == "" || result.TokenPair.RefreshToken == "" {
		t.Fatal("регистрация должна выдавать пару токенов")
	}
	if _, ok := repo.sessions[result.TokenPair.RefreshToken]; !ok {
		t.Fatal("сессия должна быть сохранена")
	}

	// Повторная регистрация того же email.
	_, err = svc.Register(ctx, RegisterInput{
		Email:    "client@example.com",
		Password: "Passw0rd",
		Role:     "client",
	}, nil)
	if apperror.CodeOf(err) != apperror.ErrCodeConflict {
		t.Fatalf("ожидался конфликт email, получили %v", err)
	}

	// Самостоятельная регистрация staff запрещена.
	_, err = svc.Register(ctx, RegisterInput{
		Email:    "staff@example.com",
		Password: "Passw0rd",
		Role:     "staff",
	}, nil)
	if apperror.CodeOf(err) != apperror.ErrCodeForbidden {
		t.Fatalf("ожидался запрет роли staff, получили %v", err)
	}

	// Слабый пароль.
	_, err = svc.Register(ctx, RegisterInput{
		Email:    "weak@example.com",
		Password: "password",
		Role:     "client",
	}, nil)
	if apperror.CodeOf(err) != apperror.ErrCodeValidation {
		t.Fatalf("ожидалась ошибка валидации пароля, получили %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Email:    "supplier@example.com",
		Password: "Passw0rd",
		Role:     "supplier",
	}, nil); err != nil {
		t.Fatalf("регистрация не прошла: %v", err)
	}

	result, err := svc.Login(ctx, LoginInput{Email: "supplier@example.com", Password: "Passw0rd"}, nil)
	if err != nil {
		t.Fatalf("вход не прошёл: %v", err)
	}
	if result.User.Role != models.RoleSupplier {
		t.Fatalf("ожидалась роль supplier, получили %s", result.User.Role)
	}

	// Неверный пароль и неизвестный email дают одинаковую ошибку.
	_, err = svc.Login(ctx, LoginInput{Email: "supplier@example.com", Password: "Wrong0rd"}, nil)
	if apperror.CodeOf(err) != apperror.ErrCodeUnauthorized {
		t.Fatalf("ожидался отказ по паролю, получили %v", err)
	}
	_, err = svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "Passw0rd"}, nil)
	if apperror.CodeOf(err) != apperror.ErrCodeUnauthorized {
		t.Fatalf("ожидался отказ по email, получили %v", err)
	}
}

func TestAuthService_LoginBlocked(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "blocked@example.com",
		Password: "Passw0rd",
		Role:     "client",
	}, nil)
	if err != nil {
		t.Fatalf("регистрация не прошла: %v", err)
	}
	repo.usersByID[result.User.ID].IsActive = false

	_, err = svc.Login(ctx, LoginInput{Email: "blocked@example.com", Password: "Passw0rd"}, nil)
	if apperror.CodeOf(err) != apperror.ErrCodeForbidden {
		t.Fatalf("заблокированный аккаунт должен получать отказ, получили %v", err)
	}
}

func TestAuthService_RefreshRotatesSession(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "rotate@example.com",
		Password: "Passw0rd",
		Role:     "client",
	}, nil)
	if err != nil {
		t.Fatalf("регистрация не прошла: %v", err)
	}

	oldToken := result.TokenPair.RefreshToken
	pair, err := svc.Refresh(ctx, oldToken, nil)
	if err != nil {
		t.Fatalf("refresh не прошёл: %v", err)
	}
	if pair.RefreshToken == oldToken {
		t.Fatal("refresh должен выдавать новый токен")
	}
	if _, ok := repo.sessions[oldToken]; ok {
		t.Fatal("старая сессия должна быть удалена")
	}

	// Повторное использование отозванного токена.
	_, err = svc.Refresh(ctx, oldToken, nil)
	if apperror.CodeOf(err) != apperror.ErrCodeUnauthorized {
		t.Fatalf("отозванный токен должен отклоняться, получили %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "logout@example.com",
		Password: "Passw0rd",
		Role:     "client",
	}, nil)
	if err != nil {
		t.Fatalf("регистрация не прошла: %v", err)
	}

	if err := svc.Logout(ctx, result.TokenPair.RefreshToken); err != nil {
		t.Fatalf("logout не прошёл: %v", err)
	}
	if len(repo.sessions) != 0 {
		t.Fatal("logout должен удалять сессию")
	}
}
