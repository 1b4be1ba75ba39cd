package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"loancore/internal/adapters/persistence/models"
	"loancore/internal/config"
	"loancore/internal/pkg/password"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type userRepoMock struct {
	users  map[uint]*models.User
	nextID uint
}

func newUserRepoMock() *userRepoMock {
	return &userRepoMock{users: make(map[uint]*models.User)}
}

func (m *userRepoMock) Create(_ context.Context, user *models.User) error {
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	return nil
}

func (m *userRepoMock) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *userRepoMock) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *userRepoMock) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(context.Background(), username)
	return err == nil, nil
}

func (m *userRepoMock) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *userRepoMock) ExistsByCustomerID(_ context.Context, customerID uint) (bool, error) {
	for _, u := range m.users {
		if u.CustomerID != nil && *u.CustomerID == customerID {
			return true, nil
		}
	}
	return false, nil
}

type refreshTokenRepoMock struct {
	tokens map[string]*models.RefreshToken
	nextID uint
}

func newRefreshTokenRepoMock() *refreshTokenRepoMock {
	return &refreshTokenRepoMock{tokens: make(map[string]*models.RefreshToken)}
}

func (m *refreshTokenRepoMock) Create(_ context.Context, token *models.RefreshToken) error {
	m.nextID++
	token.ID = m.nextID
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *refreshTokenRepoMock) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	if t, ok := m.tokens[tokenHash]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *refreshTokenRepoMock) Revoke(_ context.Context, id uint) error {
	for _, t := range m.tokens {
		if t.ID == id {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *refreshTokenRepoMock) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	if t, ok := m.tokens[tokenHash]; ok {
		now := time.Now()
		t.RevokedAt = &now
	}
	return nil
}

func (m *refreshTokenRepoMock) RevokeAllByUserID(_ context.Context, userID uint) error {
	for _, t := range m.tokens {
		if t.UserID == userID {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *refreshTokenRepoMock) DeleteExpired(_ context.Context) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func newAuthServiceForTest() (*AuthService, *userRepoMock, *refreshTokenRepoMock, *customerRepoMock) {
	userRepo := newUserRepoMock()
	tokenRepo := newRefreshTokenRepoMock()
	customerRepo := newCustomerRepoMock()
	svc := NewAuthService(userRepo, tokenRepo, customerRepo, testConfig())
	return svc, userRepo, tokenRepo, customerRepo
}

func TestRegister(t *testing.T) {
	svc, userRepo, tokenRepo, customerRepo := newAuthServiceForTest()
	customerRepo.customers[1] = &models.Customer{ID: 1, Name: "John", CreditLimit: decimal.NewFromInt(1000)}

	result, err := svc.Register(context.Background(), &RegisterInput{
		CustomerID: 1,
		Username:   "john",
		Email:      "john@example.com",
		Password:   "password123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("tokens should be issued on registration")
	}
	if result.User.Role != "CUSTOMER" {
		t.Errorf("role %q, want CUSTOMER", result.User.Role)
	}

	user := userRepo.users[result.User.ID]
	if user == nil {
		t.Fatal("user not persisted")
	}
	if user.Password == "password123" {
		t.Error("password stored in plaintext")
	}
	if user.CustomerID == nil || *user.CustomerID != 1 {
		t.Errorf("customer link %v, want 1", user.CustomerID)
	}
	if len(tokenRepo.tokens) != 1 {
		t.Errorf("stored %d refresh tokens, want 1", len(tokenRepo.tokens))
	}
}

func TestRegisterCustomerNotFound(t *testing.T) {
	svc, _, _, _ := newAuthServiceForTest()

	_, err := svc.Register(context.Background(), &RegisterInput{
		CustomerID: 99,
		Username:   "john",
		Email:      "john@example.com",
		Password:   "password123",
	})
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestRegisterCustomerAlreadyLinked(t *testing.T) {
	svc, userRepo, _, customerRepo := newAuthServiceForTest()
	customerRepo.customers[1] = &models.Customer{ID: 1}
	customerID := uint(1)
	userRepo.Create(context.Background(), &models.User{CustomerID: &customerID, Username: "first"})

	_, err := svc.Register(context.Background(), &RegisterInput{
		CustomerID: 1,
		Username:   "second",
		Email:      "second@example.com",
		Password:   "password123",
	})
	if !errors.Is(err, ErrCustomerAlreadyLinked) {
		t.Fatalf("expected ErrCustomerAlreadyLinked, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, userRepo, _, customerRepo := newAuthServiceForTest()
	customerRepo.customers[1] = &models.Customer{ID: 1}
	customerRepo.customers[2] = &models.Customer{ID: 2}
	otherCustomer := uint(2)
	userRepo.Create(context.Background(), &models.User{CustomerID: &otherCustomer, Username: "john"})

	_, err := svc.Register(context.Background(), &RegisterInput{
		CustomerID: 1,
		Username:   "john",
		Email:      "new@example.com",
		Password:   "password123",
	})
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _, customerRepo := newAuthServiceForTest()
	customerRepo.customers[1] = &models.Customer{ID: 1}

	if _, err := svc.Register(context.Background(), &RegisterInput{
		CustomerID: 1,
		Username:   "john",
		Email:      "john@example.com",
		Password:   "password123",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := svc.Login(context.Background(), &LoginInput{Username: "john", Password: "password123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("access token missing")
	}

	_, err = svc.Login(context.Background(), &LoginInput{Username: "john", Password: "wrong-password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	_, err = svc.Login(context.Background(), &LoginInput{Username: "nobody", Password: "password123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	svc, userRepo, _, _ := newAuthServiceForTest()
	hash, _ := password.Hash("password123")
	userRepo.Create(context.Background(), &models.User{Username: "john", Password: hash, IsActive: false})

	_, err := svc.Login(context.Background(), &LoginInput{Username: "john", Password: "password123"})
	if !errors.Is(err, ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, _, tokenRepo, customerRepo := newAuthServiceForTest()
	customerRepo.customers[1] = &models.Customer{ID: 1}

	registered, err := svc.Register(context.Background(), &RegisterInput{
		CustomerID: 1,
		Username:   "john",
		Email:      "john@example.com",
		Password:   "password123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), registered.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.RefreshToken == registered.RefreshToken {
		t.Error("refresh must rotate the token")
	}

	// The old token is revoked by the rotation
	oldHash := password.HashToken(registered.RefreshToken)
	if stored := tokenRepo.tokens[oldHash]; stored == nil || !stored.IsRevoked() {
		t.Error("old refresh token should be revoked")
	}
	if _, err := svc.RefreshToken(context.Background(), registered.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked on reuse, got %v", err)
	}
}

func TestRefreshTokenInvalid(t *testing.T) {
	svc, _, _, _ := newAuthServiceForTest()

	_, err := svc.RefreshToken(context.Background(), "not-a-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
