package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/teomanager/teomanager-backend/pkg/auth"
	"github.com/teomanager/teomanager-backend/pkg/auth/session"
	"github.com/teomanager/teomanager-backend/pkg/config"
	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/security"
)

type stubAccountRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byEmail: map[string]*models.User{}, byID: map[uuid.UUID]*models.User{}}
}

func (s *stubAccountRepo) add(user *models.User) {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
}

func (s *stubAccountRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAccountRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if user, ok := s.byID[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

type stubSessionManager struct {
	refreshByAccessID map[string]string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{refreshByAccessID: map[string]string{}}
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.refreshByAccessID[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.refreshByAccessID[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.refreshByAccessID, oldAccessID)
	newAccessID := session.NewAccessID()
	token := "refresh-" + newAccessID
	s.refreshByAccessID[newAccessID] = token
	return newAccessID, token, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(s.refreshByAccessID, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "teomanager-test",
		ExpirationMinutes: 15,
		SessionTTLMinutes: 60,
	}
}

type authTestSetup struct {
	service  Service
	repo     *stubAccountRepo
	sessions *stubSessionManager
}

func newAuthTestSetup(t *testing.T) *authTestSetup {
	t.Helper()
	repo := newStubAccountRepo()
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		AccountRepo:    repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return &authTestSetup{service: svc, repo: repo, sessions: sessions}
}

func seedUser(t *testing.T, repo *stubAccountRepo, email, password string, accountType enums.AccountType) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Teo",
		LastName:     "Delgado",
		AccountType:  accountType,
		IsActive:     true,
	}
	repo.add(user)
	return user
}

func TestLogin_Success(t *testing.T) {
	setup := newAuthTestSetup(t)
	user := seedUser(t, setup.repo, "owner@example.com", "sup3r-secret", enums.AccountTypeCompany)

	resp, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    " Owner@Example.com ",
		Password: "sup3r-secret",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
	if user.LastLoginAt == nil {
		t.Fatal("expected last login to be recorded")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != user.ID || claims.AccountType != enums.AccountTypeCompany {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, ok := setup.sessions.refreshByAccessID[claims.ID]; !ok {
		t.Fatal("expected session keyed by jti")
	}
}

func TestLogin_Failures(t *testing.T) {
	setup := newAuthTestSetup(t)
	inactive := seedUser(t, setup.repo, "inactive@example.com", "sup3r-secret", enums.AccountTypeConsumer)
	inactive.IsActive = false
	seedUser(t, setup.repo, "ok@example.com", "sup3r-secret", enums.AccountTypeConsumer)

	cases := map[string]LoginRequest{
		"unknown email":  {Email: "ghost@example.com", Password: "whatever"},
		"wrong password": {Email: "ok@example.com", Password: "nope"},
		"inactive user":  {Email: "inactive@example.com", Password: "sup3r-secret"},
		"blank email":    {Email: "  ", Password: "sup3r-secret"},
	}
	for name, req := range cases {
		_, err := setup.service.Login(context.Background(), req)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("%s: expected unauthorized, got %v", name, err)
		}
	}
}

func TestRefresh_RotatesSession(t *testing.T) {
	setup := newAuthTestSetup(t)
	seedUser(t, setup.repo, "owner@example.com", "sup3r-secret", enums.AccountTypeCompany)
	ctx := context.Background()

	login, err := setup.service.Login(ctx, LoginRequest{Email: "owner@example.com", Password: "sup3r-secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := setup.service.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Fatal("expected rotated token pair")
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	// The old pair is consumed; replaying it must fail.
	_, err = setup.service.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on replay, got %v", err)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	setup := newAuthTestSetup(t)
	seedUser(t, setup.repo, "owner@example.com", "sup3r-secret", enums.AccountTypeConsumer)
	ctx := context.Background()

	login, err := setup.service.Login(ctx, LoginRequest{Email: "owner@example.com", Password: "sup3r-secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	if err := setup.service.Logout(ctx, claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := setup.sessions.refreshByAccessID[claims.ID]; ok {
		t.Fatal("expected session removed")
	}

	if err := setup.service.Logout(ctx, " "); err == nil {
		t.Fatal("expected validation error for blank access id")
	}
}
