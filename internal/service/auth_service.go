package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"scriptaffiliator/internal/model"
	"scriptaffiliator/internal/repository"
	"scriptaffiliator/internal/ws"
	"scriptaffiliator/pkg/jwt"
	"scriptaffiliator/pkg/supabase"
	"scriptaffiliator/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrRegisterFields     = errors.New("email, password and full name are required")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrLoginFields        = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrProviderRequired   = errors.New("provider is required")
	ErrOAuthUnavailable   = errors.New("oauth login is not configured")
	ErrOAuthExchange      = errors.New("auth code exchange failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionRevoked     = errors.New("session revoked")
)

const minPasswordLength = 6

// IdentityProvider is the managed OAuth endpoint; *supabase.Client
// implements it.
type IdentityProvider interface {
	AuthorizeURL(provider, redirectTo, challenge string) (string, error)
	ExchangeCode(code, verifier string) (*supabase.AuthUser, error)
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required"`
}

// Session is an issued session token. Only the view is sent to clients.
type Session struct {
	Token string
	View  SessionView
}

type SessionView struct {
	User      model.UserResponse `json:"user"`
	ExpiresAt time.Time          `json:"expires_at"`
}

type AuthService interface {
	Register(req *RegisterRequest) (*model.User, error)
	Login(email, password string) (*Session, error)
	// OAuthURL returns the provider's authorize URL and the PKCE verifier the
	// callback must present.
	OAuthURL(provider, redirectTo string) (authURL, verifier string, err error)
	CompleteOAuth(code, verifier string) (*Session, error)
	Resolve(token string) (*SessionView, error)
	Refresh(userID uuid.UUID) (*Session, error)
	Logout(userID uuid.UUID) error
	ResetPassword(email, newPassword string) error
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	idp      IdentityProvider
	wsHub    *ws.Hub
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, idp IdentityProvider, hub *ws.Hub, log *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		idp:      idp,
		wsHub:    hub,
		log:      log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(req *RegisterRequest) (*model.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return nil, ErrRegisterFields
	}
	for _, e := range validator.ValidateStruct(req) {
		switch e.Tag {
		case "email":
			return nil, ErrInvalidEmail
		case "min":
			return nil, ErrPasswordTooShort
		}
	}

	user := &model.User{Email: req.Email, Name: req.FullName}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// the unique email index decides duplicates
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		s.log.Error("create user failed", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrLoginFields
	}

	user, err := s.userRepo.FindByEmail(normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error("find user failed", zap.Error(err))
		}
		return nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *authService) OAuthURL(provider, redirectTo string) (string, string, error) {
	if strings.TrimSpace(provider) == "" {
		return "", "", ErrProviderRequired
	}
	verifier, challenge, err := supabase.NewPKCE()
	if err != nil {
		return "", "", err
	}
	authURL, err := s.idp.AuthorizeURL(provider, redirectTo, challenge)
	if err != nil {
		if errors.Is(err, supabase.ErrNotConfigured) {
			return "", "", ErrOAuthUnavailable
		}
		return "", "", err
	}
	return authURL, verifier, nil
}

// CompleteOAuth trades the callback code for the provider's user and makes
// sure a profile row exists under the provider's id.
func (s *authService) CompleteOAuth(code, verifier string) (*Session, error) {
	authUser, err := s.idp.ExchangeCode(code, verifier)
	if err != nil {
		s.log.Warn("oauth code exchange failed", zap.Error(err))
		return nil, ErrOAuthExchange
	}

	id, err := uuid.Parse(authUser.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: provider user id %q", ErrOAuthExchange, authUser.ID)
	}

	profile := &model.User{
		BaseModel: model.BaseModel{ID: id},
		Email:     normalizeEmail(authUser.Email),
		Name:      authUser.DisplayName(),
	}
	err = s.userRepo.Upsert(profile)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a password account already owns this verified email
		user, findErr := s.userRepo.FindByEmail(profile.Email)
		if findErr != nil {
			return nil, findErr
		}
		return s.issue(user)
	}
	if err != nil {
		s.log.Error("upsert oauth user failed", zap.String("user_id", authUser.ID), zap.Error(err))
		return nil, err
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Resolve checks a session token against the user's current token version.
func (s *authService) Resolve(token string) (*SessionView, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionRevoked
	}

	return &SessionView{User: user.ToResponse(), ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *authService) Refresh(userID uuid.UUID) (*Session, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.issue(user)
}

// Logout rotates the token version, which revokes every session of the user.
func (s *authService) Logout(userID uuid.UUID) error {
	if err := s.userRepo.UpdateTokenVersion(userID, uuid.New().String()); err != nil {
		s.log.Error("rotate token version failed", zap.String("user_id", userID.String()), zap.Error(err))
		return err
	}
	s.wsHub.SendToUser(userID, ws.EventSessionRevoked, nil)
	return nil
}

func (s *authService) ResetPassword(email, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}
	user, err := s.userRepo.FindByEmail(normalizeEmail(email))
	if err != nil {
		return ErrUserNotFound
	}
	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(user.ID, user.Password)
}

func (s *authService) issue(user *model.User) (*Session, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Email, user.Name, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{
		Token: token,
		View:  SessionView{User: user.ToResponse(), ExpiresAt: expiresAt},
	}, nil
}
