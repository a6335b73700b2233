package service

import (
	"context"
	"regexp"
	"time"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/auth"
	"github.com/ivopashov/classdocs/internal/database"
	"github.com/ivopashov/classdocs/internal/models"
	"github.com/ivopashov/classdocs/internal/redis"
	"github.com/ivopashov/classdocs/internal/snowflake"
)

var usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]{2,32}$`)

const signupTokenExpiry = 14 * 24 * time.Hour

// AuthResult holds the tokens and user returned after registration or login.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

// RefreshResult holds the new token pair after a refresh.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles registration, login, token refresh, logout, and signup
// token management. Registration is invitation-only: it consumes a signup
// token whose role becomes the new user's role.
type AuthService struct {
	users        database.UserRepository
	signupTokens database.SignupTokenRepository
	tokens       *auth.TokenService
	redis        *redis.Client
	snowflake    *snowflake.Generator
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users database.UserRepository,
	signupTokens database.SignupTokenRepository,
	tokens *auth.TokenService,
	redisClient *redis.Client,
	sf *snowflake.Generator,
) *AuthService {
	return &AuthService{
		users:        users,
		signupTokens: signupTokens,
		tokens:       tokens,
		redis:        redisClient,
		snowflake:    sf,
	}
}

// Register creates a new user from a signup token and returns tokens.
func (s *AuthService) Register(ctx context.Context, signupToken, username, displayName, password string) (*AuthResult, error) {
	if !usernameRegexp.MatchString(username) {
		return nil, BadRequest("INVALID_USERNAME", "username must be 2-32 alphanumeric or underscore characters")
	}
	if len(password) < 6 || len(password) > 128 {
		return nil, BadRequest("INVALID_PASSWORD", "password must be 6-128 characters")
	}
	if displayName == "" {
		displayName = username
	}

	token, err := s.signupTokens.GetByToken(ctx, signupToken)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if token == nil {
		return nil, NotFound("INVALID_SIGNUP_TOKEN", "signup token not found")
	}
	if token.UsedBy != nil {
		return nil, Gone("SIGNUP_TOKEN_USED", "signup token has already been used")
	}
	if time.Now().After(token.ExpiresAt) {
		return nil, Gone("SIGNUP_TOKEN_EXPIRED", "signup token has expired")
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if existing != nil {
		return nil, Conflict("USERNAME_TAKEN", "username is already taken")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	user := &models.User{
		ID:           s.snowflake.Generate().Int64(),
		Username:     username,
		DisplayName:  displayName,
		Role:         token.Role,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	if err := s.signupTokens.MarkUsed(ctx, signupToken, user.ID); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	return s.issueTokens(ctx, user)
}

// Login authenticates a user and returns tokens.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if user == nil {
		return nil, Unauthorized("INVALID_CREDENTIALS", "invalid username or password")
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, Unauthorized("INVALID_CREDENTIALS", "invalid username or password")
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token and returns a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, BadRequest("MISSING_TOKEN", "refresh_token is required")
	}

	userID, err := s.redis.GetRefreshTokenUserID(ctx, refreshToken)
	if err != nil {
		return nil, Unauthorized("INVALID_TOKEN", "invalid or expired refresh token")
	}

	// The role is loaded fresh so a refresh picks up role changes.
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if user == nil {
		return nil, Unauthorized("INVALID_TOKEN", "invalid or expired refresh token")
	}

	if err := s.redis.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	newRefresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	if err := s.redis.StoreRefreshToken(ctx, newRefresh, user.ID, s.tokens.RefreshExpiry()); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	return &RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
	}, nil
}

// Logout deletes the given refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken != "" {
		_ = s.redis.DeleteRefreshToken(ctx, refreshToken)
	}
}

// CreateSignupToken mints an invitation for the given role. Only Admins may
// invite above Student, and nobody invites above their own rank.
func (s *AuthService) CreateSignupToken(ctx context.Context, actorID int64, actorRole access.Role, role access.Role) (*models.SignupToken, error) {
	if err := RequireElevated(actorRole); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, BadRequest("INVALID_ROLE", "role must be Student, Teacher, or Admin")
	}
	if role.Rank() >= actorRole.Rank() && actorRole != access.RoleAdmin {
		return nil, Forbidden("MISSING_ACCESS", "cannot invite at or above your own role")
	}

	raw, err := s.tokens.GenerateRefreshToken() // same opaque-token shape
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	token := &models.SignupToken{
		Token:     raw,
		Role:      role,
		CreatedBy: actorID,
		ExpiresAt: time.Now().Add(signupTokenExpiry),
		CreatedAt: time.Now(),
	}
	if err := s.signupTokens.Create(ctx, token); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return token, nil
}

// ListSignupTokens returns all invitations. Elevated actors only.
func (s *AuthService) ListSignupTokens(ctx context.Context, actorRole access.Role) ([]models.SignupToken, error) {
	if err := RequireElevated(actorRole); err != nil {
		return nil, err
	}
	tokens, err := s.signupTokens.List(ctx)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if tokens == nil {
		tokens = []models.SignupToken{}
	}
	return tokens, nil
}

// DeleteSignupToken revokes an unused invitation. Elevated actors only.
func (s *AuthService) DeleteSignupToken(ctx context.Context, actorRole access.Role, token string) error {
	if err := RequireElevated(actorRole); err != nil {
		return err
	}
	existing, err := s.signupTokens.GetByToken(ctx, token)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if existing == nil {
		return NotFound("NOT_FOUND", "signup token not found")
	}
	if err := s.signupTokens.Delete(ctx, token); err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*AuthResult, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	if err := s.redis.StoreRefreshToken(ctx, refreshToken, user.ID, s.tokens.RefreshExpiry()); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	}, nil
}
