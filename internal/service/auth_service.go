package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"school-admin/internal/model"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	defaultHashCost  = 12

	// claimIssuedAtMillis carries the issue time at millisecond precision
	// next to the standard second-precision iat.
	claimIssuedAtMillis = "iat_ms"
)

// AuthService issues sessions and resolves them back to admin identities.
type AuthService struct {
	admins     AdminStore
	tokens     RefreshTokenStore
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	hashCost   int
	now        func() time.Time
}

func NewAuthService(admins AdminStore, tokens RefreshTokenStore, jwtSecret string, accessTTL time.Duration, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		admins:     admins,
		tokens:     tokens,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		hashCost:   defaultHashCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (model.TokenPair, error) {
	admin, err := s.admins.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, model.ErrAdminNotFound) {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	return s.issueTokenPair(ctx, admin)
}

// Refresh rotates a refresh token: the presented one is consumed and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.ValidateToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}

	ownerID, err := s.tokens.Consume(ctx, refreshToken)
	if errors.Is(err, model.ErrTokenNotFound) {
		return model.TokenPair{}, fmt.Errorf("%w: refresh token is invalid", model.ErrUnauthenticated)
	}
	if err != nil {
		return model.TokenPair{}, err
	}
	if ownerID != claims.AdminID {
		return model.TokenPair{}, fmt.Errorf("%w: refresh token is invalid", model.ErrUnauthenticated)
	}

	admin, err := s.loadAdmin(ctx, claims)
	if err != nil {
		return model.TokenPair{}, err
	}

	return s.issueTokenPair(ctx, admin)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Revoke(ctx, refreshToken)
}

// Resolve turns an access token into the caller's identity. It has no side
// effects.
func (s *AuthService) Resolve(ctx context.Context, accessToken string) (model.Identity, error) {
	claims, err := s.ValidateToken(accessToken, tokenTypeAccess)
	if err != nil {
		return model.Identity{}, err
	}

	admin, err := s.loadAdmin(ctx, claims)
	if err != nil {
		return model.Identity{}, err
	}

	return identityOf(admin), nil
}

func (s *AuthService) ValidateToken(tokenString string, expectedType string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", model.ErrUnauthenticated)
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid token claims", model.ErrUnauthenticated)
	}

	typ, _ := claimsMap["typ"].(string)
	if expectedType != "" && typ != expectedType {
		return nil, fmt.Errorf("%w: invalid token type", model.ErrUnauthenticated)
	}

	claims := &model.AuthClaims{Type: typ}
	claims.AdminID, _ = claimsMap["sub"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)
	if role, ok := claimsMap["role"].(float64); ok {
		claims.Role = model.Role(role)
	}
	if ms, ok := claimsMap[claimIssuedAtMillis].(float64); ok {
		claims.IssuedAt = time.UnixMilli(int64(ms)).UTC()
		claims.IssuedAtPrecision = time.Millisecond
	} else if iat, err := claimsMap.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
		claims.IssuedAtPrecision = time.Second
	}

	if claims.AdminID == "" {
		return nil, fmt.Errorf("%w: invalid token subject", model.ErrUnauthenticated)
	}

	return claims, nil
}

// Bootstrap seeds the first super-admin when no admin exists yet.
func (s *AuthService) Bootstrap(ctx context.Context, email string, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	count, err := s.admins.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := hashPassword(password, s.hashCost)
	if err != nil {
		return false, err
	}

	now := s.now()
	admin := model.Admin{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     "Super Admin",
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return false, err
	}

	slog.Info("bootstrap super-admin created", "email", email, "admin_id", admin.ID)
	return true, nil
}

// loadAdmin fetches the token's admin and rejects tokens issued before the
// admin's sessions were revoked. The comparison runs at the precision of the
// token's issue time, so only a token minted in the same millisecond as the
// revocation is treated as revoked.
func (s *AuthService) loadAdmin(ctx context.Context, claims *model.AuthClaims) (model.Admin, error) {
	admin, err := s.admins.FindByID(ctx, claims.AdminID)
	if errors.Is(err, model.ErrAdminNotFound) {
		return model.Admin{}, model.ErrProfileNotFound
	}
	if err != nil {
		return model.Admin{}, err
	}

	precision := claims.IssuedAtPrecision
	if precision <= 0 {
		precision = time.Second
	}
	if admin.SessionsRevokedAt != nil &&
		!claims.IssuedAt.After(admin.SessionsRevokedAt.Truncate(precision)) {
		return model.Admin{}, fmt.Errorf("%w: session revoked", model.ErrUnauthenticated)
	}

	return admin, nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, admin model.Admin) (model.TokenPair, error) {
	now := s.now()

	accessToken, err := s.signToken(jwt.MapClaims{
		"sub":               admin.ID,
		"role":              int(admin.Role),
		"typ":               tokenTypeAccess,
		"jti":               uuid.NewString(),
		"iat":               now.Unix(),
		claimIssuedAtMillis: now.UnixMilli(),
		"exp":               now.Add(s.accessTTL).Unix(),
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshExpiry := now.Add(s.refreshTTL)
	refreshToken, err := s.signToken(jwt.MapClaims{
		"sub":               admin.ID,
		"role":              int(admin.Role),
		"typ":               tokenTypeRefresh,
		"jti":               uuid.NewString(),
		"iat":               now.Unix(),
		claimIssuedAtMillis: now.UnixMilli(),
		"exp":               refreshExpiry.Unix(),
	})
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.tokens.Store(ctx, refreshToken, admin.ID, refreshExpiry); err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		Admin:        identityOf(admin),
	}, nil
}

func (s *AuthService) signToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func identityOf(a model.Admin) model.Identity {
	return model.Identity{
		AdminID:     a.ID,
		Email:       a.Email,
		FullName:    a.FullName,
		Role:        a.Role,
		DimensionID: a.DimensionID,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
