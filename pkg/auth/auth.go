package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"winenow.app/WineNowNote/configs"
	"winenow.app/WineNowNote/pkg/model"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	userContextKey = "currentUser"

	MinPasswordLength = 8
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type userRepository interface {
	GetUserByUUID(ctx context.Context, uuid uuid.UUID) (*model.User, error)
}

type Manager struct {
	conf   *configs.Config
	repo   userRepository
	logger *zap.Logger
}

func NewAuthManager(conf *configs.Config, repo userRepository, logger *zap.Logger) *Manager {
	return &Manager{conf: conf, repo: repo, logger: logger}
}

// TokenPair is what login and registration hand back to the client.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (a *Manager) IssueTokens(user *model.User) (*TokenPair, error) {
	access, err := a.issueToken(user, TokenTypeAccess, time.Duration(a.conf.Auth.AccessTTLHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	refresh, err := a.issueToken(user, TokenTypeRefresh, time.Duration(a.conf.Auth.RefreshTTLHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (a *Manager) issueToken(user *model.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        user.UUID.String(),
		"email":      user.Email,
		"token_type": tokenType,
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(a.conf.Auth.SecretKey))
}

// ParseToken validates the signature, expiry and token_type, and returns
// the subject user UUID.
func (a *Manager) ParseToken(tokenString string, wantType string) (uuid.UUID, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		_, ok := token.Method.(*jwt.SigningMethodHMAC)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, token.Header["alg"])
		}

		return []byte(a.conf.Auth.SecretKey), nil
	}

	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, keyFunc)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, found := token.Claims.(jwt.MapClaims)
	if !found || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	tokenType, found := claims["token_type"].(string)
	if !found || tokenType != wantType {
		return uuid.Nil, fmt.Errorf("%w: wrong token type", ErrInvalidToken)
	}

	subject, found := claims["sub"].(string)
	if !found {
		return uuid.Nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	userUUID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}

	return userUUID, nil
}

// RefreshAccess trades a valid refresh token for a fresh access token.
func (a *Manager) RefreshAccess(ctx context.Context, refreshToken string) (string, error) {
	userUUID, err := a.ParseToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	user, err := a.repo.GetUserByUUID(ctx, userUUID)
	if err != nil {
		return "", ErrInvalidToken
	}

	return a.issueToken(user, TokenTypeAccess, time.Duration(a.conf.Auth.AccessTTLHours)*time.Hour)
}

// RequireUser resolves the bearer token and loads the acting user into
// the request context, aborting with 401 otherwise.
func (a *Manager) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractTokenFromHeader(c.Request.Header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

			return
		}

		userUUID, err := a.ParseToken(tokenString, TokenTypeAccess)
		if err != nil {
			a.logger.Warn("rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})

			return
		}

		user, err := a.repo.GetUserByUUID(c.Request.Context(), userUUID)
		if err != nil {
			a.logger.Error("error authenticating user", zap.String("uuid", userUUID.String()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})

			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user placed in the context by RequireUser.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	value, found := c.Get(userContextKey)
	if !found {
		return nil, false
	}

	user, ok := value.(*model.User)

	return user, ok
}

// SetCurrentUser injects a user directly, bypassing token parsing.
func SetCurrentUser(c *gin.Context, user *model.User) {
	c.Set(userContextKey, user)
}

func extractTokenFromHeader(header http.Header) (string, error) {
	authorization := header.Get("Authorization")
	if len(authorization) == 0 {
		return "", fmt.Errorf("%w: authorization header not found", ErrInvalidToken)
	}

	prefix := "Bearer "
	if !strings.HasPrefix(authorization, prefix) {
		prefix = "bearer "
	}

	token, found := strings.CutPrefix(authorization, prefix)
	if !found {
		return "", fmt.Errorf("%w: authorization format must be Bearer {token}", ErrInvalidToken)
	}

	return token, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

func CheckPassword(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
