package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"winenow.app/WineNowNote/pkg/auth"
	"winenow.app/WineNowNote/pkg/model"
)

var ErrUserNotFound = errors.New("user not found")

type authUserRepository interface {
	AddUser(ctx context.Context, username string, email string, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	SaveUser(ctx context.Context, user *model.User) (*model.User, error)
}

type AuthServer struct {
	repository  authUserRepository
	authManager *auth.Manager
	logger      *zap.Logger
}

func NewAuthServer(repository authUserRepository, authManager *auth.Manager, logger *zap.Logger) *AuthServer {
	return &AuthServer{repository: repository, authManager: authManager, logger: logger}
}

type RegisterInput struct {
	Email           string `json:"email" binding:"required,email"`
	Username        string `json:"username" binding:"required,max=50"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

func (a *AuthServer) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if input.Password != input.PasswordConfirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})

		return
	}

	if len(input.Password) < auth.MinPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})

		return
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		a.logger.Error("error hashing password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})

		return
	}

	user, err := a.repository.AddUser(c.Request.Context(), input.Username, input.Email, passwordHash)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email or username already in use"})

			return
		}

		a.logger.Error("error creating user", zap.String("email", input.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})

		return
	}

	tokens, err := a.authManager.IssueTokens(user)
	if err != nil {
		a.logger.Error("error issuing tokens", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})

		return
	}

	c.JSON(http.StatusCreated, TokensResponse{User: UserFromModel(user), Tokens: tokens})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthServer) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	// Same message for unknown email and wrong password.
	user, err := a.repository.GetUserByEmail(c.Request.Context(), input.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidCredentials.Error()})

		return
	}

	tokens, err := a.authManager.IssueTokens(user)
	if err != nil {
		a.logger.Error("error issuing tokens", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})

		return
	}

	c.JSON(http.StatusOK, TokensResponse{User: UserFromModel(user), Tokens: tokens})
}

type RefreshInput struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (a *AuthServer) Refresh(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	access, err := a.authManager.RefreshAccess(c.Request.Context(), input.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})

		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (a *AuthServer) Me(c *gin.Context) {
	user, found := auth.CurrentUser(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user in context"})

		return
	}

	c.JSON(http.StatusOK, UserFromModel(user))
}

type UpdateMeInput struct {
	Username           *string   `json:"username" binding:"omitempty,max=50"`
	ProfileImage       *string   `json:"profile_image"`
	PreferredWineTypes *[]string `json:"preferred_wine_types"`
	Bio                *string   `json:"bio" binding:"omitempty,max=500"`
}

func (a *AuthServer) UpdateMe(c *gin.Context) {
	user, found := auth.CurrentUser(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user in context"})

		return
	}

	var input UpdateMeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if input.PreferredWineTypes != nil {
		for _, wineType := range *input.PreferredWineTypes {
			if !model.ValidWineType(wineType) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown wine type: " + wineType})

				return
			}
		}

		user.PreferredWineTypes = *input.PreferredWineTypes
	}

	if input.Username != nil {
		user.Username = *input.Username
	}

	if input.ProfileImage != nil {
		user.ProfileImage = *input.ProfileImage
	}

	if input.Bio != nil {
		user.Bio = *input.Bio
	}

	updated, err := a.repository.SaveUser(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username already in use"})

			return
		}

		a.logger.Error("error updating profile", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})

		return
	}

	c.JSON(http.StatusOK, UserFromModel(updated))
}
