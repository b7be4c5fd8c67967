package repository

import (
	"context"

	"github.com/google/uuid"

	"winenow.app/WineNowNote/pkg/model"
)

func (r *Repository) GetUserByUUID(ctx context.Context, uuid uuid.UUID) (*model.User, error) {
	var user model.User

	result := r.DB.WithContext(ctx).Where("uuid = ?", uuid).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user *model.User

	result := r.DB.WithContext(ctx).Where("username = ?", username).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}

	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user *model.User

	result := r.DB.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}

	return user, nil
}

func (r *Repository) AddUser(ctx context.Context, username string, email string, passwordHash string) (*model.User, error) {
	user := model.User{
		UUID:         uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if result := r.DB.WithContext(ctx).Create(&user); result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

func (r *Repository) SaveUser(ctx context.Context, user *model.User) (*model.User, error) {
	if result := r.DB.WithContext(ctx).Save(user); result.Error != nil {
		return nil, result.Error
	}

	return user, nil
}
