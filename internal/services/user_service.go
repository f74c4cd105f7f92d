package services

import (
	"context"

	"trip-planner/internal/models"
	"trip-planner/internal/repository"
)

// UserService exposes user lookups
type UserService struct {
	repo *repository.Repository
}

func NewUserService(repo *repository.Repository) *UserService {
	return &UserService{repo: repo}
}

// GetByID returns a user profile
func (us *UserService) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	return us.repo.GetUserByID(ctx, userID)
}
