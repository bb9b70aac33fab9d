package services

import (
	"context"

	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
)

type UserService interface {
	OnboardingStatus(ctx context.Context, userID string) (hasProfile bool, err error)
}

type userService struct {
	users pgrepo.UserRepository
}

func NewUserService(users pgrepo.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) OnboardingStatus(ctx context.Context, userID string) (bool, error) {
	const op = "UserService.OnboardingStatus"

	if userID == "" {
		return false, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	ok, err := s.users.HasProfile(ctx, userID)
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to check profile", err)
	}
	return ok, nil
}
