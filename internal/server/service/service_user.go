package service

import (
	"errors"

	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/internal/server/repo"
)

// UserService serves profile reads. Both reads come from the read-through
// cache; role changes reach them through the role_change invalidation group.
type UserService struct {
	userRepo repo.IUserRepository
}

func NewUserService(userRepo repo.IUserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Info(userID string) (*model.UserInfo, error) {
	info, err := s.userRepo.FetchUserInfo(userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return info, nil
}

// Approvers lists the org members holding the given role, for the request
// submission form's target picker.
func (s *UserService) Approvers(orgID, role string) ([]model.UserInfo, error) {
	return s.userRepo.ListApprovers(orgID, role)
}
