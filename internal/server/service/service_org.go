package service

import (
	"errors"

	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/internal/server/repo"
)

// OrgService serves organization reads. Settings comes from the read-through
// cache and is part of the role_change invalidation group.
type OrgService struct {
	orgRepo repo.IOrganizationRepository
}

func NewOrgService(orgRepo repo.IOrganizationRepository) *OrgService {
	return &OrgService{orgRepo: orgRepo}
}

func (s *OrgService) Settings(orgID string) (*model.OrganizationSettings, error) {
	settings, err := s.orgRepo.Settings(orgID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrgNotFound
		}
		return nil, err
	}
	return settings, nil
}
