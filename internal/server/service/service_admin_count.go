package service

import (
	"github.com/worklane/worklane/internal/server/repo"
	"github.com/worklane/worklane/pkg/log"
)

// AdminCountService keeps the stored per-organization admin counter in step
// with the live count derived from user roles. The counter is a derived
// value: whenever the two disagree, the live count wins and the stored one
// is rewritten.
type AdminCountService struct {
	userRepo repo.IUserRepository
	orgRepo  repo.IOrganizationRepository
}

func NewAdminCountService(userRepo repo.IUserRepository, orgRepo repo.IOrganizationRepository) *AdminCountService {
	return &AdminCountService{userRepo: userRepo, orgRepo: orgRepo}
}

// Reconcile recomputes the organization's admin count and repairs the stored
// counter if it drifted. Returns the live count; a repair failure is logged
// and the live count is still returned, so callers always act on the truth.
func (s *AdminCountService) Reconcile(orgID string) (int, error) {
	count, err := s.userRepo.CountAdmins(orgID)
	if err != nil {
		return 0, err
	}
	org, err := s.orgRepo.ByID(orgID)
	if err != nil {
		return 0, err
	}
	if org.AdminCount != count {
		log.Warnw("admin count drift detected",
			"orgId", orgID, "stored", org.AdminCount, "live", count)
		if err := s.orgRepo.UpdateAdminCount(orgID, count); err != nil {
			log.Errorw("admin count repair failed", "orgId", orgID, "err", err)
		} else {
			adminCountRepaired.Inc()
		}
	}
	return count, nil
}
