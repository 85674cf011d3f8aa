package service

import (
	"time"

	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/internal/server/repo"
)

// LeaveService serves the leave policy reads backing the main dashboard.
// Both reads are cached; policy edits reach them through the leave_policy
// invalidation group and role changes through role_change.
type LeaveService struct {
	leaveRepo repo.ILeaveRepository
}

func NewLeaveService(leaveRepo repo.ILeaveRepository) *LeaveService {
	return &LeaveService{leaveRepo: leaveRepo}
}

func (s *LeaveService) Types(orgID string) ([]model.LeaveType, error) {
	return s.leaveRepo.TypesByOrg(orgID)
}

func (s *LeaveService) Balances(orgID, userID string, year int) ([]model.LeaveBalance, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	return s.leaveRepo.BalancesByUser(orgID, userID, year)
}
