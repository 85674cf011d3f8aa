package service

import (
	"context"
	"fmt"

	"github.com/worklane/worklane/internal/pkg/queue"
	"github.com/worklane/worklane/internal/server/consts"
	"github.com/worklane/worklane/pkg/cache"
)

// CacheInvalidator deletes derived cache entries in named groups. A group
// covers every key a single kind of durable write can stale, so callers
// invalidate by naming the write, not by enumerating keys.
type CacheInvalidator struct {
	cache cache.ICache
}

func NewCacheInvalidator(c cache.ICache) *CacheInvalidator {
	return &CacheInvalidator{cache: c}
}

// Invalidate drops one grouped cache unit. Unknown groups are an error so a
// misspelled group name fails loudly in the task queue instead of silently
// invalidating nothing.
func (ci *CacheInvalidator) Invalidate(ctx context.Context, group, orgID, userID string) error {
	if ci.cache == nil {
		return nil
	}
	switch group {
	case queue.GroupRoleChange:
		return ci.roleChange(ctx, orgID, userID)
	case queue.GroupLeavePolicy:
		return ci.leavePolicy(ctx, orgID)
	default:
		return fmt.Errorf("unknown invalidation group: %s", group)
	}
}

// roleChange covers everything a role mutation can stale: the user's cached
// profile, their leave balances, and the org's approver lists and settings.
func (ci *CacheInvalidator) roleChange(ctx context.Context, orgID, userID string) error {
	if err := ci.cache.Del(ctx, consts.UserInfoKey(userID), consts.OrgSettingsKey(orgID)).Err(); err != nil {
		return err
	}
	if err := ci.cache.DelByPrefix(ctx, consts.OrgApproversPrefix(orgID)); err != nil {
		return err
	}
	return ci.cache.DelByPrefix(ctx, consts.LeaveBalancePrefix(orgID)+userID+":")
}

// leavePolicy covers the org's leave type list and every cached balance
// derived from it.
func (ci *CacheInvalidator) leavePolicy(ctx context.Context, orgID string) error {
	if err := ci.cache.Del(ctx, consts.LeaveTypesKey(orgID)).Err(); err != nil {
		return err
	}
	return ci.cache.DelByPrefix(ctx, consts.LeaveBalancePrefix(orgID))
}
