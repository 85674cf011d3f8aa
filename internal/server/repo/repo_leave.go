package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/worklane/worklane/internal/server/consts"
	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/pkg/cache"
	"github.com/worklane/worklane/pkg/database"
	"github.com/worklane/worklane/pkg/log"
)

// ILeaveRepository is the read side of the leave collaborators. Balance and
// policy writes live in another service; this repo only exists because their
// caches are computed here and must survive grouped invalidation.
type ILeaveRepository interface {
	TypesByOrg(orgID string) ([]model.LeaveType, error)
	BalancesByUser(orgID, userID string, year int) ([]model.LeaveBalance, error)
}

type LeaveRepo struct {
	db    database.IDatabase
	cache cache.ICache
}

func NewLeaveRepo(db database.IDatabase, cache cache.ICache) ILeaveRepository {
	return &LeaveRepo{db: db, cache: cache}
}

func (lr *LeaveRepo) TypesByOrg(orgID string) ([]model.LeaveType, error) {
	ctx := context.Background()
	key := consts.LeaveTypesKey(orgID)

	if lr.cache != nil {
		cached, err := lr.cache.Get(ctx, key).Result()
		if err == nil && cached != "" {
			var types []model.LeaveType
			if err := sonic.UnmarshalString(cached, &types); err != nil {
				log.Errorw("failed to unmarshal cached leave types", "orgId", orgID, "error", err)
			} else {
				return types, nil
			}
		}
	}

	var types []model.LeaveType
	err := lr.db.Database().Table(model.LeaveType{}.TableName()).
		Where("organization_id = ?", orgID).
		Find(&types).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}

	if lr.cache != nil {
		encoded, err := sonic.MarshalString(types)
		if err != nil {
			log.Errorw("failed to marshal leave types", "orgId", orgID, "error", err)
		} else if err := lr.cache.Set(ctx, key, encoded, time.Hour).Err(); err != nil {
			log.Errorw("failed to cache leave types", "orgId", orgID, "error", err)
		}
	}

	return types, nil
}

func (lr *LeaveRepo) BalancesByUser(orgID, userID string, year int) ([]model.LeaveBalance, error) {
	ctx := context.Background()
	key := consts.LeaveBalanceKey(orgID, userID, year)

	if lr.cache != nil {
		cached, err := lr.cache.Get(ctx, key).Result()
		if err == nil && cached != "" {
			var balances []model.LeaveBalance
			if err := sonic.UnmarshalString(cached, &balances); err != nil {
				log.Errorw("failed to unmarshal cached leave balances", "userId", userID, "error", err)
			} else {
				return balances, nil
			}
		}
	}

	var balances []model.LeaveBalance
	err := lr.db.Database().Table(model.LeaveBalance{}.TableName()).
		Where("organization_id = ? AND user_id = ? AND year = ?", orgID, userID, year).
		Find(&balances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}

	if lr.cache != nil {
		encoded, err := sonic.MarshalString(balances)
		if err != nil {
			log.Errorw("failed to marshal leave balances", "userId", userID, "error", err)
		} else if err := lr.cache.Set(ctx, key, encoded, time.Hour).Err(); err != nil {
			log.Errorw("failed to cache leave balances", "userId", userID, "error", err)
		}
	}

	return balances, nil
}
