package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/worklane/worklane/internal/server/consts"
	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/pkg/cache"
	"github.com/worklane/worklane/pkg/database"
	"github.com/worklane/worklane/pkg/log"
	"gorm.io/gorm"
)

type IUserRepository interface {
	ByID(userID string) (*model.User, error)
	ByEmail(email string) (*model.User, error)
	AdminByEmail(orgID, email string) (*model.User, error)
	CountAdmins(orgID string) (int, error)
	// ListApprovers returns the org's users holding the given role,
	// read-through cached under the approvers key.
	ListApprovers(orgID, role string) ([]model.UserInfo, error)
	Masters() ([]model.User, error)
	// UpdateRole is the single writer for approval-driven role flips.
	UpdateRole(userID, role string) error
	FetchUserInfo(userID string) (*model.UserInfo, error)
}

type UserRepo struct {
	db        database.IDatabase
	cache     cache.ICache
	userModel *model.User
}

func NewUserRepo(db database.IDatabase, cache cache.ICache) IUserRepository {
	return &UserRepo{
		db:        db,
		cache:     cache,
		userModel: &model.User{},
	}
}

func (ur *UserRepo) ByID(userID string) (*model.User, error) {
	var u model.User
	err := ur.db.Database().Table(ur.userModel.TableName()).
		Where("user_id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (ur *UserRepo) ByEmail(email string) (*model.User, error) {
	var u model.User
	err := ur.db.Database().Table(ur.userModel.TableName()).
		Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

func (ur *UserRepo) AdminByEmail(orgID, email string) (*model.User, error) {
	var u model.User
	err := ur.db.Database().Table(ur.userModel.TableName()).
		Where("organization_id = ? AND email = ? AND role = ?", orgID, email, consts.RoleAdmin).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}
	return &u, nil
}

func (ur *UserRepo) CountAdmins(orgID string) (int, error) {
	var count int64
	err := ur.db.Database().Table(ur.userModel.TableName()).
		Where("organization_id = ? AND role = ?", orgID, consts.RoleAdmin).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return int(count), nil
}

func (ur *UserRepo) ListApprovers(orgID, role string) ([]model.UserInfo, error) {
	ctx := context.Background()
	key := consts.OrgApproversKey(orgID, role)

	if ur.cache != nil {
		cached, err := ur.cache.Get(ctx, key).Result()
		if err == nil && cached != "" {
			var infos []model.UserInfo
			if err := sonic.UnmarshalString(cached, &infos); err != nil {
				log.Errorw("failed to unmarshal cached approvers", "orgId", orgID, "error", err)
			} else {
				return infos, nil
			}
		}
	}

	var users []model.User
	err := ur.db.Database().Table(ur.userModel.TableName()).
		Where("organization_id = ? AND role = ?", orgID, role).
		Order("email ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list approvers: %w", err)
	}

	infos := make([]model.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, *users[i].Info())
	}

	if ur.cache != nil {
		encoded, err := sonic.MarshalString(infos)
		if err != nil {
			log.Errorw("failed to marshal approvers", "orgId", orgID, "error", err)
		} else if err := ur.cache.Set(ctx, key, encoded, time.Hour).Err(); err != nil {
			log.Errorw("failed to cache approvers", "orgId", orgID, "error", err)
		}
	}

	return infos, nil
}

func (ur *UserRepo) Masters() ([]model.User, error) {
	var users []model.User
	err := ur.db.Database().Table(ur.userModel.TableName()).
		Where("is_master = 1").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list master operators: %w", err)
	}
	return users, nil
}

func (ur *UserRepo) UpdateRole(userID, role string) error {
	res := ur.db.Database().Table(ur.userModel.TableName()).
		Where("user_id = ?", userID).
		Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("failed to update role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (ur *UserRepo) FetchUserInfo(userID string) (*model.UserInfo, error) {
	ctx := context.Background()
	key := consts.UserInfoKey(userID)

	if ur.cache != nil {
		cached, err := ur.cache.Get(ctx, key).Result()
		if err == nil && cached != "" {
			var info model.UserInfo
			if err := sonic.UnmarshalString(cached, &info); err != nil {
				log.Errorw("failed to unmarshal cached user info", "userId", userID, "error", err)
			} else {
				return &info, nil
			}
		}
	}

	u, err := ur.ByID(userID)
	if err != nil {
		return nil, err
	}
	info := u.Info()

	if ur.cache != nil {
		encoded, err := sonic.MarshalString(info)
		if err != nil {
			log.Errorw("failed to marshal user info", "userId", userID, "error", err)
		} else if err := ur.cache.Set(ctx, key, encoded, time.Hour).Err(); err != nil {
			log.Errorw("failed to cache user info", "userId", userID, "error", err)
		}
	}

	return info, nil
}
