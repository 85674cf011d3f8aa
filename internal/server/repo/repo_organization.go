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

type IOrganizationRepository interface {
	ByID(orgID string) (*model.Organization, error)
	UpdateAdminCount(orgID string, count int) error
	// Settings is the read-through cached decode of the settings blob.
	Settings(orgID string) (*model.OrganizationSettings, error)
}

type OrganizationRepo struct {
	db       database.IDatabase
	cache    cache.ICache
	orgModel *model.Organization
}

func NewOrganizationRepo(db database.IDatabase, cache cache.ICache) IOrganizationRepository {
	return &OrganizationRepo{
		db:       db,
		cache:    cache,
		orgModel: &model.Organization{},
	}
}

func (or *OrganizationRepo) ByID(orgID string) (*model.Organization, error) {
	var org model.Organization
	err := or.db.Database().Table(or.orgModel.TableName()).
		Where("organization_id = ?", orgID).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

func (or *OrganizationRepo) UpdateAdminCount(orgID string, count int) error {
	res := or.db.Database().Table(or.orgModel.TableName()).
		Where("organization_id = ?", orgID).
		Update("admin_count", count)
	if res.Error != nil {
		return fmt.Errorf("failed to update admin count: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (or *OrganizationRepo) Settings(orgID string) (*model.OrganizationSettings, error) {
	ctx := context.Background()
	key := consts.OrgSettingsKey(orgID)

	if or.cache != nil {
		cached, err := or.cache.Get(ctx, key).Result()
		if err == nil && cached != "" {
			var settings model.OrganizationSettings
			if err := sonic.UnmarshalString(cached, &settings); err != nil {
				log.Errorw("failed to unmarshal cached org settings", "orgId", orgID, "error", err)
			} else {
				return &settings, nil
			}
		}
	}

	org, err := or.ByID(orgID)
	if err != nil {
		return nil, err
	}

	var settings model.OrganizationSettings
	if org.Settings != "" {
		if err := sonic.UnmarshalString(org.Settings, &settings); err != nil {
			return nil, fmt.Errorf("failed to decode org settings: %w", err)
		}
	}

	if or.cache != nil {
		encoded, err := sonic.MarshalString(&settings)
		if err != nil {
			log.Errorw("failed to marshal org settings", "orgId", orgID, "error", err)
		} else if err := or.cache.Set(ctx, key, encoded, time.Hour).Err(); err != nil {
			log.Errorw("failed to cache org settings", "orgId", orgID, "error", err)
		}
	}

	return &settings, nil
}
