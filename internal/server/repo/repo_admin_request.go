package repo

import (
	"errors"
	"fmt"
	"time"

	"github.com/worklane/worklane/internal/server/consts"
	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/pkg/database"
	"gorm.io/gorm"
)

type IAdminRequestRepository interface {
	Create(req *model.AdminRequest) error
	PendingByUser(userID string) (*model.AdminRequest, error)
	LatestDecidedByUser(userID string) (*model.AdminRequest, error)
	ByToken(token string) (*model.AdminRequest, error)
	ByIDInOrg(requestID, orgID string) (*model.AdminRequest, error)
	ListPendingForOrg(orgID string, now time.Time) ([]model.AdminRequest, error)
	// MarkProcessed flips a pending request to a terminal decision. The
	// update is conditional on the row still being pending; it reports
	// whether this caller won the flip. Exactly one concurrent caller does.
	MarkProcessed(requestID, status, processedBy, reason string, processedAt time.Time) (bool, error)
	// MarkExpired flips a pending request to expired, same conditional shape.
	MarkExpired(requestID string, processedAt time.Time) (bool, error)
	// ExpireOverdue sweeps every pending request past its deadline; hygiene
	// only, lazy expiry already keeps readers correct.
	ExpireOverdue(now time.Time) (int64, error)
}

type AdminRequestRepo struct {
	db           database.IDatabase
	requestModel *model.AdminRequest
}

func NewAdminRequestRepo(db database.IDatabase) IAdminRequestRepository {
	return &AdminRequestRepo{
		db:           db,
		requestModel: &model.AdminRequest{},
	}
}

func (ar *AdminRequestRepo) Create(req *model.AdminRequest) error {
	err := ar.db.Database().Create(req).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicatePending
	}
	return err
}

func (ar *AdminRequestRepo) PendingByUser(userID string) (*model.AdminRequest, error) {
	var req model.AdminRequest
	err := ar.db.Database().Table(ar.requestModel.TableName()).
		Where("user_id = ? AND status = ?", userID, consts.RequestStatusPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending request: %w", err)
	}
	return &req, nil
}

func (ar *AdminRequestRepo) LatestDecidedByUser(userID string) (*model.AdminRequest, error) {
	var req model.AdminRequest
	err := ar.db.Database().Table(ar.requestModel.TableName()).
		Where("user_id = ? AND status IN ?", userID,
			[]string{consts.RequestStatusApproved, consts.RequestStatusDenied}).
		Order("requested_at DESC").
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest decided request: %w", err)
	}
	return &req, nil
}

func (ar *AdminRequestRepo) ByToken(token string) (*model.AdminRequest, error) {
	var req model.AdminRequest
	err := ar.db.Database().Table(ar.requestModel.TableName()).
		Where("approval_token = ?", token).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request by token: %w", err)
	}
	return &req, nil
}

func (ar *AdminRequestRepo) ByIDInOrg(requestID, orgID string) (*model.AdminRequest, error) {
	var req model.AdminRequest
	err := ar.db.Database().Table(ar.requestModel.TableName()).
		Where("request_id = ? AND organization_id = ?", requestID, orgID).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &req, nil
}

func (ar *AdminRequestRepo) ListPendingForOrg(orgID string, now time.Time) ([]model.AdminRequest, error) {
	var reqs []model.AdminRequest
	err := ar.db.Database().Table(ar.requestModel.TableName()).
		Where("organization_id = ? AND status = ? AND expires_at > ? AND target_admin_email IS NOT NULL",
			orgID, consts.RequestStatusPending, now).
		Order("requested_at ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return reqs, nil
}

func (ar *AdminRequestRepo) MarkProcessed(requestID, status, processedBy, reason string, processedAt time.Time) (bool, error) {
	res := ar.db.Database().Table(ar.requestModel.TableName()).
		Where("request_id = ? AND status = ?", requestID, consts.RequestStatusPending).
		Updates(map[string]any{
			"status":       status,
			"processed_at": processedAt,
			"processed_by": processedBy,
			"reason":       reason,
			"pending_flag": nil,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark request processed: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (ar *AdminRequestRepo) MarkExpired(requestID string, processedAt time.Time) (bool, error) {
	res := ar.db.Database().Table(ar.requestModel.TableName()).
		Where("request_id = ? AND status = ?", requestID, consts.RequestStatusPending).
		Updates(map[string]any{
			"status":       consts.RequestStatusExpired,
			"processed_at": processedAt,
			"pending_flag": nil,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark request expired: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (ar *AdminRequestRepo) ExpireOverdue(now time.Time) (int64, error) {
	res := ar.db.Database().Table(ar.requestModel.TableName()).
		Where("status = ? AND expires_at < ?", consts.RequestStatusPending, now).
		Updates(map[string]any{
			"status":       consts.RequestStatusExpired,
			"processed_at": now,
			"pending_flag": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire overdue requests: %w", res.Error)
	}
	return res.RowsAffected, nil
}
