package repository

import (
	"context"

	"agrimarket/internal/domain/model"
	repo "agrimarket/internal/repository"

	"gorm.io/gorm"
)

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

func (r *AuditLogGormRepository) Record(ctx context.Context, log model.AuditLog) error {
	return mapErr(r.db.WithContext(ctx).Create(&log).Error, "record audit log")
}

func (r *AuditLogGormRepository) List(ctx context.Context, q repo.AuditLogQuery) ([]model.AuditLog, error) {
	limit, offset := q.Page()

	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Scopes(auditLogScope(q)).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return []model.AuditLog{}, mapErr(err, "list audit logs")
	}
	return logs, nil
}

// AuditLogQuery.Matches と同じ条件
func auditLogScope(q repo.AuditLogQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.ActorID > 0 {
			db = db.Where("actor_user_id = ?", q.ActorID)
		}
		if len(q.Actions) > 0 {
			db = db.Where("action IN ?", q.Actions)
		}
		if t := q.Target; t != nil {
			db = db.Where("resource_type = ? AND resource_id = ?", t.Type, t.ID)
		}
		if !q.Since.IsZero() {
			db = db.Where("created_at >= ?", q.Since)
		}
		if !q.Until.IsZero() {
			db = db.Where("created_at <= ?", q.Until)
		}
		return db
	}
}

var _ repo.AuditLogRepository = (*AuditLogGormRepository)(nil)
