package repository

import (
	"context"
	"slices"
	"time"

	"agrimarket/internal/domain/model"
)

const (
	DefaultAuditLogLimit = 50
	MaxAuditLogLimit     = 200
)

// /admin/audit-logs の検索条件。ゼロ値の項目は絞り込まない。
// Target を指定すると1件の注文・商品・ユーザーの履歴になる。
type AuditLogQuery struct {
	ActorID int64
	Actions []model.AuditAction
	Target  *model.AuditTarget
	Since   time.Time
	Until   time.Time
	Limit   int
	Offset  int
}

// Page は実際に使う limit/offset（範囲外は既定値に寄せる）
func (q AuditLogQuery) Page() (limit int, offset int) {
	limit = q.Limit
	if limit <= 0 || limit > MaxAuditLogLimit {
		limit = DefaultAuditLogLimit
	}
	return limit, max(q.Offset, 0)
}

// Matches はSQLの WHERE と同じ判定（メモリ実装用）
func (q AuditLogQuery) Matches(l model.AuditLog) bool {
	if q.ActorID > 0 && l.ActorUserID != q.ActorID {
		return false
	}
	if len(q.Actions) > 0 && !slices.Contains(q.Actions, l.Action) {
		return false
	}
	if q.Target != nil && l.Target() != *q.Target {
		return false
	}
	if !q.Since.IsZero() && l.CreatedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && l.CreatedAt.After(q.Until) {
		return false
	}
	return true
}

// 監査ログは追記のみ。新しい順に読む。
type AuditLogRepository interface {
	Record(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, q AuditLogQuery) ([]model.AuditLog, error)
}
