package model

import (
	"encoding/json"
	"time"
)

// 在庫更新、注文ステータス更新など。
type AuditAction string

const (
	//在庫を更新した操作。
	AuditActionUpdateStock AuditAction = "UPDATE_STOCK"
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//sellerを承認した操作。
	AuditActionApproveSeller AuditAction = "APPROVE_SELLER"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
)

// 操作対象。resource_type と resource_id の組。
type AuditTarget struct {
	Type AuditResourceType
	ID   int64
}

func OrderTarget(id int64) AuditTarget   { return AuditTarget{Type: AuditResourceOrder, ID: id} }
func ProductTarget(id int64) AuditTarget { return AuditTarget{Type: AuditResourceProduct, ID: id} }
func UserTarget(id int64) AuditTarget    { return AuditTarget{Type: AuditResourceUser, ID: id} }

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`
	BeforeJSON   string            `gorm:"type:text" json:"before_json"`
	AfterJSON    string            `gorm:"type:text" json:"after_json"`
	CreatedAt    time.Time         `gorm:"not null;index" json:"created_at"`
}

func (l AuditLog) Target() AuditTarget {
	return AuditTarget{Type: l.ResourceType, ID: l.ResourceID}
}

// NewAuditLog は1項目の変更を {"field": value} の形で残す。
func NewAuditLog(actorID int64, action AuditAction, target AuditTarget, field string, before, after any, at time.Time) AuditLog {
	return AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: target.Type,
		ResourceID:   target.ID,
		BeforeJSON:   fieldJSON(field, before),
		AfterJSON:    fieldJSON(field, after),
		CreatedAt:    at,
	}
}

func fieldJSON(field string, v any) string {
	b, err := json.Marshal(map[string]any{field: v})
	if err != nil {
		return "{}"
	}
	return string(b)
}
