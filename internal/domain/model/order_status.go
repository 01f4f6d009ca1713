package model

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// 一方向の流れ pending → packed → shipped → delivered
var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending: OrderStatusPacked,
	OrderStatusPacked:  OrderStatusShipped,
	OrderStatusShipped: OrderStatusDelivered,
}

// 1段階戻す先。pendingとcancelledは戻せない。
var previousStatus = map[OrderStatus]OrderStatus{
	OrderStatusPacked:    OrderStatusPending,
	OrderStatusShipped:   OrderStatusPacked,
	OrderStatusDelivered: OrderStatusShipped,
}

// キャンセルできる状態
var cancellable = map[OrderStatus]bool{
	OrderStatusPending: true,
	OrderStatusPacked:  true,
	OrderStatusShipped: true,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPacked, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Next() (OrderStatus, bool) {
	n, ok := nextStatus[s]
	return n, ok
}

func (s OrderStatus) Previous() (OrderStatus, bool) {
	p, ok := previousStatus[s]
	return p, ok
}

func (s OrderStatus) CanRevert() bool {
	_, ok := previousStatus[s]
	return ok
}

func (s OrderStatus) CanCancel() bool {
	return cancellable[s]
}

// CanRevertStatus はpacked/shipped/deliveredのときだけtrue。
func (o *Order) CanRevertStatus() bool {
	return o.Status.CanRevert()
}

// RevertStatus は1段階だけ前に戻す。
// 戻せないときは何も変えずにfalseを返す（エラーにはしない）。
func (o *Order) RevertStatus() bool {
	prev, ok := o.Status.Previous()
	if !ok {
		return false
	}
	o.Status = prev
	return true
}

// AdvanceStatus は1段階だけ進める。delivered/cancelledはfalse。
func (o *Order) AdvanceStatus() bool {
	next, ok := o.Status.Next()
	if !ok {
		return false
	}
	o.Status = next
	return true
}

// Cancel は終端のcancelledに移す。
func (o *Order) Cancel() bool {
	if !o.Status.CanCancel() {
		return false
	}
	o.Status = OrderStatusCancelled
	return true
}
