package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Users() UserRepository
	Categories() CategoryRepository
	Products() ProductRepository
	Inventory() InventoryRepository
	Wishlist() WishlistRepository
	CartLines() CartLineRepository
	Orders() OrderRepository
	OrderLines() OrderLineRepository
	Reviews() ReviewRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがerrorを返したら全部ロールバック。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
