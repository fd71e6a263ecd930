package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Employee   EmployeeRepository
	Attendance AttendanceRepository
	// Tx 事务执行器，由 NewRepository 绑定到数据库连接
	Tx TransactionManager
}

// TransactionManager 事务控制抽象，fn 内拿到的聚合绑定在同一事务上
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(tx *Repository) error) error
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Employee:   NewEmployeeRepo(db),
		Attendance: NewAttendanceRepo(db),
		Tx:         &gormTransactionManager{db: db},
	}
}

// Transaction 在同一数据库事务中执行 fn，fn 返回错误时整体回滚
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.Tx.Transaction(ctx, fn)
}

type gormTransactionManager struct {
	db *gorm.DB
}

func (m *gormTransactionManager) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// likePattern 构造大小写不敏感的子串匹配模式，转义用户输入中的通配符
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
