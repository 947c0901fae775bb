package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Product 商品实体（持有最近一次优化结果）
type Product struct {
	// 基础字段
	SKU       string `gorm:"column:sku;primaryKey;type:varchar(64)"`
	AccountID int64  `gorm:"column:account_id;not null;index:idx_account_status"`
	Name      string `gorm:"column:name;type:varchar(255);not null"`
	Category  string `gorm:"column:category;type:varchar(64);not null;index:idx_category"`

	// 价格
	Price     float64 `gorm:"column:price;type:decimal(12,2);not null"`
	CostPrice float64 `gorm:"column:cost_price;type:decimal(12,2);not null"`

	// 优化状态与结果
	Status         string         `gorm:"column:status;type:varchar(16);not null;default:'PENDING';index:idx_account_status"`
	OptimizeResult datatypes.JSON `gorm:"column:optimize_result;type:json"`
	ErrorMessage   string         `gorm:"column:error_message;type:varchar(512)"`

	// 调价历史
	LastPriceChangeAt *time.Time `gorm:"column:last_price_change_at"`

	// 时间戳
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// 商品优化状态常量
const (
	ProductStatusPending    = "PENDING"
	ProductStatusOptimizing = "OPTIMIZING"
	ProductStatusOptimized  = "OPTIMIZED"
	ProductStatusFailed     = "FAILED"
)
