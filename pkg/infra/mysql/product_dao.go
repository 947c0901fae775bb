package mysql

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"svetofor/optimizer/internal/entity"
	"svetofor/optimizer/internal/optimizer"
)

// ProductDAO 商品数据访问对象
type ProductDAO struct {
	db *gorm.DB
}

// NewProductDAO 创建 ProductDAO 实例
func NewProductDAO(dsn string) (*ProductDAO, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &ProductDAO{
		db: db,
	}, nil
}

// UpdateOptimizeResult 更新商品的优化结果
// 参数：
//   - ctx: 上下文
//   - sku: 商品 SKU
//   - result: 优化结果
//   - status: 商品状态（OPTIMIZED/FAILED）
//   - errorMsg: 错误消息（失败时）
func (dao *ProductDAO) UpdateOptimizeResult(
	ctx context.Context,
	sku string,
	result *optimizer.Result,
	status string,
	errorMsg string,
) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal optimize result: %w", err)
	}

	updates := map[string]interface{}{
		"status":          status,
		"optimize_result": resultJSON,
	}

	if errorMsg != "" {
		updates["error_message"] = errorMsg
	}

	dbResult := dao.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("sku = ?", sku).
		Updates(updates)

	if dbResult.Error != nil {
		return fmt.Errorf("failed to update product: %w", dbResult.Error)
	}

	if dbResult.RowsAffected == 0 {
		return fmt.Errorf("product not found: %s", sku)
	}

	return nil
}

// GetBySKU 根据 SKU 获取商品
func (dao *ProductDAO) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	var product entity.Product
	result := dao.db.WithContext(ctx).Where("sku = ?", sku).First(&product)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get product: %w", result.Error)
	}
	return &product, nil
}

// Close 关闭数据库连接
func (dao *ProductDAO) Close() error {
	sqlDB, err := dao.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
