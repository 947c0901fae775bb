package business

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svetofor/optimizer/internal/optimizer"
	"svetofor/optimizer/internal/thresholds"
	"svetofor/optimizer/pkg/errorutil"
	"svetofor/optimizer/pkg/lmstfy"
	"svetofor/optimizer/pkg/logger"
)

func TestExecuteOptimizationPublishFailureIsRetryable(t *testing.T) {
	// 端口 1 无服务监听：回调发布必然连接失败，模拟队列临时不可用
	client, err := lmstfy.NewClient("127.0.0.1", 1, "test-ns", "")
	require.NoError(t, err)

	provider := thresholds.NewStaticProvider(
		thresholds.NewSnapshot(thresholds.DefaultThresholds(), nil, nil))
	engine := optimizer.NewEngine(provider, 1)

	log, err := logger.NewZapLogger("error")
	require.NoError(t, err)

	service := NewOptimizerService(engine, nil, nil, "", client, "sku_optimize_callback", log)

	input := &OptimizeInput{
		RequestID: "req-1",
		AccountID: 1001,
		BatchID:   "batch-1",
		Snapshots: []optimizer.SKUSnapshot{
			{
				SKU:                 "SKU-TEST-001",
				Category:            "apparel",
				StockOnHand:         100,
				OrdersPerDay:        2,
				Views:               1000,
				CartAdds:            50,
				Orders:              25,
				BuyoutPct:           80,
				Price:               1000,
				CostPrice:           400,
				AdSharePct:          10,
				DaysSinceLastChange: 30,
			},
		},
	}

	err = service.ExecuteOptimization(context.Background(), input)
	require.Error(t, err)

	// 发布失败必须标记为可重试，队列层据此重投而不是丢弃
	assert.True(t, errorutil.IsRetryable(err))
}
