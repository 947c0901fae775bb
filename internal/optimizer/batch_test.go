package optimizer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svetofor/optimizer/internal/thresholds"
)

// testProvider 固定阈值的 Provider
func testProvider(goldSKUs ...string) thresholds.Provider {
	snap := thresholds.NewSnapshot(thresholds.DefaultThresholds(), nil, goldSKUs)
	return thresholds.NewStaticProvider(snap)
}

// batchInput 覆盖四种模式的批次输入
func batchInput() []SKUSnapshot {
	outOfStock := healthySnapshot()
	outOfStock.SKU = "SKU-STOP-001"
	outOfStock.StockOnHand = 0
	outOfStock.OrdersPerDay = 5

	overstock := healthySnapshot()
	overstock.SKU = "SKU-CLEAR-001"
	overstock.StockOnHand = 750
	overstock.OrdersPerDay = 5

	growth := healthySnapshot()
	growth.SKU = "SKU-GROWTH-001"
	growth.CartAdds = 120
	growth.Orders = 60
	growth.SalesTrendPct = 10

	stable := healthySnapshot()
	stable.SKU = "SKU-COW-001"

	return []SKUSnapshot{outOfStock, overstock, growth, stable}
}

func TestRunBatchOneResultPerInputInOrder(t *testing.T) {
	engine := NewEngine(testProvider(), 4)
	snaps := batchInput()

	results := engine.RunBatch(context.Background(), snaps)
	require.Len(t, results, len(snaps))

	for i := range snaps {
		assert.Equal(t, snaps[i].SKU, results[i].SKU, "result %d out of order", i)
	}

	assert.Equal(t, ModeStop, results[0].Mode.Mode)
	assert.Equal(t, ModeClear, results[1].Mode.Mode)
	assert.Equal(t, ModeGrowth, results[2].Mode.Mode)
	assert.Equal(t, ModeCow, results[3].Mode.Mode)
}

func TestRunBatchResultFieldsPopulated(t *testing.T) {
	engine := NewEngine(testProvider(), 0)
	results := engine.RunBatch(context.Background(), batchInput())

	for _, res := range results {
		assert.NotEmpty(t, res.Recommendation)
		assert.NotEmpty(t, res.Summary)
		assert.NotEmpty(t, res.Urgency)
		assert.NotEmpty(t, res.Decision.ReasonChain)
		assert.Len(t, res.Guards, 5)
	}
}

func TestRunBatchIdempotent(t *testing.T) {
	// 核心路径无时钟无随机：同一输入同一配置，两次运行结果逐字节一致
	engine := NewEngine(testProvider("SKU-GROWTH-001"), 4)
	snaps := batchInput()

	first, err := json.Marshal(engine.RunBatch(context.Background(), snaps))
	require.NoError(t, err)
	second, err := json.Marshal(engine.RunBatch(context.Background(), snaps))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunBatchDeterministicAcrossWorkerCounts(t *testing.T) {
	// 并发度不影响结果
	snaps := batchInput()

	serial, err := json.Marshal(NewEngine(testProvider(), 1).RunBatch(context.Background(), snaps))
	require.NoError(t, err)
	parallel, err := json.Marshal(NewEngine(testProvider(), 8).RunBatch(context.Background(), snaps))
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestRunBatchEmptyInput(t *testing.T) {
	engine := NewEngine(testProvider(), 4)
	results := engine.RunBatch(context.Background(), nil)
	assert.Empty(t, results)
}

func TestRunBatchDirtyRecordDoesNotPoisonBatch(t *testing.T) {
	// 单条脏记录降级为 data_quality，其余 SKU 正常产出
	dirty := SKUSnapshot{
		SKU:          "SKU-DIRTY-001",
		Category:     "apparel",
		StockOnHand:  -10,
		OrdersPerDay: -2,
		Price:        -1,
		BuyoutPct:    250,
	}
	snaps := append([]SKUSnapshot{dirty}, batchInput()...)

	engine := NewEngine(testProvider(), 4)
	results := engine.RunBatch(context.Background(), snaps)
	require.Len(t, results, len(snaps))

	assert.Equal(t, ActionHold, results[0].Decision.Action)
	assert.Contains(t, diagnosisCodes(results[0].Diagnoses), CodeDataQuality)

	// 其余结果不受影响
	assert.Equal(t, ModeStop, results[1].Mode.Mode)
	assert.Equal(t, ActionDecrease, results[2].Decision.Action)
}

func TestRunBatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(testProvider(), 2)
	snaps := batchInput()
	results := engine.RunBatch(ctx, snaps)

	// 取消后每个输入依然有结果：已处理的正常，未处理的兜底 hold
	require.Len(t, results, len(snaps))
	for i, res := range results {
		assert.Equal(t, snaps[i].SKU, res.SKU)
		assert.NotEmpty(t, res.Decision.ReasonChain)
	}
}

func TestRunBatchGoldSKUProtected(t *testing.T) {
	overstock := healthySnapshot()
	overstock.SKU = "SKU-FLAGSHIP-001"
	overstock.StockOnHand = 750
	overstock.OrdersPerDay = 5

	engine := NewEngine(testProvider("SKU-FLAGSHIP-001"), 1)
	results := engine.RunBatch(context.Background(), []SKUSnapshot{overstock})
	require.Len(t, results, 1)

	assert.Equal(t, ActionHold, results[0].Decision.Action)
	assert.Contains(t, results[0].Decision.BlockedBy, GuardGoldSKU)
}

func TestRunBatchUrgencyTags(t *testing.T) {
	engine := NewEngine(testProvider(), 4)
	results := engine.RunBatch(context.Background(), batchInput())
	require.Len(t, results, 4)

	// STOP 断货 + 高销售额 → 最高优先级
	assert.Equal(t, UrgencyHigh, results[0].Urgency)
	// 稳定 COW → 低优先级
	assert.Equal(t, UrgencyLow, results[3].Urgency)
}
