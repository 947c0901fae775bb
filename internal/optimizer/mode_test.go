package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"svetofor/optimizer/internal/thresholds"
)

// testThresholds 测试用阈值（内置默认值）
func testThresholds() thresholds.CategoryThresholds {
	return thresholds.DefaultThresholds()
}

// healthySnapshot 不触发任何模式规则和诊断的基准快照
func healthySnapshot() SKUSnapshot {
	return SKUSnapshot{
		SKU:      "SKU-BASE-001",
		Name:     "Baseline Tee",
		Category: "apparel",

		StockOnHand:    100,
		StockInTransit: 0,

		OrdersPerDay: 2,
		Views:        1000,
		CartAdds:     50, // 加购转化 5%，处于 [3, 8] 之间
		Orders:       25, // 下单转化 50%
		BuyoutPct:    80,

		Price:      1000,
		CostPrice:  400,
		AdSharePct: 10,

		SalesTrendPct:       0,
		DaysSinceLastChange: 30,
	}
}

func TestClassifyModeStopOutOfStock(t *testing.T) {
	snap := healthySnapshot()
	snap.StockOnHand = 0
	snap.StockInTransit = 0
	snap.OrdersPerDay = 5

	got := ClassifyMode(&snap, testThresholds())
	assert.Equal(t, ModeStop, got.Mode)
	assert.NotEmpty(t, got.Reason)
}

func TestClassifyModeStopCriticalCover(t *testing.T) {
	snap := healthySnapshot()
	snap.StockOnHand = 10
	snap.OrdersPerDay = 5 // 覆盖 2 天 < 紧急线 7 天

	got := ClassifyMode(&snap, testThresholds())
	assert.Equal(t, ModeStop, got.Mode)
}

func TestClassifyModeClearOverstock(t *testing.T) {
	snap := healthySnapshot()
	snap.StockOnHand = 750
	snap.OrdersPerDay = 5 // 覆盖 150 天 > 积压线 90 天

	got := ClassifyMode(&snap, testThresholds())
	assert.Equal(t, ModeClear, got.Mode)
}

func TestClassifyModeClearDeadStock(t *testing.T) {
	// 有库存但零销量：死库存判 CLEAR 而非 COW
	snap := healthySnapshot()
	snap.StockOnHand = 200
	snap.OrdersPerDay = 0
	snap.Orders = 0
	snap.CartAdds = 0

	got := ClassifyMode(&snap, testThresholds())
	assert.Equal(t, ModeClear, got.Mode)
	assert.Contains(t, got.Reason, "dead stock")
}

func TestClassifyModeGrowth(t *testing.T) {
	snap := healthySnapshot()
	snap.CartAdds = 120 // 加购转化 12% > 优秀线 8%
	snap.Orders = 60
	snap.SalesTrendPct = 10

	got := ClassifyMode(&snap, testThresholds())
	assert.Equal(t, ModeGrowth, got.Mode)
}

func TestClassifyModeGrowthRequiresSampleAndTrend(t *testing.T) {
	th := testThresholds()

	// 流量不足：高转化也不判 GROWTH
	lowViews := healthySnapshot()
	lowViews.Views = 100
	lowViews.CartAdds = 20 // 20% 转化
	lowViews.Orders = 10
	assert.Equal(t, ModeCow, ClassifyMode(&lowViews, th).Mode)

	// 趋势下滑：高转化也不判 GROWTH
	falling := healthySnapshot()
	falling.CartAdds = 120
	falling.Orders = 60
	falling.SalesTrendPct = -5
	assert.Equal(t, ModeCow, ClassifyMode(&falling, th).Mode)
}

func TestClassifyModeStopBeatsGrowth(t *testing.T) {
	// 断货的高转化 SKU：STOP 优先于 GROWTH
	snap := healthySnapshot()
	snap.StockOnHand = 0
	snap.OrdersPerDay = 5
	snap.CartAdds = 120
	snap.Orders = 60
	snap.SalesTrendPct = 10

	got := ClassifyMode(&snap, testThresholds())
	assert.Equal(t, ModeStop, got.Mode)
}

func TestClassifyModeDefaultsToCow(t *testing.T) {
	snap := healthySnapshot()
	got := ClassifyMode(&snap, testThresholds())
	assert.Equal(t, ModeCow, got.Mode)
	assert.NotEmpty(t, got.Reason)
}

func TestClassifyModeTotality(t *testing.T) {
	// 任意输入必定落到四种模式之一，且带非空理由
	th := testThresholds()
	snaps := []SKUSnapshot{
		{},
		{StockOnHand: -5, OrdersPerDay: -1, Price: -10},
		{StockOnHand: 1000000, OrdersPerDay: 0.001},
		healthySnapshot(),
	}

	valid := map[Mode]bool{ModeStop: true, ModeClear: true, ModeCow: true, ModeGrowth: true}
	for i := range snaps {
		got := ClassifyMode(&snaps[i], th)
		assert.True(t, valid[got.Mode], "snapshot %d produced unknown mode %q", i, got.Mode)
		assert.NotEmpty(t, got.Reason)
	}
}
