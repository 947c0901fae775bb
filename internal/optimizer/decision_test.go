package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decide 便捷封装：先判模式再诊断再决策
func decide(t *testing.T, snap *SKUSnapshot, gold map[string]struct{}) (Decision, ModeAssignment, []Diagnosis) {
	t.Helper()
	th := testThresholds()
	mode := ClassifyMode(snap, th)
	diags := Diagnose(snap, th)
	decision, guards := Decide(snap, mode, diags, th, gold)
	require.Len(t, guards, 5)
	return decision, mode, diags
}

func TestDecideOutOfStockHolds(t *testing.T) {
	// 断货 SKU：STOP 模式，动作 hold，调价幅度为零
	snap := healthySnapshot()
	snap.StockOnHand = 0
	snap.StockInTransit = 0
	snap.OrdersPerDay = 5

	decision, mode, diags := decide(t, &snap, nil)
	assert.Equal(t, ModeStop, mode.Mode)
	assert.Contains(t, diagnosisCodes(diags), CodeOutOfStockNow)

	assert.Equal(t, ActionHold, decision.Action)
	assert.Zero(t, decision.DeltaPct)
	assert.Empty(t, decision.BlockedBy)
	assert.InDelta(t, 0.855, decision.Confidence, 1e-9) // 0.90 × 0.95
	assert.Equal(t, 5, decision.PriorityLevel)          // 严重度 4 + 高销售额
}

func TestDecideOverstockDecreasesClippedToMaxStep(t *testing.T) {
	// 积压 SKU：CLEAR 倾向 -3% 叠加积压贡献 -4%，截断到单步上限 5%
	snap := healthySnapshot()
	snap.StockOnHand = 750
	snap.OrdersPerDay = 5

	decision, mode, diags := decide(t, &snap, nil)
	assert.Equal(t, ModeClear, mode.Mode)
	assert.Contains(t, diagnosisCodes(diags), CodeOverstock)

	assert.Equal(t, ActionDecrease, decision.Action)
	assert.Equal(t, -5.0, decision.DeltaPct)
	assert.Empty(t, decision.BlockedBy)
	assert.InDelta(t, 0.63, decision.Confidence, 1e-9) // 0.70 × 0.90
}

func TestDecideGrowthIncreases(t *testing.T) {
	// 高转化 SKU：GROWTH 倾向 +2% 叠加超市场表现 +3%
	snap := healthySnapshot()
	snap.CartAdds = 120
	snap.Orders = 60
	snap.SalesTrendPct = 10

	decision, mode, diags := decide(t, &snap, nil)
	assert.Equal(t, ModeGrowth, mode.Mode)
	assert.Contains(t, diagnosisCodes(diags), CodeAboveMarket)

	assert.Equal(t, ActionIncrease, decision.Action)
	assert.Equal(t, 5.0, decision.DeltaPct)
	assert.Empty(t, decision.BlockedBy)
	assert.InDelta(t, 0.595, decision.Confidence, 1e-9) // 0.70 × 0.85
}

func TestDecideCooldownForcesHold(t *testing.T) {
	// 刚调过价的 GROWTH SKU：冷却期拦截，强制 hold
	snap := healthySnapshot()
	snap.CartAdds = 120
	snap.Orders = 60
	snap.SalesTrendPct = 10
	snap.DaysSinceLastChange = 2

	decision, _, _ := decide(t, &snap, nil)
	assert.Equal(t, ActionHold, decision.Action)
	assert.Zero(t, decision.DeltaPct)
	assert.Equal(t, []string{GuardCooldown}, decision.BlockedBy)

	// 拦截记录进入理由链
	var guardEntries int
	for _, entry := range decision.ReasonChain {
		if entry.Kind == ReasonKindGuard {
			guardEntries++
			assert.Equal(t, GuardCooldown, entry.Code)
		}
	}
	assert.Equal(t, 1, guardEntries)
}

func TestDecideLowConfidenceRoutedToManualReview(t *testing.T) {
	// 脏数据拉低置信度：0.70 × 0.90 × 0.50 = 0.315 < 门槛 0.5
	snap := healthySnapshot()
	snap.StockOnHand = 750
	snap.OrdersPerDay = 5
	snap.BuyoutPct = 150 // 触发 data_quality

	decision, _, diags := decide(t, &snap, nil)
	assert.Contains(t, diagnosisCodes(diags), CodeDataQuality)

	assert.Equal(t, ActionHold, decision.Action)
	assert.Zero(t, decision.DeltaPct)
	assert.Contains(t, decision.BlockedBy, GuardConfidenceFloor)
	assert.InDelta(t, 0.315, decision.Confidence, 1e-9)
}

func TestDecideGoldSKUNotDecreased(t *testing.T) {
	snap := healthySnapshot()
	snap.SKU = "SKU-FLAGSHIP-001"
	snap.StockOnHand = 750
	snap.OrdersPerDay = 5
	gold := map[string]struct{}{"SKU-FLAGSHIP-001": {}}

	decision, mode, _ := decide(t, &snap, gold)
	assert.Equal(t, ModeClear, mode.Mode)
	assert.Equal(t, ActionHold, decision.Action)
	assert.Contains(t, decision.BlockedBy, GuardGoldSKU)
}

func TestDecideHealthyCowHolds(t *testing.T) {
	// 无诊断无拦截的 SKU 同样产出有效决策
	snap := healthySnapshot()

	decision, mode, diags := decide(t, &snap, nil)
	assert.Equal(t, ModeCow, mode.Mode)
	assert.Empty(t, diags)

	assert.Equal(t, ActionHold, decision.Action)
	assert.Zero(t, decision.DeltaPct)
	assert.Empty(t, decision.BlockedBy)
	assert.InDelta(t, 0.60, decision.Confidence, 1e-9)
	assert.Equal(t, 1, decision.PriorityLevel)
}

func TestDecideLowSamplePenalty(t *testing.T) {
	snap := healthySnapshot()
	snap.Views = 100
	snap.CartAdds = 5
	snap.Orders = 2

	decision, mode, _ := decide(t, &snap, nil)
	assert.Equal(t, ModeCow, mode.Mode)
	assert.InDelta(t, 0.36, decision.Confidence, 1e-9) // 0.60 × 0.60
}

func TestDecideRespectsCategoryMaxStep(t *testing.T) {
	// 品类单步上限收紧到 3%：净贡献 -7% 截断到 -3%
	th := testThresholds()
	th.MaxStepPct = 3

	snap := healthySnapshot()
	snap.StockOnHand = 750
	snap.OrdersPerDay = 5

	mode := ClassifyMode(&snap, th)
	diags := Diagnose(&snap, th)
	decision, _ := Decide(&snap, mode, diags, th, nil)

	assert.Equal(t, ActionDecrease, decision.Action)
	assert.Equal(t, -3.0, decision.DeltaPct)
}

func TestDecideDeltaSignMatchesAction(t *testing.T) {
	snaps := map[string]SKUSnapshot{
		"healthy": healthySnapshot(),
		"out_of_stock": func() SKUSnapshot {
			s := healthySnapshot()
			s.StockOnHand = 0
			s.OrdersPerDay = 5
			return s
		}(),
		"overstock": func() SKUSnapshot {
			s := healthySnapshot()
			s.StockOnHand = 750
			s.OrdersPerDay = 5
			return s
		}(),
		"growth": func() SKUSnapshot {
			s := healthySnapshot()
			s.CartAdds = 120
			s.Orders = 60
			s.SalesTrendPct = 10
			return s
		}(),
	}

	for name, snap := range snaps {
		t.Run(name, func(t *testing.T) {
			decision, _, _ := decide(t, &snap, nil)

			switch decision.Action {
			case ActionIncrease:
				assert.Positive(t, decision.DeltaPct)
			case ActionDecrease:
				assert.Negative(t, decision.DeltaPct)
			default:
				assert.Zero(t, decision.DeltaPct)
			}

			// 置信度始终在 [0, 1]
			assert.GreaterOrEqual(t, decision.Confidence, 0.0)
			assert.LessOrEqual(t, decision.Confidence, 1.0)

			// 优先级始终在 [1, 5]
			assert.GreaterOrEqual(t, decision.PriorityLevel, 1)
			assert.LessOrEqual(t, decision.PriorityLevel, 5)
		})
	}
}

func TestDecideReasonChainStructure(t *testing.T) {
	// 理由链：模式开头、小结结尾，中间是诊断与拦截
	snap := healthySnapshot()
	snap.StockOnHand = 750
	snap.OrdersPerDay = 5

	decision, mode, diags := decide(t, &snap, nil)
	require.NotEmpty(t, decision.ReasonChain)

	first := decision.ReasonChain[0]
	assert.Equal(t, ReasonKindMode, first.Kind)
	assert.Equal(t, string(mode.Mode), first.Code)

	last := decision.ReasonChain[len(decision.ReasonChain)-1]
	assert.Equal(t, ReasonKindSummary, last.Kind)
	assert.Contains(t, last.Message, "decrease price by 5.0%")

	// 每条诊断都有对应的理由链条目
	assert.Len(t, decision.ReasonChain, 1+len(diags)+1)
}

func TestDecideReasonChainNeverEmpty(t *testing.T) {
	snaps := []SKUSnapshot{{}, healthySnapshot()}
	for i := range snaps {
		decision, _, _ := decide(t, &snaps[i], nil)
		require.NotEmpty(t, decision.ReasonChain)
		assert.Equal(t, ReasonKindSummary, decision.ReasonChain[len(decision.ReasonChain)-1].Kind)
	}
}
