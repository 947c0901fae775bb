package optimizer

import (
	"fmt"
	"math"

	"svetofor/optimizer/internal/thresholds"
)

// modeRule 单条模式判定规则
type modeRule struct {
	mode  Mode
	match func(snap *SKUSnapshot, th thresholds.CategoryThresholds) (bool, string)
}

// modePriority 模式优先级表
// 自上而下求值，先命中先生效：STOP > CLEAR > GROWTH，均不命中则为 COW
// 断货的高转化 SKU 依然是 STOP
var modePriority = []modeRule{
	{ModeStop, matchStop},
	{ModeClear, matchClear},
	{ModeGrowth, matchGrowth},
}

// ClassifyMode 判定运营模式（必定返回四种模式之一）
func ClassifyMode(snap *SKUSnapshot, th thresholds.CategoryThresholds) ModeAssignment {
	for _, rule := range modePriority {
		if ok, reason := rule.match(snap, th); ok {
			return ModeAssignment{Mode: rule.mode, Reason: reason}
		}
	}

	return ModeAssignment{
		Mode:   ModeCow,
		Reason: "stable performer, no mode rule triggered",
	}
}

// matchStop 断货或库存临界：没货就没得优化，补货优先
func matchStop(snap *SKUSnapshot, th thresholds.CategoryThresholds) (bool, string) {
	if snap.OrdersPerDay <= 0 {
		return false, ""
	}

	if snap.EffectiveStock() <= 0 {
		return true, fmt.Sprintf("out of stock with %.1f orders/day", snap.OrdersPerDay)
	}

	cover := snap.StockCoverDays()
	if cover < th.StockDaysCritical {
		return true, fmt.Sprintf("stock covers %.1f days, below critical %.0f days", cover, th.StockDaysCritical)
	}

	return false, ""
}

// matchClear 库存积压：资金被压住，倾向降价清货
// 日均订单为零但仍有库存的死库存同样判为 CLEAR
func matchClear(snap *SKUSnapshot, th thresholds.CategoryThresholds) (bool, string) {
	cover := snap.StockCoverDays()
	if cover <= th.StockDaysOverstock {
		return false, ""
	}

	if math.IsInf(cover, 1) {
		return true, fmt.Sprintf("dead stock: %d units with no sales", snap.EffectiveStock())
	}
	return true, fmt.Sprintf("stock covers %.0f days, above overstock %.0f days", cover, th.StockDaysOverstock)
}

// matchGrowth 转化优秀且流量充足、趋势不降：倾向提价吃量
func matchGrowth(snap *SKUSnapshot, th thresholds.CategoryThresholds) (bool, string) {
	if snap.Views < th.MinSampleViews {
		return false, ""
	}
	if snap.SalesTrendPct < 0 {
		return false, ""
	}

	conv := snap.CartConvPct()
	if conv <= th.CartConvHigh {
		return false, ""
	}

	return true, fmt.Sprintf("cart conversion %.1f%% above high threshold %.1f%% with %d views", conv, th.CartConvHigh, snap.Views)
}
