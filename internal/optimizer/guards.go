package optimizer

import (
	"fmt"

	"svetofor/optimizer/internal/thresholds"
)

// 保护检查名称常量
const (
	GuardMarginFloor      = "margin_floor"
	GuardCooldown         = "cooldown"
	GuardStockForIncrease = "stock_for_increase"
	GuardConfidenceFloor  = "confidence_floor"
	GuardGoldSKU          = "gold_sku"
)

// Proposed 待校验的拟定动作（决策引擎在保护检查前算出的初步结论）
type Proposed struct {
	Action     Action
	DeltaPct   float64
	Confidence float64
}

// guardFunc 单项保护检查
type guardFunc func(snap *SKUSnapshot, mode Mode, proposed Proposed, th thresholds.CategoryThresholds, gold map[string]struct{}) GuardResult

// guardOrder 保护检查执行顺序（全部无条件执行，不短路）
var guardOrder = []guardFunc{
	guardMarginFloor,
	guardCooldown,
	guardStockForIncrease,
	guardConfidenceFloor,
	guardGoldSKU,
}

// EvaluateGuards 逐一执行全部保护检查
// 每项检查无论拦截与否都会产生一条记录，形成完整审计链
func EvaluateGuards(snap *SKUSnapshot, mode Mode, proposed Proposed, th thresholds.CategoryThresholds, gold map[string]struct{}) []GuardResult {
	results := make([]GuardResult, 0, len(guardOrder))
	for _, guard := range guardOrder {
		results = append(results, guard(snap, mode, proposed, th, gold))
	}
	return results
}

// guardMarginFloor 毛利底线：降价后毛利率不得跌破品类最低线
func guardMarginFloor(snap *SKUSnapshot, mode Mode, proposed Proposed, th thresholds.CategoryThresholds, gold map[string]struct{}) GuardResult {
	if proposed.Action != ActionDecrease {
		return GuardResult{Guard: GuardMarginFloor, Blocked: false, Reason: "no price decrease proposed"}
	}
	if snap.Price <= 0 {
		return GuardResult{
			Guard:   GuardMarginFloor,
			Blocked: true,
			Reason:  "price unknown, cannot verify margin floor",
		}
	}

	newPrice := snap.Price * (1 + proposed.DeltaPct/100)
	if newPrice <= 0 {
		return GuardResult{
			Guard:   GuardMarginFloor,
			Blocked: true,
			Reason:  fmt.Sprintf("decrease %.1f%% collapses price to zero", proposed.DeltaPct),
		}
	}

	newMargin := (newPrice - snap.CostPrice) / newPrice * 100
	if newMargin < th.MinMarginPct {
		return GuardResult{
			Guard:   GuardMarginFloor,
			Blocked: true,
			Reason:  fmt.Sprintf("decrease %.1f%% drops margin to %.1f%%, floor is %.1f%%", proposed.DeltaPct, newMargin, th.MinMarginPct),
		}
	}

	return GuardResult{
		Guard:   GuardMarginFloor,
		Blocked: false,
		Reason:  fmt.Sprintf("margin after change %.1f%% stays above floor %.1f%%", newMargin, th.MinMarginPct),
	}
}

// guardCooldown 冷却期：距上次调价不足 N 天时禁止再次调价，防止价格震荡
func guardCooldown(snap *SKUSnapshot, mode Mode, proposed Proposed, th thresholds.CategoryThresholds, gold map[string]struct{}) GuardResult {
	if proposed.Action == ActionHold {
		return GuardResult{Guard: GuardCooldown, Blocked: false, Reason: "no price change proposed"}
	}
	// 无调价记录视为冷却期已过
	if snap.DaysSinceLastChange < 0 {
		return GuardResult{Guard: GuardCooldown, Blocked: false, Reason: "no prior price change on record"}
	}

	if snap.DaysSinceLastChange < th.CooldownDays {
		return GuardResult{
			Guard:   GuardCooldown,
			Blocked: true,
			Reason:  fmt.Sprintf("last change %d days ago, cooldown is %d days", snap.DaysSinceLastChange, th.CooldownDays),
		}
	}

	return GuardResult{
		Guard:   GuardCooldown,
		Blocked: false,
		Reason:  fmt.Sprintf("last change %d days ago, outside %d day cooldown", snap.DaysSinceLastChange, th.CooldownDays),
	}
}

// guardStockForIncrease 提价需库存支撑：库存临界时补货优先于提价
func guardStockForIncrease(snap *SKUSnapshot, mode Mode, proposed Proposed, th thresholds.CategoryThresholds, gold map[string]struct{}) GuardResult {
	if proposed.Action != ActionIncrease {
		return GuardResult{Guard: GuardStockForIncrease, Blocked: false, Reason: "no price increase proposed"}
	}

	cover := snap.StockCoverDays()
	if cover < th.StockDaysCritical {
		return GuardResult{
			Guard:   GuardStockForIncrease,
			Blocked: true,
			Reason:  fmt.Sprintf("stock covers %.1f days, below critical %.0f days, restock first", cover, th.StockDaysCritical),
		}
	}

	return GuardResult{
		Guard:   GuardStockForIncrease,
		Blocked: false,
		Reason:  "stock cover sufficient for increase",
	}
}

// guardConfidenceFloor 置信度门槛：低置信度决策不自动执行，转人工复核
func guardConfidenceFloor(snap *SKUSnapshot, mode Mode, proposed Proposed, th thresholds.CategoryThresholds, gold map[string]struct{}) GuardResult {
	if proposed.Action == ActionHold {
		return GuardResult{Guard: GuardConfidenceFloor, Blocked: false, Reason: "no price change proposed"}
	}

	if proposed.Confidence < th.ConfidenceFloor {
		return GuardResult{
			Guard:   GuardConfidenceFloor,
			Blocked: true,
			Reason:  fmt.Sprintf("confidence %.2f below floor %.2f, route to manual review", proposed.Confidence, th.ConfidenceFloor),
		}
	}

	return GuardResult{
		Guard:   GuardConfidenceFloor,
		Blocked: false,
		Reason:  fmt.Sprintf("confidence %.2f above floor %.2f", proposed.Confidence, th.ConfidenceFloor),
	}
}

// guardGoldSKU 重点 SKU 保护：白名单里的旗舰款不自动降价
func guardGoldSKU(snap *SKUSnapshot, mode Mode, proposed Proposed, th thresholds.CategoryThresholds, gold map[string]struct{}) GuardResult {
	if proposed.Action != ActionDecrease {
		return GuardResult{Guard: GuardGoldSKU, Blocked: false, Reason: "no price decrease proposed"}
	}

	if _, ok := gold[snap.SKU]; ok {
		return GuardResult{
			Guard:   GuardGoldSKU,
			Blocked: true,
			Reason:  "gold SKU, automatic decrease is not allowed",
		}
	}

	return GuardResult{Guard: GuardGoldSKU, Blocked: false, Reason: "not in gold SKU list"}
}
