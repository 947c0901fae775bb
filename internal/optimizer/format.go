package optimizer

import (
	"fmt"
	"math"
	"strings"
)

// FormatRecommendation 生成单行可展示的操作建议
func FormatRecommendation(res *Result) string {
	d := res.Decision

	switch d.Action {
	case ActionIncrease:
		return fmt.Sprintf("[%s] %s: raise price by %.1f%% (confidence %.0f%%)",
			res.Mode.Mode, res.SKU, d.DeltaPct, d.Confidence*100)
	case ActionDecrease:
		return fmt.Sprintf("[%s] %s: lower price by %.1f%% (confidence %.0f%%)",
			res.Mode.Mode, res.SKU, math.Abs(d.DeltaPct), d.Confidence*100)
	}

	if len(d.BlockedBy) > 0 {
		return fmt.Sprintf("[%s] %s: hold price, blocked by %s",
			res.Mode.Mode, res.SKU, strings.Join(d.BlockedBy, ", "))
	}
	return fmt.Sprintf("[%s] %s: hold price", res.Mode.Mode, res.SKU)
}

// FormatSummary 生成单 SKU 摘要（模式原因 + 诊断数 + 动作小结）
func FormatSummary(res *Result) string {
	var b strings.Builder

	b.WriteString(res.Mode.Reason)
	if n := len(res.Diagnoses); n > 0 {
		fmt.Fprintf(&b, "; %d issue(s) diagnosed", n)
	}

	// 理由链末尾固定是动作小结
	if n := len(res.Decision.ReasonChain); n > 0 {
		b.WriteString("; ")
		b.WriteString(res.Decision.ReasonChain[n-1].Message)
	}

	return b.String()
}

// FormatBatchSummary 生成批次汇总文本
func FormatBatchSummary(stats ActionStats) string {
	return fmt.Sprintf("processed %d SKU(s): %d increase, %d decrease, %d hold, %d blocked (STOP=%d CLEAR=%d GROWTH=%d COW=%d)",
		stats.Total, stats.Increase, stats.Decrease, stats.Hold, stats.Blocked,
		stats.ByMode[ModeStop], stats.ByMode[ModeClear], stats.ByMode[ModeGrowth], stats.ByMode[ModeCow])
}

// urgencyTag 由优先级推导紧急程度标签
func urgencyTag(priorityLevel int) string {
	switch {
	case priorityLevel >= 4:
		return UrgencyHigh
	case priorityLevel >= 3:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}
