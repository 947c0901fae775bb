package optimizer

import (
	"fmt"
	"math"
	"strings"

	"svetofor/optimizer/internal/thresholds"
)

// deltaWeight 诊断贡献权重
// delta 为带符号的调价贡献（%），support 为对置信度的支撑系数
type deltaWeight struct {
	delta   float64
	support float64
}

// diagnosisWeights 各诊断码的默认权重
// 精确系数属于运营侧可调参数，这里是工程默认值
var diagnosisWeights = map[string]deltaWeight{
	CodeOutOfStockNow:      {delta: 0, support: 0.95},
	CodeStockDepletesSoon:  {delta: +2.0, support: 0.85},
	CodeOverstock:          {delta: -4.0, support: 0.90},
	CodeLowCartConversion:  {delta: -2.0, support: 0.80},
	CodeLowOrderConversion: {delta: -1.5, support: 0.80},
	CodeHighAdCostShare:    {delta: -1.0, support: 0.75},
	CodeLowBuyoutRate:      {delta: -1.0, support: 0.70},
	CodeSalesTrendFalling:  {delta: -1.5, support: 0.75},
	CodeAboveMarket:        {delta: +3.0, support: 0.85},
	CodeDataQuality:        {delta: 0, support: 0.50},
}

// modeProfile 模式默认倾向
type modeProfile struct {
	action     Action
	delta      float64
	confidence float64
	severity   int // 1-4，越高越紧急
}

// modeBias 各模式的起始倾向
var modeBias = map[Mode]modeProfile{
	ModeStop:   {action: ActionHold, delta: 0, confidence: 0.90, severity: 4},
	ModeClear:  {action: ActionDecrease, delta: -3.0, confidence: 0.70, severity: 3},
	ModeGrowth: {action: ActionIncrease, delta: +2.0, confidence: 0.70, severity: 2},
	ModeCow:    {action: ActionHold, delta: 0, confidence: 0.60, severity: 1},
}

const (
	// minActionableStepPct 低于该幅度的调整不值得执行，归为 hold
	minActionableStepPct = 0.5

	// lowSamplePenalty 流量不足时的置信度折减系数
	lowSamplePenalty = 0.6

	// highRevenuePerDay 日均销售额超过该值的 SKU 优先级上调
	highRevenuePerDay = 5000.0
)

// Decide 组合模式、诊断与保护检查，产出最终决策
// 无诊断无拦截的 SKU 同样产出有效决策（模式默认倾向 + 模式置信度）
func Decide(snap *SKUSnapshot, mode ModeAssignment, diags []Diagnosis, th thresholds.CategoryThresholds, gold map[string]struct{}) (Decision, []GuardResult) {
	bias := modeBias[mode.Mode]

	// 1. 模式默认倾向 + 诊断加权贡献
	// STOP 是终结模式：没有库存就没有可优化的空间，诊断只进理由链不改动作
	delta := bias.delta
	confidence := bias.confidence
	for _, d := range diags {
		w, ok := diagnosisWeights[d.Code]
		if !ok {
			continue
		}
		if mode.Mode != ModeStop {
			delta += w.delta
		}
		confidence *= w.support
	}

	// 2. 截断到品类单步上限
	delta = clamp(delta, -th.MaxStepPct, th.MaxStepPct)

	// 3. 样本量折减 + 置信度归一
	if snap.Views < th.MinSampleViews {
		confidence *= lowSamplePenalty
	}
	confidence = clamp(confidence, 0, 1)

	// 4. 由净贡献推导动作（微小幅度不执行）
	action := ActionHold
	switch {
	case mode.Mode == ModeStop:
		delta = 0
	case delta >= minActionableStepPct:
		action = ActionIncrease
	case delta <= -minActionableStepPct:
		action = ActionDecrease
	default:
		delta = 0
	}

	// 5. 保护检查：任一拦截即强制 hold
	proposed := Proposed{Action: action, DeltaPct: delta, Confidence: confidence}
	guards := EvaluateGuards(snap, mode.Mode, proposed, th, gold)

	blockedBy := make([]string, 0, 1)
	for _, g := range guards {
		if g.Blocked {
			blockedBy = append(blockedBy, g.Guard)
		}
	}
	if len(blockedBy) > 0 {
		action = ActionHold
		delta = 0
	}

	decision := Decision{
		Action:        action,
		DeltaPct:      delta,
		Confidence:    confidence,
		PriorityLevel: priorityLevel(snap, bias, action, delta, confidence),
		ReasonChain:   buildReasonChain(mode, diags, guards, action, delta, blockedBy),
	}
	if len(blockedBy) > 0 {
		decision.BlockedBy = blockedBy
	}

	return decision, guards
}

// priorityLevel 计算优先级（1-5，仅用于排序展示，不参与决策）
func priorityLevel(snap *SKUSnapshot, bias modeProfile, action Action, delta float64, confidence float64) int {
	level := bias.severity

	if action != ActionHold && confidence >= 0.75 {
		level++
	}
	if snap.RevenuePerDay() >= highRevenuePerDay {
		level++
	}

	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	return level
}

// buildReasonChain 组装理由链：模式 → 各诊断 → 各拦截 → 一行动作小结
func buildReasonChain(mode ModeAssignment, diags []Diagnosis, guards []GuardResult, action Action, delta float64, blockedBy []string) []ReasonEntry {
	chain := make([]ReasonEntry, 0, len(diags)+len(blockedBy)+2)

	chain = append(chain, ReasonEntry{
		Kind:    ReasonKindMode,
		Code:    string(mode.Mode),
		Message: mode.Reason,
	})

	for _, d := range diags {
		chain = append(chain, ReasonEntry{
			Kind:    ReasonKindDiagnosis,
			Code:    d.Code,
			Message: d.Reason,
		})
	}

	for _, g := range guards {
		if !g.Blocked {
			continue
		}
		chain = append(chain, ReasonEntry{
			Kind:    ReasonKindGuard,
			Code:    g.Guard,
			Message: g.Reason,
		})
	}

	chain = append(chain, ReasonEntry{
		Kind:    ReasonKindSummary,
		Code:    string(action),
		Message: summaryLine(action, delta, blockedBy),
	})

	return chain
}

// summaryLine 动作小结（理由链末尾固定一条）
func summaryLine(action Action, delta float64, blockedBy []string) string {
	if len(blockedBy) > 0 {
		return fmt.Sprintf("hold price, blocked by %s", strings.Join(blockedBy, ", "))
	}

	switch action {
	case ActionIncrease:
		return fmt.Sprintf("increase price by %.1f%%", delta)
	case ActionDecrease:
		return fmt.Sprintf("decrease price by %.1f%%", math.Abs(delta))
	default:
		return "hold price, no adjustment warranted"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
