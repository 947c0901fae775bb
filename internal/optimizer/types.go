package optimizer

import "math"

// Mode 运营模式（红绿灯分级）
type Mode string

// 运营模式常量
const (
	ModeStop   Mode = "STOP"   // 断货/临界库存，先补货再谈优化
	ModeClear  Mode = "CLEAR"  // 库存积压，倾向降价清货
	ModeCow    Mode = "COW"    // 稳定出单，维持现状
	ModeGrowth Mode = "GROWTH" // 转化优秀，倾向提价吃量
)

// Action 调价动作
type Action string

// 调价动作常量
const (
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
	ActionHold     Action = "hold"
)

// SKUSnapshot 单个 SKU 的运营快照（批次输入，引擎只读不落库）
type SKUSnapshot struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Category string `json:"category"`

	// 库存
	StockOnHand    int `json:"stock_on_hand"`
	StockInTransit int `json:"stock_in_transit"`

	// 销售与漏斗
	OrdersPerDay float64 `json:"orders_per_day"` // 日均订单量
	Views        int     `json:"views"`          // 曝光量
	CartAdds     int     `json:"cart_adds"`      // 加购量
	Orders       int     `json:"orders"`         // 下单量
	BuyoutPct    float64 `json:"buyout_pct"`     // 买断率（%）

	// 价格与广告
	Price      float64 `json:"price"`
	CostPrice  float64 `json:"cost_price"`
	AdSharePct float64 `json:"ad_share_pct"` // 广告费占销售额比例（%）

	// 趋势与调价历史
	SalesTrendPct       float64 `json:"sales_trend_pct"`        // 销量环比变化（%），负值为下滑
	DaysSinceLastChange int     `json:"days_since_last_change"` // 距上次调价天数，-1 表示无记录
}

// EffectiveStock 有效库存 = 在库 + 在途
func (s *SKUSnapshot) EffectiveStock() int {
	return s.StockOnHand + s.StockInTransit
}

// StockCoverDays 库存覆盖天数（日均订单为零且有库存时视为无限覆盖）
func (s *SKUSnapshot) StockCoverDays() float64 {
	stock := float64(s.EffectiveStock())
	if s.OrdersPerDay <= 0 {
		if stock > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return stock / s.OrdersPerDay
}

// CartConvPct 加购转化率（%）
func (s *SKUSnapshot) CartConvPct() float64 {
	if s.Views <= 0 {
		return 0
	}
	return float64(s.CartAdds) / float64(s.Views) * 100
}

// OrderConvPct 下单转化率（%）
func (s *SKUSnapshot) OrderConvPct() float64 {
	if s.CartAdds <= 0 {
		return 0
	}
	return float64(s.Orders) / float64(s.CartAdds) * 100
}

// MarginPct 当前毛利率（%）
func (s *SKUSnapshot) MarginPct() float64 {
	if s.Price <= 0 {
		return 0
	}
	return (s.Price - s.CostPrice) / s.Price * 100
}

// RevenuePerDay 日均销售额（优先级排序用）
func (s *SKUSnapshot) RevenuePerDay() float64 {
	return s.OrdersPerDay * s.Price
}

// ModeAssignment 模式判定结果
type ModeAssignment struct {
	Mode   Mode   `json:"mode"`
	Reason string `json:"reason"`
}

// Diagnosis 单项诊断结论
type Diagnosis struct {
	Block      string `json:"block"`       // stock/funnel/ads/sales/data
	Code       string `json:"code"`        // 稳定诊断码
	ActionHint string `json:"action_hint"` // 建议动作提示
	Reason     string `json:"reason"`      // 人类可读描述
}

// GuardResult 保护检查结果（无论是否拦截都会记录，形成完整审计链）
type GuardResult struct {
	Guard   string `json:"guard"`
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason"`
}

// 理由链条目类型常量
const (
	ReasonKindMode      = "mode"
	ReasonKindDiagnosis = "diagnosis"
	ReasonKindGuard     = "guard"
	ReasonKindSummary   = "summary"
)

// ReasonEntry 理由链单条目（结构化，消费方无需解析拼接文本）
type ReasonEntry struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Decision 最终调价决策
type Decision struct {
	Action        Action        `json:"action"`
	DeltaPct      float64       `json:"delta_pct"`
	Confidence    float64       `json:"confidence"`
	PriorityLevel int           `json:"priority_level"` // 1-5，仅用于排序
	BlockedBy     []string      `json:"blocked_by,omitempty"`
	ReasonChain   []ReasonEntry `json:"reason_chain"`
}

// 紧急程度标签常量
const (
	UrgencyHigh   = "HIGH"
	UrgencyMedium = "MEDIUM"
	UrgencyLow    = "LOW"
)

// Result 单个 SKU 的完整优化结果
type Result struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Category string `json:"category"`

	Mode      ModeAssignment `json:"mode"`
	Diagnoses []Diagnosis    `json:"diagnoses"`
	Guards    []GuardResult  `json:"guards"`
	Decision  Decision       `json:"decision"`

	Recommendation string  `json:"recommendation"`
	Summary        string  `json:"summary"`
	Urgency        string  `json:"urgency"`
	RevenueAtStake float64 `json:"revenue_at_stake"` // 日均销售额
}
