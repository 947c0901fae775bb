package thresholds

// CategoryThresholds 品类阈值（合并后的完整集合，所有字段均有效）
type CategoryThresholds struct {
	StockDaysCritical  float64 `mapstructure:"stock_days_critical"`  // 库存覆盖天数-紧急线
	StockDaysWarning   float64 `mapstructure:"stock_days_warning"`   // 库存覆盖天数-预警线
	StockDaysOverstock float64 `mapstructure:"stock_days_overstock"` // 库存覆盖天数-积压线
	CartConvLow        float64 `mapstructure:"cart_conv_low"`        // 加购转化率下限（%）
	CartConvHigh       float64 `mapstructure:"cart_conv_high"`       // 加购转化率优秀线（%）
	OrderConvLow       float64 `mapstructure:"order_conv_low"`       // 下单转化率下限（%）
	OrderConvHigh      float64 `mapstructure:"order_conv_high"`      // 下单转化率优秀线（%）
	AdShareHigh        float64 `mapstructure:"ad_share_high"`        // 广告费占比-偏高（%）
	AdShareCritical    float64 `mapstructure:"ad_share_critical"`    // 广告费占比-严重（%）
	BuyoutLow          float64 `mapstructure:"buyout_low"`           // 买断率下限（%）
	SalesDropPct       float64 `mapstructure:"sales_drop_pct"`       // 销量下滑判定幅度（%）
	MaxStepPct         float64 `mapstructure:"max_step_pct"`         // 单次调价幅度上限（%）
	MinMarginPct       float64 `mapstructure:"min_margin_pct"`       // 最低毛利率（%）
	CooldownDays       int     `mapstructure:"cooldown_days"`        // 调价冷却天数
	MinSampleViews     int     `mapstructure:"min_sample_views"`     // 漏斗检查最小曝光量
	MinSampleOrders    int     `mapstructure:"min_sample_orders"`    // 订单类检查最小订单量
	ConfidenceFloor    float64 `mapstructure:"confidence_floor"`     // 自动执行的置信度门槛
}

// CategoryOverride 品类覆盖层
// 字段为指针类型，nil 表示沿用默认值，逐字段显式合并（不走反射）
type CategoryOverride struct {
	StockDaysCritical  *float64 `mapstructure:"stock_days_critical"`
	StockDaysWarning   *float64 `mapstructure:"stock_days_warning"`
	StockDaysOverstock *float64 `mapstructure:"stock_days_overstock"`
	CartConvLow        *float64 `mapstructure:"cart_conv_low"`
	CartConvHigh       *float64 `mapstructure:"cart_conv_high"`
	OrderConvLow       *float64 `mapstructure:"order_conv_low"`
	OrderConvHigh      *float64 `mapstructure:"order_conv_high"`
	AdShareHigh        *float64 `mapstructure:"ad_share_high"`
	AdShareCritical    *float64 `mapstructure:"ad_share_critical"`
	BuyoutLow          *float64 `mapstructure:"buyout_low"`
	SalesDropPct       *float64 `mapstructure:"sales_drop_pct"`
	MaxStepPct         *float64 `mapstructure:"max_step_pct"`
	MinMarginPct       *float64 `mapstructure:"min_margin_pct"`
	CooldownDays       *int     `mapstructure:"cooldown_days"`
	MinSampleViews     *int     `mapstructure:"min_sample_views"`
	MinSampleOrders    *int     `mapstructure:"min_sample_orders"`
	ConfidenceFloor    *float64 `mapstructure:"confidence_floor"`
}

// Merge 将覆盖层合并到默认值上，覆盖层字段非 nil 时生效
func Merge(defaults CategoryThresholds, override CategoryOverride) CategoryThresholds {
	merged := defaults

	if override.StockDaysCritical != nil {
		merged.StockDaysCritical = *override.StockDaysCritical
	}
	if override.StockDaysWarning != nil {
		merged.StockDaysWarning = *override.StockDaysWarning
	}
	if override.StockDaysOverstock != nil {
		merged.StockDaysOverstock = *override.StockDaysOverstock
	}
	if override.CartConvLow != nil {
		merged.CartConvLow = *override.CartConvLow
	}
	if override.CartConvHigh != nil {
		merged.CartConvHigh = *override.CartConvHigh
	}
	if override.OrderConvLow != nil {
		merged.OrderConvLow = *override.OrderConvLow
	}
	if override.OrderConvHigh != nil {
		merged.OrderConvHigh = *override.OrderConvHigh
	}
	if override.AdShareHigh != nil {
		merged.AdShareHigh = *override.AdShareHigh
	}
	if override.AdShareCritical != nil {
		merged.AdShareCritical = *override.AdShareCritical
	}
	if override.BuyoutLow != nil {
		merged.BuyoutLow = *override.BuyoutLow
	}
	if override.SalesDropPct != nil {
		merged.SalesDropPct = *override.SalesDropPct
	}
	if override.MaxStepPct != nil {
		merged.MaxStepPct = *override.MaxStepPct
	}
	if override.MinMarginPct != nil {
		merged.MinMarginPct = *override.MinMarginPct
	}
	if override.CooldownDays != nil {
		merged.CooldownDays = *override.CooldownDays
	}
	if override.MinSampleViews != nil {
		merged.MinSampleViews = *override.MinSampleViews
	}
	if override.MinSampleOrders != nil {
		merged.MinSampleOrders = *override.MinSampleOrders
	}
	if override.ConfidenceFloor != nil {
		merged.ConfidenceFloor = *override.ConfidenceFloor
	}

	return merged
}

// DefaultThresholds 内置默认阈值（配置文件缺省字段的兜底）
func DefaultThresholds() CategoryThresholds {
	return CategoryThresholds{
		StockDaysCritical:  7,
		StockDaysWarning:   14,
		StockDaysOverstock: 90,
		CartConvLow:        3,
		CartConvHigh:       8,
		OrderConvLow:       20,
		OrderConvHigh:      40,
		AdShareHigh:        15,
		AdShareCritical:    30,
		BuyoutLow:          70,
		SalesDropPct:       30,
		MaxStepPct:         5,
		MinMarginPct:       10,
		CooldownDays:       7,
		MinSampleViews:     300,
		MinSampleOrders:    10,
		ConfidenceFloor:    0.5,
	}
}
