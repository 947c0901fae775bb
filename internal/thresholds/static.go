package thresholds

// NewSnapshot 从已合并的阈值直接构造快照（测试和嵌入式调用使用）
func NewSnapshot(defaults CategoryThresholds, categories map[string]CategoryThresholds, goldSKUs []string) *Snapshot {
	cats := make(map[string]CategoryThresholds, len(categories))
	for name, th := range categories {
		cats[name] = th
	}

	gold := make(map[string]struct{}, len(goldSKUs))
	for _, sku := range goldSKUs {
		gold[sku] = struct{}{}
	}

	return &Snapshot{
		defaults:   defaults,
		categories: cats,
		goldSKUs:   gold,
	}
}

// StaticProvider 固定快照的 Provider（不支持热更新）
type StaticProvider struct {
	snap *Snapshot
}

// NewStaticProvider 创建 StaticProvider
func NewStaticProvider(snap *Snapshot) *StaticProvider {
	return &StaticProvider{snap: snap}
}

// Snapshot 实现 Provider 接口
func (p *StaticProvider) Snapshot() *Snapshot {
	return p.snap
}

// Reload 实现 Provider 接口（静态配置无需重载）
func (p *StaticProvider) Reload() error {
	return nil
}
