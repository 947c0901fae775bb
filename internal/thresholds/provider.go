package thresholds

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/atomic"

	"svetofor/optimizer/pkg/logger"
)

// Provider 阈值配置提供者
// Snapshot 返回不可变配置快照，批次在整个运行期间持有同一个快照
type Provider interface {
	// Snapshot 获取当前生效的配置快照
	Snapshot() *Snapshot

	// Reload 重新加载配置（解析失败时旧配置继续生效）
	Reload() error
}

// Snapshot 不可变配置快照
// 品类阈值在加载时已完成合并，读取路径上无任何锁
type Snapshot struct {
	defaults   CategoryThresholds
	categories map[string]CategoryThresholds
	goldSKUs   map[string]struct{}
}

// Get 获取品类阈值（未配置的品类返回默认值）
func (s *Snapshot) Get(category string) CategoryThresholds {
	if th, ok := s.categories[category]; ok {
		return th
	}
	return s.defaults
}

// GoldSKUs 获取重点 SKU 白名单
func (s *Snapshot) GoldSKUs() map[string]struct{} {
	return s.goldSKUs
}

// fileSchema 配置文件结构（YAML）
type fileSchema struct {
	Defaults   CategoryOverride            `mapstructure:"defaults"`
	Categories map[string]CategoryOverride `mapstructure:"categories"`
	GoldSKUs   []string                    `mapstructure:"gold_skus"`
}

// FileProvider 基于 YAML 文件的 Provider 实现
// 当前快照由 atomic.Value 持有：多读者无锁读取，Reload 时整体替换
type FileProvider struct {
	path   string
	active atomic.Value // *Snapshot
}

// NewFileProvider 创建 FileProvider（首次加载失败直接返回错误）
func NewFileProvider(path string) (*FileProvider, error) {
	p := &FileProvider{path: path}

	snap, err := loadSnapshot(path)
	if err != nil {
		return nil, fmt.Errorf("load thresholds config failed: %w", err)
	}
	p.active.Store(snap)

	return p, nil
}

// Snapshot 实现 Provider 接口
func (p *FileProvider) Snapshot() *Snapshot {
	return p.active.Load().(*Snapshot)
}

// Reload 实现 Provider 接口
// 解析或校验失败时不替换快照，当前配置继续生效
func (p *FileProvider) Reload() error {
	snap, err := loadSnapshot(p.path)
	if err != nil {
		return fmt.Errorf("reload thresholds config failed: %w", err)
	}

	p.active.Store(snap)
	return nil
}

// Watch 监听配置文件变更并自动 Reload
// Reload 失败只记录日志，不影响当前快照；ctx 取消时退出
func (p *FileProvider) Watch(ctx context.Context, log logger.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create thresholds watcher failed: %w", err)
	}

	// 监听目录而非文件本身（编辑器原子替换会让文件级 watch 失效）
	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch thresholds dir failed: %w", err)
	}

	target := filepath.Clean(p.path)

	go func() {
		defer watcher.Close()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				if err := p.Reload(); err != nil {
					log.Errorf(ctx, "[Thresholds] Reload failed, keeping active snapshot: %v", err)
					continue
				}
				log.Infof(ctx, "[Thresholds] Config reloaded: %s", p.path)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf(ctx, "[Thresholds] Watcher error: %v", err)

			case <-ctx.Done():
				log.Infof(ctx, "[Thresholds] Watcher exiting")
				return
			}
		}
	}()

	return nil
}

// loadSnapshot 加载并校验配置，合并所有品类阈值
func loadSnapshot(path string) (*Snapshot, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var schema fileSchema
	if err := v.Unmarshal(&schema); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	// defaults 段本身也是对内置默认值的覆盖层
	defaults := Merge(DefaultThresholds(), schema.Defaults)
	if err := validate("defaults", defaults); err != nil {
		return nil, err
	}

	categories := make(map[string]CategoryThresholds, len(schema.Categories))
	for name, override := range schema.Categories {
		merged := Merge(defaults, override)
		if err := validate(name, merged); err != nil {
			return nil, err
		}
		categories[name] = merged
	}

	goldSKUs := make(map[string]struct{}, len(schema.GoldSKUs))
	for _, sku := range schema.GoldSKUs {
		if sku == "" {
			continue
		}
		goldSKUs[sku] = struct{}{}
	}

	return &Snapshot{
		defaults:   defaults,
		categories: categories,
		goldSKUs:   goldSKUs,
	}, nil
}

// validate 校验单个品类的合并结果
func validate(name string, th CategoryThresholds) error {
	if th.StockDaysCritical <= 0 {
		return fmt.Errorf("category %q: stock_days_critical must be positive", name)
	}
	if th.StockDaysCritical >= th.StockDaysOverstock {
		return fmt.Errorf("category %q: stock_days_critical must be below stock_days_overstock", name)
	}
	if th.CartConvLow > th.CartConvHigh {
		return fmt.Errorf("category %q: cart_conv_low must not exceed cart_conv_high", name)
	}
	if th.OrderConvLow > th.OrderConvHigh {
		return fmt.Errorf("category %q: order_conv_low must not exceed order_conv_high", name)
	}
	if th.AdShareHigh > th.AdShareCritical {
		return fmt.Errorf("category %q: ad_share_high must not exceed ad_share_critical", name)
	}
	if th.MaxStepPct <= 0 {
		return fmt.Errorf("category %q: max_step_pct must be positive", name)
	}
	if th.CooldownDays < 0 {
		return fmt.Errorf("category %q: cooldown_days must not be negative", name)
	}
	if th.ConfidenceFloor < 0 || th.ConfidenceFloor > 1 {
		return fmt.Errorf("category %q: confidence_floor must be within [0, 1]", name)
	}
	return nil
}
