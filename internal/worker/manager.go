package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"svetofor/optimizer/internal/business"
	"svetofor/optimizer/internal/domains"
	"svetofor/optimizer/internal/framework"
	"svetofor/optimizer/internal/optimizer"
	"svetofor/optimizer/internal/thresholds"
	"svetofor/optimizer/pkg/config"
	"svetofor/optimizer/pkg/infra/mysql"
	"svetofor/optimizer/pkg/infra/redis"
	"svetofor/optimizer/pkg/lmstfy"
	"svetofor/optimizer/pkg/logger"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance Manager 实例
type ManagerInstance struct {
	ctx          context.Context
	cancel       context.CancelFunc
	cfg          *config.Config
	lmstfyClient *lmstfy.Client
	provider     *thresholds.FileProvider
	productDAO   *mysql.ProductDAO
	pubsub       *redis.PubSub
	service      *business.OptimizerService
	workers      []Worker
	closing      *atomic.Bool
	shutdownCh   chan struct{}
	wg           sync.WaitGroup
	logger       logger.Logger
}

// NewManagerInstance 创建 Manager（组装全部依赖）
func NewManagerInstance(cfg *config.Config, log logger.Logger) (Manager, error) {
	ctx, cancel := context.WithCancel(context.Background())

	// 1. 初始化 lmstfy 客户端
	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create lmstfy client: %w", err)
	}

	var callbackQueue string
	if len(cfg.Workers) > 0 {
		callbackQueue = cfg.Workers[0].CallbackQueue
	}
	if callbackQueue == "" {
		cancel()
		return nil, fmt.Errorf("callback_queue is required in worker config")
	}

	// 2. 加载品类阈值配置，按需开启热更新
	provider, err := thresholds.NewFileProvider(cfg.Thresholds.Path)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load thresholds: %w", err)
	}
	if cfg.Thresholds.Watch {
		if err := provider.Watch(ctx, log); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to watch thresholds: %w", err)
		}
	}

	// 3. 初始化可选依赖（DSN/Addr 为空时跳过，本地快速验证模式）
	var productDAO *mysql.ProductDAO
	if cfg.MySQL.DSN != "" {
		productDAO, err = mysql.NewProductDAO(cfg.MySQL.DSN)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create product DAO: %w", err)
		}
	} else {
		log.Warnf(ctx, "[Manager] MySQL DSN empty, result persistence disabled")
	}

	var pubsub *redis.PubSub
	if cfg.Redis.Addr != "" {
		pubsub, err = redis.NewPubSub(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create redis pubsub: %w", err)
		}
	} else {
		log.Warnf(ctx, "[Manager] Redis addr empty, completion notification disabled")
	}

	// 4. 组装优化引擎与服务
	engine := optimizer.NewEngine(provider, cfg.Optimizer.Workers)
	service := business.NewOptimizerService(
		engine,
		productDAO,
		pubsub,
		cfg.Redis.NotifyChannel,
		lmstfyClient,
		callbackQueue,
		log,
	)

	log.Infof(ctx, "[Manager] Initialized with callback_queue: %s, thresholds: %s", callbackQueue, cfg.Thresholds.Path)

	return &ManagerInstance{
		ctx:          ctx,
		cancel:       cancel,
		cfg:          cfg,
		lmstfyClient: lmstfyClient,
		provider:     provider,
		productDAO:   productDAO,
		pubsub:       pubsub,
		service:      service,
		closing:      atomic.NewBool(false),
		shutdownCh:   make(chan struct{}),
		workers:      make([]Worker, 0),
		logger:       log,
	}, nil
}

// Start 启动 Manager
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	// 1. 加载所有 Worker
	if err := m.loadWorkers(); err != nil {
		return fmt.Errorf("failed to load workers: %w", err)
	}

	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))

	// 2. 启动所有 Worker（每个 Worker 在独立 goroutine）
	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	m.logger.Infof(m.ctx, "[Manager] Start success")

	// 3. 阻塞等待退出信号
	<-m.shutdownCh

	return nil
}

// Shutdown 优雅退出
func (m *ManagerInstance) Shutdown() {
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	// 原子操作，保证并发安全
	if m.closing.CAS(false, true) {
		// 1. 所有 Worker 安全退出
		for _, worker := range m.workers {
			m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
			worker.Shutdown()
		}

		// 2. 等待所有 Worker 退出
		m.wg.Wait()

		// 3. 停掉阈值监听等后台协程，关闭外部连接
		m.cancel()
		if m.productDAO != nil {
			m.productDAO.Close()
		}
		if m.pubsub != nil {
			m.pubsub.Close()
		}

		// 4. 关闭信号通道
		close(m.shutdownCh)

		m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
	}
}

// loadWorkers 加载所有 Worker
func (m *ManagerInstance) loadWorkers() error {
	for _, workerCfg := range m.cfg.Workers {
		subCfg := &framework.SubscriberConfig{
			QueueName:    workerCfg.QueueName,
			Concurrency:  workerCfg.Subscriber.Threads,
			Rate:         workerCfg.Subscriber.Rate,
			Timeout:      workerCfg.Subscriber.Timeout,
			TTR:          workerCfg.Subscriber.TTR,
			ErrorBackoff: workerCfg.Subscriber.ErrorBackoff,
		}

		procCfg := &framework.ProcessorConfig{
			Concurrency: workerCfg.Processor.Threads,
			BufferSize:  workerCfg.Processor.BufferSize,
			Timeout:     workerCfg.Processor.Timeout,
		}

		// 获取 GetProcess 函数
		getProcess := domains.GetProcess(m.logger, m.service)

		worker, err := NewWorkerInstance(
			m.ctx,
			workerCfg.Name,
			subCfg,
			procCfg,
			m.lmstfyClient, // MessageSource
			getProcess,     // lmstfyx.Proc
			m.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create worker %s: %w", workerCfg.Name, err)
		}

		m.workers = append(m.workers, worker)
	}

	return nil
}
