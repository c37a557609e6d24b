package cmd

import (
	"context"
	"fmt"

	"operator-console/internal/clipboard"
	"operator-console/internal/controller"
	"operator-console/internal/journal"
	"operator-console/internal/wallet"
	"operator-console/pkg/config"
	"operator-console/pkg/database"
	"operator-console/pkg/logger"
	"operator-console/pkg/store"

	"go.uber.org/zap"
)

const redisKeyPrefix = "operator-console:"

// runtime holds everything a subcommand needs, wired from config.Global.
type runtime struct {
	ctl      *controller.Controller
	provider *wallet.RPCProvider
	store    store.Store
	journal  *journal.Journal
}

func bootstrap(ctx context.Context) (*runtime, error) {
	cfg := config.Global
	rt := &runtime{}

	// 1. 持久化存储
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt.store = st

	// 2. 消息队列 (可选)
	if cfg.Journal.Enabled {
		rt.journal, err = openJournal(ctx, cfg)
		if err != nil {
			rt.Close()
			return nil, err
		}
	}

	// 3. 钱包能力: 端点不可用时视为未检测到钱包
	opts := controller.Options{
		Store:          rt.store,
		StoreKey:       cfg.Store.Key,
		Clipboard:      clipboard.System{},
		RequestTimeout: cfg.Wallet.RequestTimeout,
		ConfirmTimeout: cfg.Wallet.ConfirmTimeout,
		ReceiptPoll:    cfg.Wallet.ReceiptPoll,
	}
	if p := wallet.Detect(ctx, cfg.Wallet.RpcUrl, cfg.Wallet.PollInterval); p != nil {
		rt.provider = p
		opts.Provider = p
	}
	if rt.journal != nil {
		opts.Journal = rt.journal
	}

	// 4. 控制器
	rt.ctl, err = controller.New(ctx, opts)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// watch starts the wallet poller and subscribes the controller to it.
func (rt *runtime) watch(ctx context.Context) {
	if rt.provider == nil {
		return
	}
	rt.ctl.Watch()
	rt.provider.Start(ctx)
}

func (rt *runtime) Close() {
	if rt.ctl != nil {
		rt.ctl.Close()
	}
	if rt.provider != nil {
		rt.provider.Close()
	}
	if rt.journal != nil {
		if err := rt.journal.Close(); err != nil {
			logger.Warn("failed to close journal", zap.Error(err))
		}
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		rdb, err := database.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		return store.NewRedisStore(rdb, redisKeyPrefix), nil
	case "postgres":
		db, err := database.ConnectPostgres(cfg.DB.DSN())
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		return store.NewSQLStore(db), nil
	default:
		st, err := store.OpenLevel(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		return st, nil
	}
}

func openJournal(ctx context.Context, cfg config.Config) (*journal.Journal, error) {
	var producer journal.Producer
	if cfg.Journal.Driver == "kafka" {
		logger.Info("使用 Kafka 作为消息队列...", zap.Strings("brokers", cfg.Kafka.Brokers))
		producer = journal.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Journal.Topic)
	} else {
		logger.Info("使用 Redis Streams 作为消息队列...", zap.String("addr", cfg.Redis.Addr))
		rdb, err := database.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		producer = journal.NewRedisProducer(rdb, 10000)
	}
	return journal.New(producer, cfg.Journal.Topic), nil
}
