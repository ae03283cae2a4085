package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartcheckout/internal/checkout"
	"github.com/nikolayk812/cartcheckout/internal/client"
	"github.com/nikolayk812/cartcheckout/internal/config"
	"github.com/nikolayk812/cartcheckout/internal/events"
	"github.com/nikolayk812/cartcheckout/internal/httpapi"
	"github.com/nikolayk812/cartcheckout/internal/idempotency"
	"github.com/nikolayk812/cartcheckout/internal/logging"
	"github.com/nikolayk812/cartcheckout/internal/memstore"
	"github.com/nikolayk812/cartcheckout/internal/migrations"
	"github.com/nikolayk812/cartcheckout/internal/port"
	"github.com/nikolayk812/cartcheckout/internal/repository"
	"github.com/nikolayk812/cartcheckout/internal/session"
	"github.com/nikolayk812/cartcheckout/internal/shop"
	"github.com/nikolayk812/cartcheckout/internal/wallet"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type stores struct {
	carts    port.CartGateway
	orders   port.OrderGateway
	wallets  port.WalletAccounts
	profiles port.ProfileStore

	close func()
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, error) {
	if cfg.App.Storage == config.StorageMemory {
		cur, err := currency.ParseISO(cfg.Checkout.Currency)
		if err != nil {
			return stores{}, fmt.Errorf("checkout.currency: %w", err)
		}

		carts := memstore.NewCart()
		log.Warn("using in-memory storage, data is lost on restart")
		return stores{
			carts:    carts,
			orders:   memstore.NewOrders(carts),
			wallets:  wallet.NewMemory(cur),
			profiles: memstore.NewProfiles(),
			close:    func() {},
		}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN)
	if err != nil {
		return stores{}, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	if cfg.Postgres.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Postgres.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return stores{}, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return stores{}, fmt.Errorf("pool.Ping: %w", err)
	}

	if cfg.Postgres.Migrate {
		version, err := migrations.Up(pool)
		if err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("migrations.Up: %w", err)
		}
		log.Info("database migrated", "version", version)
	}

	st, err := repositories(pool)
	if err != nil {
		pool.Close()
		return stores{}, err
	}
	st.close = pool.Close

	return st, nil
}

func repositories(pool *pgxpool.Pool) (stores, error) {
	var (
		st  stores
		err error
	)
	if st.carts, err = repository.NewCart(pool); err != nil {
		return stores{}, fmt.Errorf("repository.NewCart: %w", err)
	}
	if st.orders, err = repository.NewOrder(pool); err != nil {
		return stores{}, fmt.Errorf("repository.NewOrder: %w", err)
	}
	if st.wallets, err = repository.NewWallet(pool); err != nil {
		return stores{}, fmt.Errorf("repository.NewWallet: %w", err)
	}
	if st.profiles, err = repository.NewProfile(pool); err != nil {
		return stores{}, fmt.Errorf("repository.NewProfile: %w", err)
	}
	return st, nil
}

type storefront struct {
	storefront  *httpapi.Storefront
	idempotency port.IdempotencyStore
	close       func()
}

// buildStorefront wires sessions, checkout, events and the shared
// idempotency store. The storefront needs
// redis for guest ids; without redis.addr it is not served. With
// client.base_url set, carts and orders live on that remote cartstore instead
// of the local stores.
func buildStorefront(ctx context.Context, cfg config.Config, st stores, log *slog.Logger) (storefront, error) {
	if cfg.Redis.Addr == "" {
		log.Warn("redis.addr is empty, storefront disabled")
		return storefront{close: func() {}}, nil
	}

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Redis.Addr},
		Password: cfg.Redis.Password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return storefront{}, fmt.Errorf("redis ping: %w", err)
	}
	closers := []func(){func() { _ = rdb.Close() }}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	sessions := session.NewRedisStore(rdb, cfg.Redis.GuestTTL)

	gw, err := remoteOrLocal(cfg, st)
	if err != nil {
		closeAll()
		return storefront{}, err
	}

	taxMultiplier, err := decimal.NewFromString(cfg.Checkout.TaxMultiplier)
	if err != nil {
		closeAll()
		return storefront{}, fmt.Errorf("checkout.tax_multiplier: %w", err)
	}

	opts := []checkout.Option{
		checkout.WithLogger(logging.New("checkout")),
		checkout.WithPreferences(sessions),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		pub, err := events.NewPublisher(events.NewKafkaWriter(cfg.Kafka.TopicOrders, cfg.Kafka.Brokers...))
		if err != nil {
			closeAll()
			return storefront{}, fmt.Errorf("events.NewPublisher: %w", err)
		}
		closers = append(closers, func() {
			if err := pub.Close(); err != nil {
				log.Error("kafka writer close failed", "error", err)
			}
		})
		opts = append(opts, checkout.WithEventPublisher(pub))
	}

	orch, err := checkout.New(gw.carts, gw.orders, gw.wallets, gw.profiles, checkout.Config{
		DefaultStoreID:     cfg.Checkout.DefaultStoreID,
		PlaceholderAddress: cfg.Checkout.PlaceholderAddress,
		PlaceholderPhone:   cfg.Checkout.PlaceholderPhone,
		PaymentMethod:      cfg.Checkout.PaymentMethod,
		ClearDelay:         cfg.Checkout.ClearDelay,
	}, opts...)
	if err != nil {
		closeAll()
		return storefront{}, fmt.Errorf("checkout.New: %w", err)
	}

	sh, err := shop.New(gw.carts, orch,
		shop.WithLogger(logging.New("shop")),
		shop.WithPreferences(sessions),
		shop.WithTaxMultiplier(taxMultiplier),
		shop.WithSessionTTL(cfg.Shop.SessionTTL),
	)
	if err != nil {
		closeAll()
		return storefront{}, fmt.Errorf("shop.New: %w", err)
	}

	resolver, err := session.NewResolver(sessions, logging.New("session"))
	if err != nil {
		closeAll()
		return storefront{}, fmt.Errorf("session.NewResolver: %w", err)
	}

	return storefront{
		storefront:  &httpapi.Storefront{Shop: sh, Resolver: resolver},
		idempotency: idempotency.NewRedis(rdb, cfg.Idempotency.TTL),
		close:       closeAll,
	}, nil
}

func remoteOrLocal(cfg config.Config, st stores) (stores, error) {
	if cfg.Client.BaseURL == "" {
		return st, nil
	}

	c, err := client.New(cfg.Client.BaseURL, client.WithTimeout(cfg.Client.Timeout))
	if err != nil {
		return stores{}, fmt.Errorf("client.New: %w", err)
	}

	remote := stores{close: func() {}}
	if remote.carts, err = client.NewCartGateway(c); err != nil {
		return stores{}, err
	}
	if remote.orders, err = client.NewOrderGateway(c); err != nil {
		return stores{}, err
	}
	if remote.wallets, err = client.NewWallet(c); err != nil {
		return stores{}, err
	}
	if remote.profiles, err = client.NewProfiles(c); err != nil {
		return stores{}, err
	}
	return remote, nil
}
