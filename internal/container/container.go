package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/catnav/internal/catalog"
	"storefront/catnav/internal/client"
	"storefront/catnav/internal/config"
	"storefront/catnav/internal/domain"
	"storefront/catnav/internal/httpapi"
	"storefront/catnav/internal/menu"
	"storefront/catnav/internal/proxy"
	"storefront/catnav/internal/queue"
	"storefront/catnav/internal/repository"
	"storefront/catnav/internal/resolver"
	"storefront/catnav/internal/scrollspy"
	"storefront/catnav/internal/service"
	"storefront/catnav/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Container wires components on demand. Postgres and Redis are only dialled
// by commands that need them.
type Container struct {
	Config *config.Config

	mu    sync.Mutex
	db    *pgxpool.Pool
	redis *redis.Client
}

func New(cfg *config.Config) *Container {
	return &Container{
		Config: cfg,
	}
}

func (c *Container) database(ctx context.Context) (*pgxpool.Pool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	db, err := pgxpool.New(ctx, c.Config.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("✅ Connected to Postgres successfully")
	c.db = db
	return db, nil
}

func (c *Container) redisClient(ctx context.Context) (*redis.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.redis != nil {
		return c.redis, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", c.Config.Redis.Host, c.Config.Redis.Port),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.Database,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Connected to Redis successfully")
	c.redis = rdb
	return rdb, nil
}

func (c *Container) repository(ctx context.Context) (repository.SnapshotRepository, error) {
	db, err := c.database(ctx)
	if err != nil {
		return nil, err
	}
	repo := repository.NewSnapshotRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (c *Container) stateManager(ctx context.Context) (state.StateManager, error) {
	rdb, err := c.redisClient(ctx)
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(c.Config.Redis.SnapshotTTL) * time.Second
	return state.NewRedisStateManager(rdb, ttl), nil
}

// Tree loads the category tree from the configured source.
func (c *Container) Tree(ctx context.Context) (*catalog.Tree, error) {
	switch c.Config.Catalog.Source {
	case config.SourceFile:
		log.Infof("📂 Loading categories from %s", c.Config.Catalog.File)
		return catalog.LoadFile(c.Config.Catalog.File)
	case config.SourceDatabase:
		categories, err := c.latestSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		return catalog.New(categories)
	default:
		return catalog.Default()
	}
}

// latestSnapshot reads the Redis cache first and fills it from Postgres on a
// miss. A cache outage only costs the round trip.
func (c *Container) latestSnapshot(ctx context.Context) ([]*domain.Category, error) {
	cache, err := c.stateManager(ctx)
	if err != nil {
		log.Warnf("⚠️ Snapshot cache unavailable: %v", err)
	} else if categories, err := cache.GetSnapshot(ctx); err != nil {
		log.Warnf("⚠️ %v", err)
	} else if categories != nil {
		log.Debug("Loaded categories from snapshot cache")
		return categories, nil
	}

	repo, err := c.repository(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := repo.Latest(ctx)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.SetSnapshot(ctx, categories); err != nil {
			log.Warnf("⚠️ %v", err)
		}
	}
	return categories, nil
}

// ScrollSpyOptions maps the scrollspy config section onto controller options.
func (c *Container) ScrollSpyOptions() scrollspy.Options {
	cfg := c.Config.ScrollSpy
	opts := scrollspy.DefaultOptions()
	opts.SettleDelay = cfg.SettleDelay()
	opts.ThrottleInterval = cfg.ThrottleInterval()
	opts.EdgeThreshold = cfg.EdgeThresholdPx
	opts.RootMargin = scrollspy.RootMargin{Top: cfg.RootMarginTop, Bottom: cfg.RootMarginBottom}
	opts.Logger = log.WithField("component", "scrollspy")
	return opts
}

func (c *Container) APIServer(ctx context.Context) (*httpapi.Server, error) {
	tree, err := c.Tree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load category tree: %w", err)
	}
	return httpapi.NewServer(tree, resolver.New(tree), c.Config.Server), nil
}

func (c *Container) Menu(ctx context.Context, initial string) (*menu.Model, error) {
	tree, err := c.Tree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load category tree: %w", err)
	}
	opts := c.ScrollSpyOptions()
	opts.InitialCategory = initial
	return menu.New(tree, resolver.New(tree), opts), nil
}

func (c *Container) ImportService(ctx context.Context) (*service.Service, error) {
	cfg := c.Config

	proxySupplier, err := proxy.NewProxySupplier(ctx, cfg.Storefront.Proxies, cfg.Storefront.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize proxy supplier: %w", err)
	}

	repo, err := c.repository(ctx)
	if err != nil {
		return nil, err
	}

	rdb, err := c.redisClient(ctx)
	if err != nil {
		return nil, err
	}
	retryQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Redis)
	if err != nil {
		return nil, err
	}
	stateManager, err := c.stateManager(ctx)
	if err != nil {
		return nil, err
	}

	return service.NewService(
		client.NewStorefrontClient(cfg.Storefront, proxySupplier),
		repo,
		retryQueue,
		stateManager,
		cfg.Storefront.MaxWorkers,
		cfg.Redis.MinIdleTime,
	), nil
}

// RunImport imports once and, with workers > 0, keeps consuming the retry
// stream until ctx is cancelled.
func (c *Container) RunImport(ctx context.Context, workers int) error {
	svc, err := c.ImportService(ctx)
	if err != nil {
		return err
	}

	if workers <= 0 {
		_, err := svc.Import(ctx)
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := svc.Import(ctx)
		return err
	})
	g.Go(func() error {
		return svc.RunWorkers(ctx, workers)
	})
	return g.Wait()
}

// Close releases the connections opened so far.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		c.db.Close()
		c.db = nil
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
		c.redis = nil
	}

	log.Debug("Container shut down")
	return nil
}
