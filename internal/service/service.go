package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/catnav/internal/catalog"
	"storefront/catnav/internal/client"
	"storefront/catnav/internal/domain"
	"storefront/catnav/internal/domain/task"
	"storefront/catnav/internal/queue"
	"storefront/catnav/internal/repository"
	"storefront/catnav/internal/state"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var categoryRetryType = (&task.CategoryRetryTask{}).TaskType()

// Service imports the storefront menu into versioned category snapshots.
type Service struct {
	client       client.StorefrontClient
	repository   repository.SnapshotRepository
	queue        queue.Queue
	stateManager state.StateManager
	maxWorkers   int
	minIdleTime  time.Duration

	// serializes read-modify-write cycles on the latest snapshot
	snapshotMu sync.Mutex
}

func NewService(
	client client.StorefrontClient,
	repository repository.SnapshotRepository,
	queue queue.Queue,
	stateManager state.StateManager,
	maxWorkers int,
	minIdleTime int,
) *Service {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Service{
		client:       client,
		repository:   repository,
		queue:        queue,
		stateManager: stateManager,
		maxWorkers:   maxWorkers,
		minIdleTime:  time.Duration(minIdleTime) * time.Second,
	}
}

// Import fetches every rail category and stores the validated tree as a new
// snapshot. Categories that fail to load are queued for retry and, when an
// older snapshot has them, carried over from it.
func (s *Service) Import(ctx context.Context) (int64, error) {
	s.snapshotMu.Lock()
	defer s.snapshotMu.Unlock()

	if err := s.stateManager.ResetProgress(ctx); err != nil {
		return 0, err
	}

	entries, err := s.client.GetMenuIndex(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get menu index: %w", err)
	}

	log.Infof("🔄 Importing %d categories with %d workers", len(entries), s.maxWorkers)

	fetched := make([]*domain.Category, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxWorkers)

	for i, entry := range entries {
		g.Go(func() error {
			category, err := s.client.GetCategory(gctx, entry)
			if err != nil {
				log.Warnf("🔄 Category %s failed, queueing retry: %v", entry.Name, err)
				return s.enqueueRetry(gctx, entry, 0, err)
			}

			fetched[i] = category
			if err := s.stateManager.MarkImported(gctx, entry.Name); err != nil {
				log.Warnf("⚠️ %v", err)
			}
			log.Infof("✅ Imported %s: %d subcategories", entry.Name, len(category.Subcategories))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	categories, err := s.withPrevious(ctx, entries, fetched)
	if err != nil {
		return 0, err
	}
	if len(categories) == 0 {
		return 0, fmt.Errorf("no categories imported")
	}

	version, err := s.store(ctx, categories)
	if err != nil {
		return 0, err
	}

	imported, err := s.stateManager.ImportedCategories(ctx)
	if err != nil {
		log.Warnf("⚠️ %v", err)
	}
	log.Infof("🎉 Stored snapshot v%d with %d categories (%d fetched fresh)", version, len(categories), len(imported))
	return version, nil
}

// withPrevious fills the gaps left by failed fetches from the latest stored
// snapshot, keeping rail order.
func (s *Service) withPrevious(ctx context.Context, entries []domain.RailEntry, fetched []*domain.Category) ([]*domain.Category, error) {
	var previous map[string]*domain.Category

	categories := make([]*domain.Category, 0, len(fetched))
	for i, category := range fetched {
		if category != nil {
			categories = append(categories, category)
			continue
		}

		if previous == nil {
			latest, err := s.repository.Latest(ctx)
			if err != nil && !errors.Is(err, repository.ErrNoSnapshot) {
				return nil, err
			}
			previous = make(map[string]*domain.Category, len(latest))
			for _, c := range latest {
				previous[c.Name] = c
			}
		}

		if old, ok := previous[entries[i].Name]; ok {
			log.Infof("♻️ Keeping previous version of %s until its retry succeeds", entries[i].Name)
			categories = append(categories, old)
		}
	}

	return categories, nil
}

// store validates categories as a tree, then persists and caches them.
func (s *Service) store(ctx context.Context, categories []*domain.Category) (int64, error) {
	tree, err := catalog.New(categories)
	if err != nil {
		return 0, fmt.Errorf("failed to build category tree: %w", err)
	}

	version, err := s.repository.Save(ctx, tree.Categories())
	if err != nil {
		return 0, err
	}

	if err := s.stateManager.SetSnapshot(ctx, tree.Categories()); err != nil {
		log.Warnf("⚠️ Snapshot v%d saved but not cached: %v", version, err)
	}

	return version, nil
}

func (s *Service) enqueueRetry(ctx context.Context, entry domain.RailEntry, retryCount int, cause error) error {
	_, err := s.queue.AddTask(ctx, &task.CategoryRetryTask{
		Name:       entry.Name,
		Label:      entry.Label,
		Kind:       entry.Kind.String(),
		ImageRef:   entry.ImageRef,
		PageURL:    entry.PageURL,
		RetryCount: retryCount,
		Error:      cause.Error(),
	})
	if err != nil {
		return fmt.Errorf("failed to queue retry for %s: %w", entry.Name, err)
	}
	return nil
}

// RunWorkers consumes the retry stream until ctx is cancelled.
func (s *Service) RunWorkers(ctx context.Context, numWorkers int) error {
	if numWorkers <= 0 {
		numWorkers = 1
	}

	var wg sync.WaitGroup

	if s.minIdleTime > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runClaimer(ctx)
		}()
	}

	for i := 1; i <= numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.runWorker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	return nil
}

func (s *Service) runWorker(ctx context.Context, workerID int) {
	consumer := fmt.Sprintf("retry-worker-%d", workerID)
	log.Infof("🚀 Starting retry worker %d", workerID)

	for {
		if ctx.Err() != nil {
			log.Infof("🛑 Retry worker %d stopping", workerID)
			return
		}

		msg, err := s.queue.ReadTask(ctx, consumer, categoryRetryType)
		if err != nil {
			if ctx.Err() == nil {
				log.Errorf("❌ Failed to read retry task: %v", err)
			}
			continue
		}
		if msg == nil {
			continue
		}

		if err := s.processMessage(ctx, msg); err != nil {
			log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
		}
	}
}

func (s *Service) runClaimer(ctx context.Context) {
	ticker := time.NewTicker(s.minIdleTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			consumer := fmt.Sprintf("autoclaimer-%d", time.Now().UnixNano())
			msg, err := s.queue.ClaimIdle(ctx, consumer, categoryRetryType)
			if err != nil {
				log.Errorf("❌ Failed to auto-claim retry tasks: %v", err)
				continue
			}
			if msg == nil {
				continue
			}

			log.Infof("🔄 Auto-claimed retry task %s", msg.ID)
			if err := s.processMessage(ctx, msg); err != nil {
				log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
			}
		}
	}
}

func (s *Service) processMessage(ctx context.Context, msg *queue.Message) error {
	if msg.TaskType != categoryRetryType {
		return fmt.Errorf("unknown task type: %q", msg.TaskType)
	}

	retryTask, err := task.UnmarshalTask[*task.CategoryRetryTask](msg.Data)
	if err != nil {
		return fmt.Errorf("failed to unmarshal retry task data: %w", err)
	}

	if err := s.retryCategory(ctx, retryTask); err != nil {
		return fmt.Errorf("failed to retry category %s: %w", retryTask.Name, err)
	}

	return s.queue.AckTask(ctx, msg.TaskType, msg.ID)
}

func (s *Service) retryCategory(ctx context.Context, retryTask *task.CategoryRetryTask) error {
	retryTask.RetryCount++

	entry := domain.RailEntry{
		Name:     retryTask.Name,
		Label:    retryTask.Label,
		Kind:     domain.Kind(retryTask.Kind),
		ImageRef: retryTask.ImageRef,
		PageURL:  retryTask.PageURL,
	}

	log.Infof("🔄 Retrying category %s (attempt %d)", entry.Name, retryTask.RetryCount)

	category, err := s.client.GetCategory(ctx, entry)
	if err != nil {
		log.Warnf("🔄 Category %s failed again, will retry (attempt %d): %v", entry.Name, retryTask.RetryCount, err)
		return s.enqueueRetry(ctx, entry, retryTask.RetryCount, err)
	}

	version, err := s.patchSnapshot(ctx, category)
	if err != nil {
		return err
	}

	if err := s.stateManager.MarkImported(ctx, entry.Name); err != nil {
		log.Warnf("⚠️ %v", err)
	}

	log.Infof("✅ Recovered category %s after %d attempts, snapshot v%d", entry.Name, retryTask.RetryCount, version)
	return nil
}

// patchSnapshot replaces (or appends) one category in the latest snapshot and
// stores the result as a new version.
func (s *Service) patchSnapshot(ctx context.Context, category *domain.Category) (int64, error) {
	s.snapshotMu.Lock()
	defer s.snapshotMu.Unlock()

	latest, err := s.repository.Latest(ctx)
	if err != nil && !errors.Is(err, repository.ErrNoSnapshot) {
		return 0, err
	}

	replaced := false
	for i, c := range latest {
		if c.Name == category.Name {
			latest[i] = category
			replaced = true
			break
		}
	}
	if !replaced {
		latest = append(latest, category)
	}

	return s.store(ctx, latest)
}
