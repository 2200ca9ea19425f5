package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"storefront/catnav/internal/domain"
	"storefront/catnav/internal/domain/task"
	"storefront/catnav/internal/queue"
	"storefront/catnav/internal/repository"
)

type fakeClient struct {
	mu       sync.Mutex
	entries  []domain.RailEntry
	pages    map[string]*domain.Category
	failures map[string]error
	calls    map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		pages:    make(map[string]*domain.Category),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (c *fakeClient) add(category *domain.Category) {
	c.entries = append(c.entries, domain.RailEntry{
		Name:    category.Name,
		Label:   category.Label,
		Kind:    category.Kind,
		PageURL: "https://shop.example/category/" + category.Name,
	})
	c.pages[category.Name] = category
}

func (c *fakeClient) GetMenuIndex(ctx context.Context) ([]domain.RailEntry, error) {
	return c.entries, nil
}

func (c *fakeClient) GetCategory(ctx context.Context, entry domain.RailEntry) (*domain.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls[entry.Name]++
	if err := c.failures[entry.Name]; err != nil {
		return nil, err
	}
	page, ok := c.pages[entry.Name]
	if !ok {
		return nil, fmt.Errorf("no page for %s", entry.Name)
	}
	return cloneCategory(page), nil
}

// cloneCategory hands out fresh nodes per fetch so the tree may normalize them.
func cloneCategory(c *domain.Category) *domain.Category {
	data, _ := json.Marshal(c)
	var out domain.Category
	_ = json.Unmarshal(data, &out)
	return &out
}

type fakeRepository struct {
	mu        sync.Mutex
	snapshots [][]*domain.Category
}

func (r *fakeRepository) EnsureSchema(ctx context.Context) error { return nil }

func (r *fakeRepository) Save(ctx context.Context, categories []*domain.Category) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, categories)
	return int64(len(r.snapshots)), nil
}

func (r *fakeRepository) Latest(ctx context.Context) ([]*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return nil, repository.ErrNoSnapshot
	}
	latest := r.snapshots[len(r.snapshots)-1]
	out := make([]*domain.Category, len(latest))
	for i, c := range latest {
		out[i] = cloneCategory(c)
	}
	return out, nil
}

func (r *fakeRepository) latestNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return nil
	}
	var names []string
	for _, c := range r.snapshots[len(r.snapshots)-1] {
		names = append(names, c.Name)
	}
	return names
}

type fakeQueue struct {
	mu       sync.Mutex
	nextID   int
	tasks    chan *queue.Message
	acked    []string
	addError error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{tasks: make(chan *queue.Message, 16)}
}

func (q *fakeQueue) AddTask(ctx context.Context, t task.Task) (string, error) {
	if q.addError != nil {
		return "", q.addError
	}
	data, err := t.TaskValue()
	if err != nil {
		return "", err
	}

	q.mu.Lock()
	q.nextID++
	id := fmt.Sprintf("%d-0", q.nextID)
	q.mu.Unlock()

	q.tasks <- &queue.Message{ID: id, TaskType: t.TaskType(), Data: data}
	return id, nil
}

func (q *fakeQueue) ReadTask(ctx context.Context, consumer, taskType string) (*queue.Message, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg := <-q.tasks:
		return msg, nil
	}
}

func (q *fakeQueue) ClaimIdle(ctx context.Context, consumer, taskType string) (*queue.Message, error) {
	return nil, nil
}

func (q *fakeQueue) AckTask(ctx context.Context, taskType, msgID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, msgID)
	return nil
}

func (q *fakeQueue) EnsureStreamsExist(ctx context.Context) error { return nil }

func (q *fakeQueue) ackedIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.acked...)
}

type fakeState struct {
	mu       sync.Mutex
	snapshot []*domain.Category
	imported map[string]bool
	setError error
}

func newFakeState() *fakeState {
	return &fakeState{imported: make(map[string]bool)}
}

func (s *fakeState) GetSnapshot(ctx context.Context) ([]*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, nil
}

func (s *fakeState) SetSnapshot(ctx context.Context, categories []*domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setError != nil {
		return s.setError
	}
	s.snapshot = categories
	return nil
}

func (s *fakeState) MarkImported(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imported[name] = true
	return nil
}

func (s *fakeState) ImportedCategories(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for name := range s.imported {
		names = append(names, name)
	}
	return names, nil
}

func (s *fakeState) ResetProgress(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imported = make(map[string]bool)
	return nil
}

func (s *fakeState) isImported(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imported[name]
}

var errUnavailable = errors.New("storefront unavailable")

func simpleCategory(name string) *domain.Category {
	path := domain.PathPrefix + "/" + name
	return &domain.Category{
		NodeInfo: domain.NodeInfo{Name: name, Label: name, Path: path},
		Kind:     domain.KindNormal,
		Subcategories: []*domain.Subcategory{
			{
				NodeInfo:      domain.NodeInfo{Name: name + "-home", Label: "All", Path: path},
				Kind:          domain.KindNormal,
				ThirdCategory: []*domain.ThirdCategory{},
			},
			{
				NodeInfo: domain.NodeInfo{Name: "new", Label: "New", Path: path + "/new"},
				Kind:     domain.KindNormal,
				ThirdCategory: []*domain.ThirdCategory{
					{NodeInfo: domain.NodeInfo{Name: "today", Label: "Today", Path: path + "/new/today"}},
				},
			},
		},
	}
}
