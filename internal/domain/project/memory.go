package project

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// MemoryStore keeps projects in process memory
type MemoryStore struct {
	projects sync.Map // id -> *Project
	count    int64    // Atomic
	closed   atomic.Bool
	writeMu  sync.Mutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Create(ctx context.Context, in Input) (*Project, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}

	p, err := newProject(in)
	if err != nil {
		return nil, err
	}

	stored := *p
	m.projects.Store(p.ID, &stored)
	atomic.AddInt64(&m.count, 1)
	return p, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Project, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}

	cached, ok := m.projects.Load(id)
	if !ok {
		return nil, ErrNotFound
	}
	p := *cached.(*Project)
	return &p, nil
}

func (m *MemoryStore) GetByName(ctx context.Context, name string) (*Project, error) {
	projects, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].Name == name {
			return &projects[i], nil
		}
	}
	return nil, ErrNotFound
}

// List returns all projects, newest first
func (m *MemoryStore) List(ctx context.Context) ([]Project, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}

	projects := []Project{}
	m.projects.Range(func(_, value interface{}) bool {
		projects = append(projects, *value.(*Project))
		return true
	})

	// IDs are ULIDs, so they sort by creation time
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].ID > projects[j].ID
	})
	return projects, nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, patch Patch) (*Project, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	cached, ok := m.projects.Load(id)
	if !ok {
		return nil, ErrNotFound
	}

	updated, err := cached.(*Project).Apply(patch)
	if err != nil {
		return nil, err
	}

	stored := updated
	m.projects.Store(id, &stored)
	return &updated, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if m.closed.Load() {
		return ErrClosed
	}

	if _, loaded := m.projects.LoadAndDelete(id); !loaded {
		return ErrNotFound
	}
	atomic.AddInt64(&m.count, -1)
	return nil
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	return int(atomic.LoadInt64(&m.count)), nil
}

func (m *MemoryStore) Close() error {
	m.closed.Store(true)
	return nil
}
