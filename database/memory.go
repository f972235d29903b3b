package database

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store used when no database is configured
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	scans  map[string][]Scan // newest last
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scans: make(map[string][]Scan)}
}

func (m *MemoryStore) SaveScan(ctx context.Context, scan *Scan) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	scan.ID = m.nextID
	m.scans[scan.UserID] = append(m.scans[scan.UserID], *scan)
	return scan.ID, nil
}

func (m *MemoryStore) ListScans(ctx context.Context, userID string, limit int) ([]Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.scans[userID]
	out := make([]Scan, 0, len(all))
	for i := len(all) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (m *MemoryStore) TrimScans(ctx context.Context, userID string, keep int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.scans[userID]
	if keep < 0 {
		keep = 0
	}
	if len(all) <= keep {
		return 0, nil
	}
	removed := len(all) - keep
	m.scans[userID] = append([]Scan(nil), all[removed:]...)
	return int64(removed), nil
}

func (m *MemoryStore) ClearScans(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.scans[userID])
	delete(m.scans, userID)
	return int64(n), nil
}

func (m *MemoryStore) Close() error {
	return nil
}
