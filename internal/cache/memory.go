package cache

import (
	"context"
	"sync"
)

// Memory is a Slot held in process memory. Nothing survives the process.
type Memory struct {
	mu   sync.Mutex
	data []byte
	set  bool

	// GetErr, if set, is returned by Get.
	GetErr error

	// PutErr, if set, is returned by Put without storing anything.
	PutErr error
}

// NewMemory returns an empty in-memory slot.
func NewMemory() *Memory {
	return &Memory{}
}

// Get implements Slot.
func (m *Memory) Get(ctx context.Context) ([]byte, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, ErrNotFound
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

// Put implements Slot.
func (m *Memory) Put(ctx context.Context, data []byte) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append(m.data[:0], data...)
	m.set = true
	return nil
}

// Delete implements Slot.
func (m *Memory) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	m.set = false
	return nil
}

// Close implements Slot.
func (m *Memory) Close() error { return nil }
