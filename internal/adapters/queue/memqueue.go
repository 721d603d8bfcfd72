package queue

import (
	"sync"

	"github.com/ghalamif/enginesim/internal/domain"
	"github.com/ghalamif/enginesim/internal/ports"
)

// MemQueue is a bounded in-memory command queue that preserves FIFO ordering.
// Producers on any goroutine enqueue; the tick goroutine drains.
type MemQueue struct {
	mu   sync.Mutex
	data []domain.Command
	cap  int
}

func NewMemQueue(capacity int) *MemQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemQueue{
		data: make([]domain.Command, 0, capacity),
		cap:  capacity,
	}
}

func (q *MemQueue) Enqueue(cmd domain.Command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) >= q.cap {
		return false
	}
	q.data = append(q.data, cmd)
	return true
}

func (q *MemQueue) Drain(max int) []domain.Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) == 0 {
		return nil
	}
	if max <= 0 || max > len(q.data) {
		max = len(q.data)
	}
	out := make([]domain.Command, max)
	copy(out, q.data[:max])
	q.data = append(q.data[:0], q.data[max:]...)
	return out
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

var _ ports.CommandQueue = (*MemQueue)(nil)
