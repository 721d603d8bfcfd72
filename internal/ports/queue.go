package ports

import "github.com/ghalamif/enginesim/internal/domain"

// CommandQueue serializes operator commands onto the tick goroutine.
type CommandQueue interface {
	Enqueue(cmd domain.Command) bool
	Drain(max int) []domain.Command
	Len() int
}
