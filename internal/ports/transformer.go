package ports

import "github.com/ghalamif/enginesim/internal/domain"

// Transformer maps a live sample to the values shown to consumers. It must not
// mutate simulation state.
type Transformer interface {
	Transform(domain.Sample) domain.Sample
}
