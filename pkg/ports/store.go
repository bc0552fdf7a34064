package ports

import (
	"context"

	"github.com/aretw0/rulebook/pkg/domain"
)

// FactStore is a FactLoader backed by shared storage.
// Fact sets are replaced wholesale, so a pass never observes a partial update.
type FactStore interface {
	FactLoader

	// Replace atomically swaps the stored fact set for facts.
	Replace(ctx context.Context, facts domain.FactSet) error
}
