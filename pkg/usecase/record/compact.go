package record

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// Compact reclaims segment space held by tombstones and overwritten
// entries. Live records are unaffected.
func (u *UseCase) Compact(ctx context.Context) error {
	if err := u.repo.Compact(ctx); err != nil {
		return goerr.Wrap(err, "failed to compact record store")
	}

	return nil
}
