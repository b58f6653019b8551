package record

import (
	"time"

	"github.com/m-mizutani/wattrec/pkg/repository"
)

// IDSource issues unique ascending record identifiers
type IDSource interface {
	Next() (uint64, error)
}

// UseCase provides record-related operations
type UseCase struct {
	repo repository.Repository
	ids  IDSource
	now  func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a new record UseCase instance
func New(repo repository.Repository, ids IDSource, opts ...Option) *UseCase {
	uc := &UseCase{
		repo: repo,
		ids:  ids,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}
