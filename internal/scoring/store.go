package scoring

import (
	"context"

	id "vouch/pkg/domain"
)

// RecordStore persists reputation records keyed by (domain, account).
// Find returns sentinel.ErrNotFound for untouched pairs; the engine
// lazily creates the record.
type RecordStore interface {
	Find(ctx context.Context, domainID id.DomainID, account id.AccountID) (*Record, error)
	Save(ctx context.Context, record *Record) error
}
