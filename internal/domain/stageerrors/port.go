package stageerrors

import "context"

// Repository port for the stage-error log.
type Repository interface {
	Save(ctx context.Context, e *StageError) error
	Latest(ctx context.Context, tenant string, limit int) ([]*StageError, error)
}
