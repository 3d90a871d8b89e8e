package application

import "context"

// Transactor runs fn atomically: every repository write performed inside fn
// commits together or not at all. Satisfied by repository.GormTransactor.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
