package repository

import "context"

// Transactor runs fn with a database transaction bound to its context;
// every repository call made through that context joins the same
// transaction. A non-nil error from fn rolls everything back.
type Transactor interface {
	Transactional(ctx context.Context, fn func(ctx context.Context) error) error
}
