package repos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"smartpharma/internal/domain"
	applog "smartpharma/internal/log"
)

// DBTX is satisfied by *sqlx.DB, *sqlx.Conn and *sqlx.Tx.
type DBTX interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// TxStarter is a DBTX that can open transactions.
type TxStarter interface {
	DBTX
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// Pool hands out one connection per request scope.
type Pool struct {
	db *sqlx.DB
}

func NewPool(db *sqlx.DB) *Pool { return &Pool{db: db} }

func (p *Pool) DB() *sqlx.DB { return p.db }

// Acquire checks out a connection and verifies it is alive. A dead connection
// is discarded and replaced once; the caller must Close the returned conn.
func (p *Pool) Acquire(ctx context.Context) (*sqlx.Conn, error) {
	conn, err := p.checkout(ctx)
	if err == nil {
		return conn, nil
	}
	applog.L().Warn().Err(err).Str("action", "db.reconnect").Msg("connection unusable, retrying once")
	conn, err = p.checkout(ctx)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, err, "database unavailable")
	}
	return conn, nil
}

func (p *Pool) checkout(ctx context.Context) (*sqlx.Conn, error) {
	conn, err := p.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		// Raw with a bad-conn error evicts the connection instead of returning it to the pool
		_ = conn.Raw(func(any) error { return driverBadConn })
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func (p *Pool) Close() error { return p.db.Close() }
