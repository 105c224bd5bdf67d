package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// ErrUnavailable marks failures where no usable connection could be obtained
// from the pool (network or auth failure, pool wait timeout).
var ErrUnavailable = errors.New("message store unavailable")

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	PoolSize int
}

// Store is the pooled handle to the MySQL message log. The embedded *sql.DB
// is the bounded FIFO connection pool; callers bound their wait through the
// context passed to each query.
type Store struct {
	db *sql.DB
}

func New(cfg Config) (*Store, error) {
	dsn := mysql.NewConfig()
	dsn.User = cfg.User
	dsn.Passwd = cfg.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	dsn.DBName = cfg.Name
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	// Pin the session time zone so DATE() grouping agrees with the UTC day
	// boundaries computed on the Go side.
	dsn.Params = map[string]string{"time_zone": "'+00:00'"}

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open message store: %w", err)
	}

	db.SetMaxOpenConns(cfg.PoolSize)
	db.SetMaxIdleConns(cfg.PoolSize)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: db}, nil
}

// Ping verifies a connection can be obtained and answers a round-trip.
func (s *Store) Ping(ctx context.Context) error {
	return classify("ping message store", s.db.PingContext(ctx))
}

// Close drains the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// classify wraps query errors, tagging connection-level failures with
// ErrUnavailable so callers can map them without seeing driver types.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConnErr(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnErr(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
