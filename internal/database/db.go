package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Settings describe one MySQL connection pool.  Zero pool values fall
// back to the defaults below.
type Settings struct {
	User, Pass string
	Host, Port string
	Name       string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

const (
	defaultMaxConns    = 25
	defaultMaxLifetime = 30 * time.Minute
	pingTimeout        = 5 * time.Second
)

// DSN renders s for the go-sql-driver.  Times are scanned into time.Time
// and read and written as UTC.
func (s Settings) DSN() string {
	c := mysql.NewConfig()
	c.User = s.User
	c.Passwd = s.Pass
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(s.Host, s.Port)
	c.DBName = s.Name
	c.ParseTime = true
	c.Loc = time.UTC
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// Open connects to MySQL and pings it before returning the pool.
func Open(ctx context.Context, s Settings) (*sql.DB, error) {
	db, err := sql.Open("mysql", s.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(orDefault(s.MaxOpenConns, defaultMaxConns))
	db.SetMaxIdleConns(orDefault(s.MaxIdleConns, defaultMaxConns))
	lifetime := s.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = defaultMaxLifetime
	}
	db.SetConnMaxLifetime(lifetime)

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql %s: %w", net.JoinHostPort(s.Host, s.Port), err)
	}
	return db, nil
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
