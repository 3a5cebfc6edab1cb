// Package database owns the MySQL connection pool and the startup
// schema bootstrap.
package database

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection before returning.
// ParseTime is on because showtimes and reservations scan their
// DATETIME columns straight into time.Time, and Loc pins those values
// to UTC to match the UTC timestamps written on insert.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	dcfg := mysql.NewConfig()
	dcfg.User = user
	dcfg.Passwd = pass
	dcfg.Net = "tcp"
	dcfg.Addr = net.JoinHostPort(host, port)
	dcfg.DBName = name
	dcfg.ParseTime = true
	dcfg.Loc = time.UTC
	dcfg.Params = map[string]string{"charset": "utf8mb4"}

	db, err := sql.Open("mysql", dcfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	// Pool sized for a single service instance.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
