package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

var db *sql.DB

// Connect opens a Postgres pool and verifies it with a ping.
func Connect(databaseURL string) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	db, err = sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	logrus.Info("Connected to Postgres")
	return db, nil
}

// Disconnect closes the pool.
func Disconnect() {
	if db != nil {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Error("Error closing Postgres pool")
		} else {
			logrus.Info("Disconnected from Postgres")
		}
	}
}
