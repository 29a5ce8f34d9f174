package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// NewPostgres connects to postgres with a lib/pq connection string
func NewPostgres(dsn string) (*Client, error) {
	driver, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	c := &Client{db: driver, dialect: dialectPostgres}
	if err := c.migrate(); err != nil {
		driver.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return c, nil
}
