package database

import (
	"context"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/estatedesk/backoffice/pkg/models"
)

// Client holds the database handle. It is created once in main and passed
// to every service constructor; there is no package-level connection.
type Client struct {
	DB *gorm.DB
}

// NewClient opens a postgres connection, applies migrations and returns
// the client. TranslateError is on so unique-index violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
func NewClient(databaseURL string) (*Client, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to postgres: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed running migrations: %w", err)
	}

	log.Println("database connected and migrations applied")

	return &Client{DB: db}, nil
}

// Migrate applies the schema for every entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Lead{},
		&models.LeadStatusHistory{},
		&models.LeadAssignment{},
		&models.LeadNote{},
		&models.Developer{},
		&models.Location{},
		&models.Project{},
		&models.Property{},
	)
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks if the database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
