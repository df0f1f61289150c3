package db

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"FrameLoom/config"

	_ "github.com/go-sql-driver/mysql"
)

// DB is the shared database handle used by the prepared-statement
// repositories. GORM-based repositories use GormDB from gorm.go instead.
var DB *sql.DB

// ConnectDB establishes the MySQL connection.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	DB.SetMaxIdleConns(10)
	DB.SetMaxOpenConns(100)
	DB.SetConnMaxLifetime(time.Hour)

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB creates the schema used by the prepared-statement repositories.
func InitDB() error {
	mediaTable := `
	CREATE TABLE IF NOT EXISTS media_assets (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		project_id VARCHAR(36) NOT NULL DEFAULT '',
		name VARCHAR(255) NOT NULL,
		type VARCHAR(16) NOT NULL,
		mime_type VARCHAR(128) NOT NULL DEFAULT '',
		size BIGINT NOT NULL DEFAULT 0,
		duration BIGINT NOT NULL DEFAULT -1,
		width INT NOT NULL DEFAULT 0,
		height INT NOT NULL DEFAULT 0,
		url TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		INDEX idx_media_project (project_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

	if _, err := DB.Exec(mediaTable); err != nil {
		return fmt.Errorf("failed to create media_assets table: %w", err)
	}

	log.Println("Database schema initialized.")
	return nil
}
