package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"FrameLoom/db"
	"FrameLoom/model"
)

// MediaRepository defines the interface for media asset records. The byte
// payload lives in object storage; only the descriptor is kept here.
type MediaRepository interface {
	CreateMedia(projectID string, media *model.MediaFile) error
	GetMediaByID(id string) (*model.MediaFile, error)
	GetMediaByProjectID(projectID string) ([]*model.MediaFile, error)
	DeleteMedia(id string) error
	DeleteMediaByProjectID(projectID string) error
}

// mysqlMediaRepository implements MediaRepository for MySQL.
type mysqlMediaRepository struct {
	DB *sql.DB
}

// NewMySQLMediaRepository creates a new instance of mysqlMediaRepository.
func NewMySQLMediaRepository() MediaRepository {
	return &mysqlMediaRepository{DB: db.DB}
}

// CreateMedia adds a new media asset record.
func (r *mysqlMediaRepository) CreateMedia(projectID string, media *model.MediaFile) error {
	query := `INSERT INTO media_assets (id, project_id, name, type, mime_type, size, duration, width, height, url, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for CreateMedia: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	_, err = stmt.Exec(media.ID, projectID, media.Name, media.Type, media.MimeType,
		media.Size, media.Duration, media.Width, media.Height, media.URL, now, now)
	if err != nil {
		return fmt.Errorf("failed to execute CreateMedia: %w", err)
	}
	log.Printf("Media asset created with ID: %s, Name: %s", media.ID, media.Name)
	return nil
}

// GetMediaByID retrieves a media asset record by its ID.
func (r *mysqlMediaRepository) GetMediaByID(id string) (*model.MediaFile, error) {
	query := `SELECT id, name, type, mime_type, size, duration, width, height, url
	           FROM media_assets WHERE id = ?`
	row := r.DB.QueryRow(query, id)

	media := &model.MediaFile{}
	err := row.Scan(&media.ID, &media.Name, &media.Type, &media.MimeType,
		&media.Size, &media.Duration, &media.Width, &media.Height, &media.URL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Media not found
		}
		return nil, fmt.Errorf("failed to scan media by ID %s: %w", id, err)
	}
	return media, nil
}

// GetMediaByProjectID retrieves all media asset records for a project.
func (r *mysqlMediaRepository) GetMediaByProjectID(projectID string) ([]*model.MediaFile, error) {
	query := `SELECT id, name, type, mime_type, size, duration, width, height, url
	           FROM media_assets WHERE project_id = ? ORDER BY created_at DESC`
	rows, err := r.DB.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query media for project %s: %w", projectID, err)
	}
	defer rows.Close()

	out := make([]*model.MediaFile, 0)
	for rows.Next() {
		media := &model.MediaFile{}
		err := rows.Scan(&media.ID, &media.Name, &media.Type, &media.MimeType,
			&media.Size, &media.Duration, &media.Width, &media.Height, &media.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media in GetMediaByProjectID: %w", err)
		}
		out = append(out, media)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetMediaByProjectID: %w", err)
	}

	return out, nil
}

// DeleteMedia removes one media asset record.
func (r *mysqlMediaRepository) DeleteMedia(id string) error {
	stmt, err := r.DB.Prepare(`DELETE FROM media_assets WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for DeleteMedia: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(id); err != nil {
		return fmt.Errorf("failed to execute DeleteMedia for %s: %w", id, err)
	}
	return nil
}

// DeleteMediaByProjectID removes all media asset records of a project.
func (r *mysqlMediaRepository) DeleteMediaByProjectID(projectID string) error {
	stmt, err := r.DB.Prepare(`DELETE FROM media_assets WHERE project_id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for DeleteMediaByProjectID: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(projectID); err != nil {
		return fmt.Errorf("failed to execute DeleteMediaByProjectID for %s: %w", projectID, err)
	}
	return nil
}
