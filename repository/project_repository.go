package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FrameLoom/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrProjectNotFound is returned when a project id resolves to nothing.
var ErrProjectNotFound = errors.New("repository: project not found")

// ProjectRecord is the persisted form of a project. The timeline graph is
// stored as JSON documents; the editor core owns their shape.
type ProjectRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:255;not null"`
	Width     int    `gorm:"not null"`
	Height    int    `gorm:"not null"`
	FrameRate int    `gorm:"not null"`
	Duration  int64  `gorm:"not null;default:0"`
	ClipCount int    `gorm:"not null;default:0"`
	Tracks    string `gorm:"type:longtext"`
	Clips     string `gorm:"type:longtext"`
	Media     string `gorm:"type:longtext"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName keeps the table name stable regardless of pluralization rules.
func (ProjectRecord) TableName() string { return "projects" }

// ProjectRepository defines the persistence surface the editor core
// depends on. The core owns no transport or storage detail.
type ProjectRepository interface {
	Create(ctx context.Context, name string, res model.Resolution, frameRate int) (*model.Project, error)
	Get(ctx context.Context, id string) (*model.Project, error)
	Save(ctx context.Context, id, name string, snapshot *model.Project) (*model.Project, error)
	List(ctx context.Context) ([]*model.ProjectSummary, error)
	Delete(ctx context.Context, id string) error
}

// gormProjectRepository implements ProjectRepository on GORM/MySQL.
type gormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a project repository over the given DB.
func NewGormProjectRepository(db *gorm.DB) ProjectRepository {
	return &gormProjectRepository{db: db}
}

func (r *gormProjectRepository) Create(ctx context.Context, name string, res model.Resolution, frameRate int) (*model.Project, error) {
	rec := &ProjectRecord{
		ID:        uuid.NewString(),
		Name:      name,
		Width:     res.Width,
		Height:    res.Height,
		FrameRate: frameRate,
		Tracks:    "[]",
		Clips:     "[]",
		Media:     "[]",
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return recordToProject(rec)
}

func (r *gormProjectRepository) Get(ctx context.Context, id string) (*model.Project, error) {
	var rec ProjectRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", id, err)
	}
	return recordToProject(&rec)
}

func (r *gormProjectRepository) Save(ctx context.Context, id, name string, snapshot *model.Project) (*model.Project, error) {
	tracksJSON, err := json.Marshal(snapshot.Tracks)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tracks: %w", err)
	}
	clipsJSON, err := json.Marshal(snapshot.Clips)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal clips: %w", err)
	}
	mediaJSON, err := json.Marshal(snapshot.MediaFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal media files: %w", err)
	}

	updates := map[string]interface{}{
		"name":       name,
		"duration":   snapshot.Duration,
		"clip_count": len(snapshot.Clips),
		"tracks":     string(tracksJSON),
		"clips":      string(clipsJSON),
		"media":      string(mediaJSON),
		"updated_at": time.Now(),
	}
	res := r.db.WithContext(ctx).Model(&ProjectRecord{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to save project %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrProjectNotFound
	}
	return r.Get(ctx, id)
}

func (r *gormProjectRepository) List(ctx context.Context) ([]*model.ProjectSummary, error) {
	var recs []ProjectRecord
	err := r.db.WithContext(ctx).
		Select("id", "name", "duration", "clip_count", "updated_at").
		Order("updated_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	out := make([]*model.ProjectSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, &model.ProjectSummary{
			ID:        rec.ID,
			Name:      rec.Name,
			Duration:  rec.Duration,
			ClipCount: rec.ClipCount,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	return out, nil
}

func (r *gormProjectRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&ProjectRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func recordToProject(rec *ProjectRecord) (*model.Project, error) {
	p := &model.Project{
		ID:         rec.ID,
		Name:       rec.Name,
		Resolution: model.Resolution{Width: rec.Width, Height: rec.Height},
		FrameRate:  rec.FrameRate,
		Duration:   rec.Duration,
		UpdatedAt:  rec.UpdatedAt,
	}
	if rec.Tracks != "" {
		if err := json.Unmarshal([]byte(rec.Tracks), &p.Tracks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tracks for project %s: %w", rec.ID, err)
		}
	}
	if rec.Clips != "" {
		if err := json.Unmarshal([]byte(rec.Clips), &p.Clips); err != nil {
			return nil, fmt.Errorf("failed to unmarshal clips for project %s: %w", rec.ID, err)
		}
	}
	if rec.Media != "" {
		if err := json.Unmarshal([]byte(rec.Media), &p.MediaFiles); err != nil {
			return nil, fmt.Errorf("failed to unmarshal media files for project %s: %w", rec.ID, err)
		}
	}
	return p, nil
}
