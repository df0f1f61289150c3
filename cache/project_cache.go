package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FrameLoom/model"

	"github.com/redis/go-redis/v9"
)

const (
	projectListKey  = "projects:list"
	projectListTTL  = 5 * time.Minute
	playbackTTL     = 24 * time.Hour
	playbackKeyFmt  = "project:%s:playback"
)

// PlaybackState 表示一个项目最近一次预览会话的播放状态
type PlaybackState struct {
	CurrentTime int64  `json:"currentTime"` // ms
	State       string `json:"state"`       // stopped, playing, paused
	UpdatedAt   int64  `json:"updatedAt"`   // unix ms
}

// ProjectCache 缓存项目列表和预览播放状态
type ProjectCache struct {
	client *redis.Client
}

// NewProjectCache 创建项目缓存
func NewProjectCache(client *redis.Client) *ProjectCache {
	return &ProjectCache{client: client}
}

// GetProjectList 读取缓存的项目列表；缓存未命中时返回 (nil, nil)
func (c *ProjectCache) GetProjectList(ctx context.Context) ([]*model.ProjectSummary, error) {
	if c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, projectListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project list from cache: %w", err)
	}

	var out []*model.ProjectSummary
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached project list: %w", err)
	}
	return out, nil
}

// SetProjectList 写入项目列表缓存
func (c *ProjectCache) SetProjectList(ctx context.Context, list []*model.ProjectSummary) error {
	if c.client == nil {
		return nil
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal project list: %w", err)
	}
	if err := c.client.Set(ctx, projectListKey, raw, projectListTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache project list: %w", err)
	}
	return nil
}

// InvalidateProjectList 删除项目列表缓存（项目增删改后调用）
func (c *ProjectCache) InvalidateProjectList(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, projectListKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate project list cache: %w", err)
	}
	return nil
}

// SetPlaybackState 保存项目的预览播放状态
func (c *ProjectCache) SetPlaybackState(ctx context.Context, projectID string, state *PlaybackState) error {
	if c.client == nil {
		return nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal playback state: %w", err)
	}
	key := fmt.Sprintf(playbackKeyFmt, projectID)
	if err := c.client.Set(ctx, key, raw, playbackTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache playback state: %w", err)
	}
	return nil
}

// GetPlaybackState 读取项目的预览播放状态；缓存未命中时返回 (nil, nil)
func (c *ProjectCache) GetPlaybackState(ctx context.Context, projectID string) (*PlaybackState, error) {
	if c.client == nil {
		return nil, nil
	}
	key := fmt.Sprintf(playbackKeyFmt, projectID)
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playback state from cache: %w", err)
	}

	state := &PlaybackState{}
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal playback state: %w", err)
	}
	return state, nil
}
