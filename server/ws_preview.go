package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"FrameLoom/cache"
	"FrameLoom/core/compositor"
	"FrameLoom/core/mixer"
	"FrameLoom/core/playback"
	"FrameLoom/core/timeline"
	"FrameLoom/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 开发阶段允许所有来源
	},
}

// previewCommand 是客户端发来的传输控制指令
type previewCommand struct {
	Type string `json:"type"` // play, pause, seek, stop
	Time int64  `json:"time,omitempty"`
}

// previewStatus 是推送给客户端的播放状态
type previewStatus struct {
	Type        string `json:"type"` // status
	State       string `json:"state"`
	CurrentTime int64  `json:"currentTime"`
	Duration    int64  `json:"duration"`
}

// statusPushInterval 播放状态推送间隔
const statusPushInterval = 100 * time.Millisecond

// PreviewHandler 升级为 WebSocket 连接，为一个项目建立实时预览会话。
// 每个连接拥有独立的时间线副本和播放引擎，互不干扰。
func (h *APIHandler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]

	project, err := h.projectRepo.Get(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	store := timeline.NewStore(timeline.TrackCaps{
		Video: h.cfg.MaxVideoTracks,
		Audio: h.cfg.MaxAudioTracks,
		Text:  h.cfg.MaxTextTracks,
	})
	store.Load(project)

	session := playback.NewSession()
	defer session.Close()

	comp := compositor.NewCompositor(project.Resolution.Width, project.Resolution.Height)
	mix := mixer.NewMixer()
	engine := playback.NewEngine(store, session, comp, mix, playback.Config{
		FrameRate: project.FrameRate,
	})
	defer engine.Stop()

	// 恢复上次会话的播放位置
	if state, err := h.projCache.GetPlaybackState(r.Context(), projectID); err == nil && state != nil {
		engine.Seek(state.CurrentTime)
	}

	logger.Info("preview session opened",
		logger.String("projectId", projectID),
		logger.Int64("duration", store.Duration()))

	done := make(chan struct{})
	go h.pushStatus(conn, store, engine, done)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var cmd previewCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			logger.Warn("invalid preview command", logger.ErrorField(err))
			continue
		}

		switch cmd.Type {
		case "play":
			if err := engine.Play(r.Context()); err != nil {
				logger.Warn("preview play failed", logger.ErrorField(err))
			}
		case "pause":
			engine.Pause()
		case "seek":
			engine.Seek(cmd.Time)
		case "stop":
			engine.Stop()
		default:
			logger.Warn("unknown preview command", logger.String("type", cmd.Type))
		}
	}

	close(done)
	h.persistPlaybackState(projectID, store, engine)
	logger.Info("preview session closed", logger.String("projectId", projectID))
}

// pushStatus 周期性向客户端推送播放状态
func (h *APIHandler) pushStatus(conn *websocket.Conn, store *timeline.Store, engine *playback.Engine, done chan struct{}) {
	ticker := time.NewTicker(statusPushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			status := previewStatus{
				Type:        "status",
				State:       string(engine.State()),
				CurrentTime: store.CurrentTime(),
				Duration:    store.Duration(),
			}
			if err := conn.WriteJSON(status); err != nil {
				return
			}
		}
	}
}

// persistPlaybackState 在会话结束时保存播放位置，下次打开预览时恢复
func (h *APIHandler) persistPlaybackState(projectID string, store *timeline.Store, engine *playback.Engine) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	state := &cache.PlaybackState{
		CurrentTime: store.CurrentTime(),
		State:       string(engine.State()),
		UpdatedAt:   time.Now().UnixMilli(),
	}
	if err := h.projCache.SetPlaybackState(ctx, projectID, state); err != nil {
		logger.Warn("playback state save failed",
			logger.String("projectId", projectID), logger.ErrorField(err))
	}
}
