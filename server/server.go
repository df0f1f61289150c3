package server

import (
	"context"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"FrameLoom/cache"
	"FrameLoom/config"
	"FrameLoom/core/media"
	"FrameLoom/db"
	"FrameLoom/logger"
	"FrameLoom/model"
	"FrameLoom/repository"
	"FrameLoom/storage"

	"github.com/gorilla/mux"
	"github.com/minio/minio-go/v7"
)

// watchInboxProject 收纳监控文件夹自动导入的素材，等待被挂到具体项目下
const watchInboxProject = "inbox"

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogOutput,
	})
	defer logger.Sync()

	// 设置服务器超时
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 初始化 MinIO 客户端
	if err := storage.InitMinio(cfg); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database via GORM: %v", err)
	}
	defer db.CloseGormDB()

	// Connect to Redis
	if err := db.ConnectRedis(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer db.CloseRedis()
	log.Println("Successfully connected to Redis")

	// Initialize database schema
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := db.AutoMigrateModels(&repository.ProjectRecord{}); err != nil {
		log.Fatalf("Failed to migrate database models: %v", err)
	}

	ensureDirExists(cfg.UploadDir)

	prober := media.NewFFProbeProber(cfg.FFprobePath)
	projectRepo := repository.NewGormProjectRepository(db.GormDB)
	mediaRepo := repository.NewMySQLMediaRepository()
	projCache := cache.NewProjectCache(db.RedisClient)

	// 初始化处理器
	apiHandler := NewAPIHandler(projectRepo, mediaRepo, prober, projCache, cfg)

	// 监控文件夹：丢进去的文件自动探测并登记到收件箱
	if cfg.WatchDir != "" {
		ensureDirExists(cfg.WatchDir)
		watcher := media.NewWatcher(cfg.WatchDir, prober, func(mf *model.MediaFile) {
			if err := mediaRepo.CreateMedia(watchInboxProject, mf); err != nil {
				logger.Warn("failed to record auto-imported media",
					logger.String("name", mf.Name), logger.ErrorField(err))
			}
		})
		if err := watcher.Start(); err != nil {
			log.Fatalf("Failed to start watch folder: %v", err)
		}
		defer watcher.Close()
	}

	// 使用 gorilla/mux 创建路由器
	router := mux.NewRouter()

	// 添加 CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Range")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// 项目相关的API端点
	router.HandleFunc("/api/projects", apiHandler.CreateProjectHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/projects", apiHandler.ListProjectsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}", apiHandler.GetProjectHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}", apiHandler.SaveProjectHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/projects/{id}", apiHandler.DeleteProjectHandler).Methods(http.MethodDelete)

	// 素材相关的API端点
	router.HandleFunc("/api/projects/{id}/media", apiHandler.UploadMediaHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{id}/media", apiHandler.ListMediaHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/media/{mediaId}", apiHandler.DeleteMediaHandler).Methods(http.MethodDelete)

	// 实时预览 WebSocket 端点
	router.HandleFunc("/ws/projects/{id}/preview", apiHandler.PreviewHandler).Methods(http.MethodGet)

	// 添加MinIO文件服务路由，客户端通过 /media/ 取素材字节
	router.PathPrefix("/media/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		objectPath := strings.TrimPrefix(r.URL.Path, "/media/")
		client := storage.GetMinioClient()
		if client == nil {
			http.Error(w, "MinIO client not available", http.StatusInternalServerError)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		object, err := client.GetObject(ctx, cfg.MinioBucket, objectPath, minio.GetObjectOptions{})
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer object.Close()

		contentType := mime.TypeByExtension(filepath.Ext(objectPath))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Cache-Control", "public, max-age=31536000") // 缓存一年

		_, err = io.Copy(w, object)
		if err != nil {
			log.Printf("Error serving file from MinIO: %v", err)
		}
	})

	server.Handler = router

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 在goroutine中启动服务器
	go func() {
		log.Printf("Server starting on %s...", cfg.HTTPAddr)
		log.Println("Manage projects via /api/projects endpoints")
		log.Println("Upload media via POST to /api/projects/{id}/media")
		log.Println("Open a preview session via /ws/projects/{id}/preview")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待中断信号
	<-stop
	log.Println("Shutting down server...")

	// 创建一个5秒超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func ensureDirExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("Creating directory: %s", path)
		if err := os.MkdirAll(path, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", path, err)
		}
	} else if err != nil {
		log.Fatalf("Failed to check directory %s: %v", path, err)
	}
}
