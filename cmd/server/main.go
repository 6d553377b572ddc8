package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"lecturenotes/internal/api"
	"lecturenotes/internal/config"
	"lecturenotes/internal/files"
	"lecturenotes/internal/logger"
	"lecturenotes/internal/pipeline"
	"lecturenotes/internal/store"
	"lecturenotes/internal/stt"
	"lecturenotes/internal/summarizer"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.Open(filepath.Join(cfg.DataDir, "database.json"))
	if err != nil {
		zl.Fatalw("failed to open database", "error", err)
	}

	fm, err := files.New(cfg.DataDir)
	if err != nil {
		zl.Fatalw("failed to prepare storage directories", "error", err)
	}

	provider, err := stt.CreateProvider(cfg, zl)
	if err != nil {
		zl.Warnw("no speech-to-text provider available, uploads will fail", "error", err)
		provider = nil
	}

	sum := summarizer.New(cfg.OpenAIKey, cfg.OpenAIModel, zl)
	pl := pipeline.New(st, fm, provider, sum, zl)

	r := gin.Default()
	r.Use(corsMiddleware())
	r.LoadHTMLGlob(cfg.TemplateGlob)

	srv := api.NewServer(cfg, st, fm, pl, sum, zl)
	srv.RegisterRoutes(r)

	zl.Infow("lecturenotes server starting", "port", cfg.Port, "data_dir", cfg.DataDir)
	if err := r.Run(":" + cfg.Port); err != nil {
		zl.Fatalw("server exited", "error", err)
	}
}

// corsMiddleware adds CORS headers for browser clients
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
