package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vmxio.com/sop-cards/generate"
	"vmxio.com/sop-cards/logger"
)

func main() {
	cfg := LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	// 1) Store
	store, err := NewStore(cfg, log)
	if err != nil {
		log.Fatal("open store", "driver", cfg.StoreDriver, "error", err)
	}

	// 2) Seed (if empty)
	ctx := context.Background()
	if _, err := SeedFromJSON(ctx, store, cfg.SeedFile, log); err != nil {
		log.Fatal("seed", "path", cfg.SeedFile, "error", err)
	}

	// 3) Editing session starts from the stored course
	app := &App{
		Session: NewSession(store.Load(ctx)),
		Store:   store,
		Generator: generate.NewClient(generate.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		}),
		Log: log,
	}

	if strings.EqualFold(cfg.LogMode, "prod") || strings.EqualFold(cfg.LogMode, "production") {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(app, cfg.AllowedOrigins)

	log.Info("listening", "port", cfg.Port, "store", cfg.StoreDriver, "model", cfg.LLMModel)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("run", "error", err)
	}
}

func newRouter(app *App, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(app.Log))

	// --- CORS: configured origins + any localhost:port ---
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if allowed[origin] {
				return true
			}
			return strings.HasPrefix(origin, "http://localhost:")
		},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) { c.String(200, "ok") })

	api := r.Group("/api/v1")
	{
		// Editor
		ed := api.Group("/course")
		ed.GET("", GetCourse(app))
		ed.PUT("", ReplaceCourse(app))
		ed.POST("/generate", GenerateCourse(app))
		ed.POST("/save", SaveCourse(app))
		ed.POST("/reload", ReloadCourse(app))
		ed.PATCH("/title", SetTitle(app))
		ed.GET("/preview", Preview(app))
		ed.GET("/stats", Stats(app))

		ed.POST("/cards", AddCard(app))
		ed.DELETE("/cards/:index", DeleteCard(app))
		ed.PATCH("/cards/:index", SetCardField(app))
		ed.POST("/cards/:index/move", MoveCard(app))
		ed.PUT("/cards/:index/variant", SetCardVariant(app))
		ed.PATCH("/cards/:index/nested/:parent", SetNestedField(app))
		ed.POST("/cards/:index/items", AddListItem(app))
		ed.PATCH("/cards/:index/items/:item", SetListItemField(app))
		ed.DELETE("/cards/:index/items/:item", DeleteListItem(app))

		// Viewer
		api.GET("/viewer", ViewCourse(app))
		api.GET("/viewer/cards/:index", ViewCard(app))
		api.POST("/viewer/cards/:index/answer", AnswerQuiz(app))
	}
	return r
}
