package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bizdesk/backend/internal/api"
	"github.com/bizdesk/backend/internal/config"
	"github.com/bizdesk/backend/internal/session"
	"github.com/bizdesk/backend/internal/storage"
	"github.com/bizdesk/backend/internal/store"
	"github.com/bizdesk/backend/internal/testutil"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := os.Getenv("BIZDESK_CONFIG")
	if configPath == "" {
		configPath = "bizdesk.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Initialize file storage
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	// Initialize the record store. An empty DSN selects the in-memory store
	// for local development; imports then land nowhere durable.
	var records store.RecordStore
	storeMode := "In-Memory (Development)"
	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pg, err := store.NewPostgresStore(ctx, dsn)
		cancel()
		if err != nil {
			fmt.Printf("Failed to connect to postgres: %v\n", err)
			os.Exit(1)
		}
		defer pg.Close()
		records = pg
		storeMode = "PostgreSQL"
	} else {
		records = testutil.NewMemoryStore()
	}

	// Initialize session manager
	sessionMgr := session.NewManager(records)
	sessionMgr.SetMaxSessions(cfg.Import.MaxSessions)

	// Start background session cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Import.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupOldSessions(time.Duration(cfg.Import.SessionTimeoutMinutes) * time.Minute)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/api/health" ||
				strings.HasSuffix(path, "/keepalive")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			// Uploads and commits may legitimately run long.
			path := c.Request().URL.Path
			return strings.Contains(path, "/upload") ||
				strings.HasSuffix(path, "/commit")
		},
		ErrorMessage: "Request timeout",
	}))

	e.Use(middleware.Gzip())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := []string{"*"}
		if cfg.Server.AllowOrigins != "" {
			origins = strings.Split(cfg.Server.AllowOrigins, ",")
			for i := range origins {
				origins[i] = strings.TrimSpace(origins[i])
			}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, api.TenantHeader},
		}))
	}

	// API routes
	handlers := api.NewHandlers(&api.Dependencies{
		Sessions:  sessionMgr,
		Files:     fileStore,
		Version:   Version,
		StoreMode: storeMode,
	})
	api.RegisterRoutes(e, handlers)

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           BizDesk Import Server                           ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Records:    %-45s║\n", storeMode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.Storage.DataDir)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
