package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fashun/virtual-tryon/internal/api"
	"github.com/fashun/virtual-tryon/internal/cache"
	"github.com/fashun/virtual-tryon/internal/config"
	"github.com/fashun/virtual-tryon/internal/imaging"
	"github.com/fashun/virtual-tryon/internal/landmarks"
	"github.com/fashun/virtual-tryon/internal/logging"
	"github.com/fashun/virtual-tryon/internal/server"
	"github.com/fashun/virtual-tryon/internal/tryon"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("tryon-server %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		}
	}

	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdin/stdout instead of HTTP")
	flag.Usage = printUsage
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("virtual try-on starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.Bool("mcp", *mcpMode),
	)

	estimator := landmarks.New(
		landmarks.WithThresholds(cfg.Pipeline.CannyLow, cfg.Pipeline.CannyHigh),
		landmarks.WithLogger(logger.Named("landmarks")),
	)
	pipeline := tryon.NewPipeline(estimator, imaging.DecodeOptions{
		AutoOrient: cfg.Pipeline.AutoOrient,
		MaxPixels:  cfg.Upload.MaxPixels,
	}, logger.Named("tryon"))

	if *mcpMode {
		srv := server.New(pipeline, Version, logger.Named("mcp"))
		if err := srv.Run(); err != nil {
			logger.Fatal("mcp server error", zap.Error(err))
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var renders api.RenderCache
	if cfg.Redis.Enabled {
		store := cache.New(cfg.Redis, logger.Named("cache"))
		defer store.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := store.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, render cache disabled",
				zap.String("addr", cfg.Redis.Addr),
				zap.Error(err),
			)
		} else {
			renders = store
		}
	}

	gin.SetMode(cfg.Server.Mode)
	srv := api.New(cfg, pipeline, renders, logger.Named("api"))
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("http server error", zap.Error(err))
	}
	logger.Info("virtual try-on stopped")
}

func printUsage() {
	fmt.Println("tryon-server - virtual garment try-on service")
	fmt.Println()
	fmt.Println("Usage: tryon-server [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config PATH    YAML config file (default config.yaml, optional)")
	fmt.Println("  --mcp            Serve MCP over stdin/stdout instead of HTTP")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Every config key can be overridden with a TRYON_ environment")
	fmt.Println("variable, e.g. TRYON_SERVER_PORT=:8080 or TRYON_REDIS_ENABLED=true.")
	fmt.Println("A .env file in the working directory is loaded first.")
}
