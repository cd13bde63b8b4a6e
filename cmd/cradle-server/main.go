// cradle-server starts the engine's service core with the optional
// WebSocket and admin HTTP surfaces mounted (spec §6), following the
// teacher's flat cmd/server/main.go style: no framework, direct
// construction of each collaborator, godotenv for local .env loading
// (teacher's cmd/verify-tables/main.go idiom).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/urlofmar/cradle-sub001/internal/adminsrv"
	"github.com/urlofmar/cradle-sub001/internal/appdirs"
	"github.com/urlofmar/cradle-sub001/internal/config"
	"github.com/urlofmar/cradle-sub001/internal/diskcache"
	"github.com/urlofmar/cradle-sub001/internal/service"
	"github.com/urlofmar/cradle-sub001/internal/wsgateway"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("cradle-server", flag.ContinueOnError)
	showHelp := fs.Bool("help", false, "print usage and exit")
	showVersion := fs.Bool("version", false, "print version and exit")
	configFile := fs.String("config-file", "", "path to a JSON config file (defaults to the XDG config directory)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showHelp {
		fs.Usage()
		return 0
	}
	if *showVersion {
		fmt.Println("cradle-server " + version)
		return 0
	}

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, continuing with process environment")
	}

	path := *configFile
	if path == "" {
		if p, err := appdirs.DefaultConfigFile(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", path)
		return 1
	}

	var disk diskcache.Store
	if cfg.Disk.Enabled {
		disk = diskcache.NewRedisStore(diskcache.RedisConfig{Addr: cfg.Disk.Addr, DB: cfg.Disk.DB, TTL: cfg.DiskTTL()})
	} else {
		disk = diskcache.NewNoopStore()
	}
	defer disk.Close()

	core := service.New(service.Config{
		Cache:          service.ImmutableCacheConfig{UnusedSizeLimitBytes: cfg.Cache.UnusedSizeLimitBytes},
		ComputeWorkers: cfg.Pools.ComputeWorkers,
		HTTPWorkers:    cfg.Pools.HTTPWorkers,
		HTTPTimeout:    cfg.HTTPTimeout(),
		Disk:           disk,
	})
	defer core.Shutdown()

	stopReclaim := startReclaimLoop(core)
	defer stopReclaim()

	if !cfg.Server.Open {
		slog.Info("server surfaces disabled by config (server.open=false); running as a library-only process")
		waitForSignal()
		return 0
	}

	mux := http.NewServeMux()
	mux.Handle("/", adminsrv.New(core).Router)
	mux.Handle("/ws", wsgateway.NewGateway(core, slog.Default()))

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("cradle-server listening", "port", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("server exited", "error", err)
			return 1
		}
	case <-waitForSignalCh():
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
	return 0
}

func startReclaimLoop(core *service.Core) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				core.ReclaimUnused()
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}

func waitForSignalCh() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch
}

func waitForSignal() {
	<-waitForSignalCh()
}
