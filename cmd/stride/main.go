package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/claude/stride/internal/bridge"
	"github.com/claude/stride/internal/config"
	"github.com/claude/stride/internal/history"
	stridemcp "github.com/claude/stride/internal/mcp"
	strideserver "github.com/claude/stride/internal/server"
	"github.com/claude/stride/internal/store"
	"github.com/claude/stride/internal/treadmill"
	"github.com/claude/stride/internal/workout"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "stride",
		Short:         "Structured treadmill workouts over Bluetooth",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	root.AddCommand(
		serveCmd(&configPath),
		mcpCmd(&configPath),
		workoutsCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stride:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// app is everything the serve and mcp commands share: config, catalog,
// store, history, and the treadmill connector.
type app struct {
	cfg       *config.Config
	catalog   *workout.Catalog
	store     *store.Store
	hist      *history.DB
	connector *treadmill.Connector
	log       *slog.Logger
}

func loadApp(configPath string, simulate bool, log *slog.Logger) (*app, error) {
	// The flag rides the env override so it lands before validation,
	// which only requires a device name for real hardware.
	if simulate {
		os.Setenv("STRIDE_TREADMILL_SIMULATE", "true")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	catalog := workout.NewCatalog(cfg.Workouts.Dir, log)
	if err := catalog.Load(); err != nil {
		return nil, fmt.Errorf("loading workout catalog: %w", err)
	}

	st := store.New(catalogEntries(catalog))

	hist, err := history.Open(cfg.History.Dir)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	var adapter treadmill.Adapter
	if cfg.Treadmill.Simulate {
		adapter = treadmill.NewSimulator("SIM-"+cfg.Treadmill.Device, time.Second)
		log.Info("using simulated treadmill", "device", cfg.Treadmill.Device)
	} else {
		ble, err := treadmill.NewBLEAdapter(log)
		if err != nil {
			hist.Close()
			return nil, fmt.Errorf("initializing bluetooth: %w", err)
		}
		adapter = ble
	}
	connector := treadmill.NewConnector(adapter, st, cfg.Treadmill.Device, time.Duration(cfg.Treadmill.ScanWindow), log)

	return &app{cfg: cfg, catalog: catalog, store: st, hist: hist, connector: connector, log: log}, nil
}

// commandRegistry wires the invoke commands the frontend calls. The
// payloads must stay in step with what bridge.Client decodes:
// read_workouts returns the catalog file names, not parsed workouts.
func (a *app) commandRegistry() *bridge.Registry {
	registry := bridge.NewRegistry(a.log)
	registry.Register("read_workouts", func(ctx context.Context, _ json.RawMessage) (any, error) {
		return a.catalog.Names(), nil
	})
	registry.Register("connect_to_treadmill", func(ctx context.Context, raw json.RawMessage) (any, error) {
		var params struct {
			Name string `json:"name"`
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &params); err != nil {
				return nil, fmt.Errorf("decoding arguments: %w", err)
			}
		}
		if err := a.connector.ConnectTo(ctx, params.Name); err != nil {
			return nil, err
		}
		return bridge.Unit{}, nil
	})
	return registry
}

func catalogEntries(catalog *workout.Catalog) []store.Workout {
	names := catalog.Names()
	entries := make([]store.Workout, len(names))
	for i, name := range names {
		entries[i] = store.Workout{Name: name}
	}
	return entries
}

func serveCmd(configPath *string) *cobra.Command {
	var simulate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			log.Info("Stride starting", "version", Version)

			a, err := loadApp(*configPath, simulate, log)
			if err != nil {
				return err
			}
			defer a.hist.Close()

			// Session history follows active-workout transitions.
			stopTracking := history.Track(a.store, a.hist, log)
			defer stopTracking()

			registry := a.commandRegistry()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Reload the catalog when workout files change on disk.
			go func() {
				err := a.catalog.Watch(ctx, func() {
					a.store.Dispatch(store.SetWorkouts{Workouts: catalogEntries(a.catalog)})
				})
				if err != nil && ctx.Err() == nil {
					log.Error("catalog watch failed", "error", err)
				}
			}()

			srv := strideserver.New(a.store, registry, a.connector, a.hist, log)

			addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}
			log.Info("server starting", "addr", addr)

			httpSrv := &http.Server{Handler: srv}
			errCh := make(chan error, 1)
			go func() {
				if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-quit:
				log.Info("shutting down", "signal", sig)
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				log.Error("shutdown error", "error", err)
			}
			if err := a.connector.Disconnect(); err != nil {
				log.Warn("disconnect error", "error", err)
			}
			log.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&simulate, "simulate", false, "use a simulated treadmill instead of real hardware")
	return cmd
}

func mcpCmd(configPath *string) *cobra.Command {
	var simulate bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Logs go to stderr: stdout carries the MCP protocol.
			log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

			a, err := loadApp(*configPath, simulate, log)
			if err != nil {
				return err
			}
			defer a.hist.Close()

			stopTracking := history.Track(a.store, a.hist, log)
			defer stopTracking()

			s := stridemcp.New(a.catalog, a.store, a.connector, a.hist, Version, log)
			return server.ServeStdio(s)
		},
	}
	cmd.Flags().BoolVar(&simulate, "simulate", false, "use a simulated treadmill instead of real hardware")
	return cmd
}

func workoutsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "workouts",
		Short: "Parse the workout catalog and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			catalog := workout.NewCatalog(cfg.Workouts.Dir, log)
			if err := catalog.Load(); err != nil {
				return fmt.Errorf("loading workout catalog: %w", err)
			}

			for _, w := range catalog.Workouts() {
				fmt.Printf("%s: %d steps, %dm%02ds, %dm\n",
					w.Name, len(w.Steps), w.Duration/60, w.Duration%60, w.Distance)
				for _, step := range w.Steps {
					fmt.Printf("  %-20s %3ds  %5.2f km/h  %+.1f%%\n",
						step.Name, step.Duration, float64(step.Pace)/100, float64(step.Angle)/10)
				}
			}
			return nil
		},
	}
}
