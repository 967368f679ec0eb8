package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvaldes/fleetcore-go/internal/adapters/api"
	"github.com/mvaldes/fleetcore-go/internal/adapters/persistence"
	"github.com/mvaldes/fleetcore-go/internal/adapters/ws"
	"github.com/mvaldes/fleetcore-go/internal/application/automation"
	"github.com/mvaldes/fleetcore-go/internal/domain/shared"
	"github.com/mvaldes/fleetcore-go/internal/infrastructure/config"
	"github.com/mvaldes/fleetcore-go/internal/infrastructure/database"
)

const version = "0.3.0"

var configPath string

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fleetd",
		Short: "fleetd - autonomous fleet automation daemon",
		Long: `fleetd runs the fleet automation loop: it assigns automation tasks to
ships, advances them every tick, and reports progress over a websocket
push channel.

Examples:
  fleetd run
  fleetd run --config ./configs/fleetcore.yaml
  fleetd version`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to the config directory (default: ., ./configs, /etc/fleetcore)")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fleetd version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fleetd v%s\n", version)
		},
	}
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the automation daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("fleetd v%s\n", version)
			fmt.Println("Loading configuration...")
			cfg := config.MustLoadConfig(configPath)
			return run(cfg)
		},
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Database
	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	fmt.Println("Database connected")

	// 2. Repositories
	taskRepo := persistence.NewTaskRepository(db)
	eventRepo := persistence.NewTaskEventRepository(db)
	waypointRepo := persistence.NewGormWaypointRepository(db)

	// 3. Game API client
	clock := &shared.RealClock{}
	apiClient := api.NewClient(&cfg.API, clock)
	fmt.Println("API client initialized")

	// 4. Waypoint source: in-memory cache over the API, written through
	// to the waypoint table so restarts start warm.
	waypoints := automation.NewCachedWaypointSource(apiClient, func(ctx context.Context, wps []*shared.Waypoint) {
		if err := waypointRepo.SaveAll(ctx, wps, clock.Now()); err != nil {
			log.Printf("waypoint cache write-through failed: %v", err)
		}
	})

	// 5. Notification hub
	var hub *ws.Hub
	if cfg.Notify.Enabled {
		hub = ws.NewHub(cfg.Notify.BufferSize)
		go hub.Run()
	}

	// 6. Automation manager
	env := &automation.Env{
		API:       apiClient,
		Waypoints: waypoints,
		Clock:     clock,
	}
	var publisher automation.Publisher
	if hub != nil {
		publisher = hub
	}
	manager := automation.NewManager(env, cfg.Automation, taskRepo, eventRepo, publisher)

	// 7. Control server (status queries, start/stop, websocket feed)
	if cfg.Notify.Enabled {
		srv := newControlServer(manager, hub, cfg.Notify.Address)
		go func() {
			fmt.Printf("Control server listening on %s\n", cfg.Notify.Address)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("control server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	fmt.Printf("Automation loop started (tick every %s)\n", cfg.Automation.TickInterval)
	err = manager.Run(ctx)
	fmt.Println("Shutting down...")
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}
