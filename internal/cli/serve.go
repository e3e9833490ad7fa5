package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/classify-app/classify/internal/config"
	"github.com/classify-app/classify/internal/engine"
	"github.com/classify-app/classify/internal/llm"
	"github.com/classify-app/classify/internal/server"
	"github.com/classify-app/classify/internal/store"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "path to config.toml")
}

// openEngine loads config, opens the database and wires the generation
// client. Shared by serve and the one-shot commands.
func openEngine(configPath string) (*store.DB, *engine.Engine, config.Config, error) {
	// A local .env is a convenience for development; absence is fine.
	godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, cfg, err
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, nil, cfg, fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, cfg, fmt.Errorf("open database: %w", err)
	}

	gen, err := llm.NewClient(cfg.Generator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: generator not configured (%v), generation disabled\n", err)
		gen = nil
	}

	return db, engine.New(db, gen), cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	db, eng, cfg, err := openEngine(serveConfigPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if eng.Gen != nil {
		fmt.Fprintf(os.Stderr, "  generator: %s (%s)\n", cfg.Generator.Provider, cfg.Generator.Model)
	}

	srv := server.New(db, eng, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "classify serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", db.Path)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
