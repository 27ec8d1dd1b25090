package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fentz26/resortops/internal/audit"
	"github.com/fentz26/resortops/internal/config"
	"github.com/fentz26/resortops/internal/controlplane"
	"github.com/fentz26/resortops/internal/monitor"
	"github.com/fentz26/resortops/internal/staffing"
	"github.com/fentz26/resortops/internal/store"
	"github.com/fentz26/resortops/internal/tasks"
	"github.com/spf13/cobra"
)

var (
	listenAddr string
	dbPath     string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the resortops daemon",
	Long:  `Starts the resortops daemon which serves the task board over HTTP and watches it for tasks that need attention.`,
	RunE:  runDaemon,
}

func init() {
	daemonCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address for the API server (overrides config)")
	daemonCmd.Flags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides config)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	log.Println("Starting resortops daemon...")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	// Initialize store
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return err
	}

	pdr := audit.NewPDRWriter(s)

	directory, err := staffing.NewDirectoryFromConfig(cfg.Staffing)
	if err != nil {
		s.Close()
		return err
	}
	matcher := staffing.NewMatcher(cfg.Staffing, directory)
	log.Printf("Staff directory loaded with %d members", directory.Count())

	// Create service and restore the board
	board := tasks.New()
	service := controlplane.NewService(board, s, pdr, matcher)
	service.SetLookahead(cfg.Monitor.Lookahead)
	n, err := service.Load()
	if err != nil {
		s.Close()
		return err
	}
	log.Printf("Restored %d tasks from %s", n, cfg.DBPath)

	server := controlplane.NewServer(service, s, cfg.Listen)

	var mon *monitor.Monitor
	if cfg.Monitor.Enabled {
		mon = monitor.New(board, pdr, cfg.Monitor)
		server.SetMonitor(mon)
		mon.Start()
	}
	stopMonitor := func() {
		if mon != nil {
			mon.Stop()
		}
	}

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)

	go func() {
		err := server.Start()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErr:
		if err != nil {
			log.Printf("Server error: %v", err)
			stopMonitor()
			s.Close()
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Println("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	stopMonitor()

	log.Println("Closing database connection...")
	if err := s.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}
