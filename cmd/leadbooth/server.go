package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/leadbooth/internal/api"
	"github.com/kalambet/leadbooth/internal/config"
	"github.com/kalambet/leadbooth/internal/drive"
	"github.com/kalambet/leadbooth/internal/lead"
	"github.com/kalambet/leadbooth/internal/sheet"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the leadbooth server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running leadbooth server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show leadbooth system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

// tableStore is a tracking table the server can close on shutdown.
type tableStore interface {
	sheet.Table
	Close() error
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "leadbooth.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func openTable(cfg config.Config) (tableStore, error) {
	switch cfg.Sheet.Backend {
	case "postgres":
		return sheet.OpenPostgres(cfg.Postgres.DSN)
	default:
		return sheet.Open(cfg.Storage.DataDir)
	}
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "leadbooth version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("leadbooth is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("leadbooth is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the tracking table and make sure the header row exists.
	table, err := openTable(cfg)
	if err != nil {
		return fmt.Errorf("opening tracking table: %w", err)
	}
	defer func() {
		if err := table.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing table: %v\n", err)
		}
	}()

	schema, err := lead.SchemaByName(cfg.Sheet.Schema)
	if err != nil {
		return err
	}
	if err := sheet.EnsureHeader(table, schema.Columns); err != nil {
		return fmt.Errorf("ensuring header row: %w", err)
	}
	slog.Info("tracking table ready", "backend", cfg.Sheet.Backend, "schema", schema.Name)

	// Photo uploads need a Drive token. Without one, leads are still
	// captured and photo links degrade to error markers.
	var photos api.PhotoSaver
	if cfg.Drive.AccessToken != "" {
		driveClient := drive.NewClientWithBaseURLs(cfg.Drive.AccessToken, cfg.Drive.BaseURL, cfg.Drive.UploadURL)
		photos = api.NewPhotoUploader(driveClient, cfg.Drive.FolderName)
		slog.Info("photo uploads enabled", "folder", cfg.Drive.FolderName)
	} else {
		slog.Warn("no Drive access token configured, photo uploads disabled")
	}

	writer := lead.NewWriter(table, schema)
	searcher := lead.NewSearcher(table, schema)
	updater := lead.NewMeetingUpdater(table)

	handler := api.NewHandler(api.Deps{
		Writer:   writer,
		Searcher: searcher,
		Updater:  updater,
		Photos:   photos,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Writer:   writer,
		Searcher: searcher,
		Updater:  updater,
		Table:    table,
		Schema:   schema,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fmt.Fprintf(os.Stderr, "leadbooth listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
		return nil
	})
	slog.Info("MCP server started (stdio transport)")

	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("leadbooth is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop leadbooth (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to leadbooth (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	// Check server health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	running := false
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Backend", "%s", cfg.Sheet.Backend)
	printStatus("Schema", "%s", cfg.Sheet.Schema)
	if cfg.Drive.AccessToken != "" {
		printStatus("Photo uploads", "enabled (folder %q)", cfg.Drive.FolderName)
	} else {
		printStatus("Photo uploads", "disabled (no Drive token)")
	}

	// Count captured leads by opening the table directly. Only safe when
	// the server is not holding the SQLite file.
	if !running && cfg.Sheet.Backend == "sqlite" {
		if table, err := sheet.Open(cfg.Storage.DataDir); err == nil {
			if last, err := table.LastRow(); err == nil && last > 0 {
				printStatus("Captured leads", "%d", last-1)
			}
			table.Close()
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
