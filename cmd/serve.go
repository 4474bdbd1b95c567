package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fleetcheck/config"
	"fleetcheck/storage"
	"fleetcheck/web"
)

var (
	servePort        int
	serveDBPath      string
	serveHistoryMode string
	serveCacheSize   int
	serveNoOpen      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local upload UI",
	Long: `Start a local HTTP server with an upload page.

Uploaded workbooks are validated with the active configuration. The annotated
workbook and a separate change log can be downloaded while the result stays in
the in-memory cache of recent runs. With history enabled, finished runs are also
recorded and listed under /history.

The server binds to localhost only and has no authentication.`,
	Example: `
  # Start local server on default port
  fleetcheck serve

  # Custom port, run history on, keep the last 50 results
  fleetcheck serve --port 9090 --history on --db ./fleetcheck.db --cache 50
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		recordHistory, err := resolveHistoryMode(serveHistoryMode, cfg.History.Enabled)
		if err != nil {
			return err
		}

		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		var store *storage.SQLiteStore
		if recordHistory {
			dbPath := serveDBPath
			if dbPath == "" {
				dbPath = cfg.History.DB
			}
			store, err = storage.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
		}

		opts, err := web.NewOptions(*cfg, logger)
		if err != nil {
			return err
		}
		if serveCacheSize > 0 {
			opts.CacheSize = serveCacheSize
		}
		handler, err := web.NewServer(opts, store, logger)
		if err != nil {
			return err
		}

		addr := net.JoinHostPort("localhost", fmt.Sprint(servePort))
		server := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		listenURL := fmt.Sprintf("http://localhost:%d", servePort)
		fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", listenURL)
		logger.Info("server started", zap.String("addr", addr), zap.Bool("history", store != nil))
		if !serveNoOpen {
			if openErr := openURLInBrowser(listenURL); openErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to open browser: %v\n", openErr)
			}
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port for the local web server")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "Path to run history SQLite database (default: history.db from config)")
	serveCmd.Flags().StringVar(&serveHistoryMode, "history", "auto", "Record run history: auto|on|off (auto uses history.enabled)")
	serveCmd.Flags().IntVar(&serveCacheSize, "cache", 0, "Number of recent results kept for download (default 16)")
	serveCmd.Flags().BoolVar(&serveNoOpen, "no-open", false, "Do not open browser automatically")
}

func openURLInBrowser(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
}
