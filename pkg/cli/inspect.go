package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cameron-webmatter/buddystate/pkg/config"
	"github.com/cameron-webmatter/buddystate/pkg/inspector"
	"github.com/cameron-webmatter/buddystate/pkg/store"
	"github.com/cameron-webmatter/buddystate/pkg/watch"
)

var (
	inspectPort  int
	inspectHost  string
	inspectOpen  bool
	inspectWatch bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Serve a live inspector for the state document",
	Long: `Load the initial state document into a state registry and stream every
change to websocket clients. With --watch, edits to the document are pushed
into the registry as they are saved.`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectPort, "port", 0, "port to run the inspector on (overrides config)")
	inspectCmd.Flags().StringVar(&inspectHost, "host", "", "host to bind to (overrides config)")
	inspectCmd.Flags().BoolVar(&inspectOpen, "open", false, "open the state endpoint in a browser")
	inspectCmd.Flags().BoolVar(&inspectWatch, "watch", true, "push edits of the state document into the registry")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadProject()
	if err != nil {
		return err
	}
	if inspectPort != 0 {
		cfg.Inspector.Port = inspectPort
	}
	if inspectHost != "" {
		cfg.Inspector.Host = inspectHost
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	initial, err := config.LoadInitialState(cfg.State.File)
	if err != nil {
		return err
	}

	store.SetDefaultLogger(logger)
	store.Init(initial)
	bus := store.MustCurrent()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if inspectWatch && cfg.Watch.Enabled {
		w := watch.New(cfg.State.File, bus, initial,
			watch.WithDebounce(cfg.Debounce()),
			watch.WithLogger(logger),
		)
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("watch state: %w", err)
		}
	}

	insp := inspector.NewServer(bus,
		inspector.WithLogger(logger),
		inspector.WithOriginPolicy(inspector.OriginPolicy{
			AllowLocalhost: cfg.Inspector.AllowLocalhost,
			Allowed:        cfg.Inspector.AllowOrigins,
		}),
	)
	insp.Start()
	defer insp.Stop()

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: insp.Handler(cfg.Inspector.Path),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stateURL := fmt.Sprintf("http://%s%s/state", cfg.Addr(), cfg.Inspector.Path)
	logger.Info("inspector listening",
		zap.String("ws", fmt.Sprintf("ws://%s%s", cfg.Addr(), cfg.Inspector.Path)),
		zap.String("state", stateURL),
		zap.Strings("keys", bus.Keys()),
	)
	if inspectOpen {
		openBrowser(stateURL)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve inspector: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
