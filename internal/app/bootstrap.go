package app

import (
	"context"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"resource-dispatcher/internal/config"
	"resource-dispatcher/internal/manifest"
	"resource-dispatcher/internal/reconciler"
	"resource-dispatcher/internal/server"
	"resource-dispatcher/pkg/logging"
)

// Application is the running webhook process.
type Application struct {
	config  *config.Config
	source  manifest.Source
	engine  *reconciler.Engine
	server  *server.Server
	watcher *reconciler.ManifestWatcher
}

// NewApplication validates cfg, initializes logging and builds every component.
// Configuration problems are returned as config.ValidationErrors.
func NewApplication(cfg *config.Config, logOutput io.Writer) (*Application, error) {
	if err := InitLogging(cfg, logOutput); err != nil {
		return nil, err
	}

	source, err := NewSource(cfg)
	if err != nil {
		return nil, err
	}

	engine := reconciler.NewEngine(reconciler.Config{
		Label:              cfg.Label,
		ResyncAfterSeconds: cfg.ResyncAfterSeconds,
	}, source)

	app := &Application{
		config: cfg,
		source: source,
		engine: engine,
	}
	app.server = server.New(server.Options{
		Address:     cfg.ListenAddress(),
		OnListening: app.onListening,
	}, engine, source)

	if cfg.Watch {
		app.watcher = reconciler.NewManifestWatcher(cfg.Folder, source, reconciler.DefaultDebounceInterval)
	}

	logging.Info("Bootstrap", "Serving %s manifests from %s for namespaces labelled %s=true",
		cfg.Strategy, cfg.Folder, cfg.Label)
	return app, nil
}

// InitLogging validates cfg and configures the process-wide logger from it.
func InitLogging(cfg *config.Config, output io.Writer) error {
	if err := config.Validate(*cfg); err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if output == nil {
		output = os.Stderr
	}
	logging.Init(level, logging.Format(cfg.LogFormat), output)
	return nil
}

// NewSource creates the manifest source configured by cfg.
func NewSource(cfg *config.Config) (manifest.Source, error) {
	return manifest.New(manifest.Options{
		Folder:   cfg.Folder,
		Strategy: cfg.Strategy,
		Kinds:    cfg.Kinds,
	})
}

// Run serves sync requests until ctx is cancelled or the process receives
// SIGINT or SIGTERM.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.checkManifests()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Run(gctx)
	})
	if a.watcher != nil {
		g.Go(func() error {
			// A folder that cannot be watched must not take the webhook down.
			if err := a.watcher.Run(gctx); err != nil {
				logging.Warn("Bootstrap", "Manifest watcher stopped: %v", err)
			}
			return nil
		})
	}

	<-gctx.Done()
	notifySystemd(daemon.SdNotifyStopping)
	logging.Info("Bootstrap", "Shutting down")

	return g.Wait()
}

// checkManifests reports broken manifests at startup. The webhook still
// starts; /readyz keeps failing until the folder is fixed.
func (a *Application) checkManifests() {
	if err := a.source.Validate(); err != nil {
		reconciler.RecordManifestsValid(false)
		logging.Error("Bootstrap", err, "Manifest folder %s is not valid", a.config.Folder)
		return
	}
	reconciler.RecordManifestsValid(true)
}

func (a *Application) onListening(addr net.Addr) {
	logging.Info("Bootstrap", "Webhook ready on %s", addr)
	notifySystemd(daemon.SdNotifyReady)
}

// notifySystemd sends state to systemd. It does nothing outside systemd.
func notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logging.Warn("Bootstrap", "Failed to notify systemd (%s): %v", state, err)
		return
	}
	if sent {
		logging.Debug("Bootstrap", "Notified systemd: %s", state)
	}
}
