// Command einzel launches a single application instance. If an instance is
// already running for the configured directories, the arguments are
// forwarded to it and the process exits; otherwise it becomes the instance
// holder and serves activation requests until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/codefionn/einzel/internal/config"
	"github.com/codefionn/einzel/internal/instancelock"
	"github.com/codefionn/einzel/internal/logger"
	"github.com/codefionn/einzel/internal/markerfile"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "config file path (default: per-user location)")
		logLevel   = flag.String("log-level", "", "override the configured log level")
	)
	flag.Parse()

	cfgPath := *configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if cfg.ConfigDir == "" || cfg.SystemDir == "" {
		return errors.New("config_dir and system_dir must be set")
	}

	if err := initLogging(cfg); err != nil {
		return err
	}
	defer logger.Global().Close()

	lock := instancelock.New(instancelock.Options{})
	defer lock.Dispose()

	lock.SetActivateHandler(func(args []string) {
		if len(args) == 0 {
			return
		}
		logger.Info("activation request from %s", args[0])
		fmt.Printf("activate: cwd=%s args=%s\n", args[0], strings.Join(args[1:], " "))
	})

	// The config directory carries the token, the system directory the
	// port marker. The second call reuses the already-bound socket.
	status, err := lock.Lock(cfg.ConfigDir, cfg.ConfigDir, false, flag.Args()...)
	if err != nil {
		return lockUnavailable(err)
	}
	if status == instancelock.NoInstance {
		status, err = lock.Lock(cfg.SystemDir, cfg.ConfigDir, true, flag.Args()...)
		if err != nil {
			return lockUnavailable(err)
		}
	}

	switch status {
	case instancelock.Activated:
		fmt.Println("forwarded to the running instance")
		return nil
	case instancelock.CannotActivate:
		return errors.New("a running instance owns this directory but did not respond; check its log")
	}

	fmt.Printf("einzel: instance holder on port %d\n", lock.Port())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchConfig(ctx, cfgPath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	// Marker cleanup is best-effort; a stale marker only costs the next
	// starter a failed probe.
	if err := markerfile.NewToken(cfg.ConfigDir).Remove(); err != nil {
		logger.Warn("%v", err)
	}
	if err := markerfile.NewPort(cfg.SystemDir).Remove(); err != nil {
		logger.Warn("%v", err)
	}

	return nil
}

func initLogging(cfg *config.Config) error {
	level := logger.ParseLevel(cfg.LogLevel)
	if cfg.LogPath != "" {
		return logger.Init(level, cfg.LogPath)
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logger.InitConsole(level, os.Stderr)
	}
	return nil
}

// watchConfig re-applies the log level when the config file changes.
func watchConfig(ctx context.Context, path string) {
	err := config.Watch(ctx, path, func(cfg *config.Config) {
		logger.Global().SetLevel(logger.ParseLevel(cfg.LogLevel))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("config watcher stopped: %v", err)
	}
}

func lockUnavailable(err error) error {
	if errors.Is(err, instancelock.ErrPortExhausted) {
		return fmt.Errorf("cannot start: %w (is the candidate port range blocked?)", err)
	}
	return err
}
