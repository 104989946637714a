// Package svc provides cross-platform system service support for the tunnel
// daemon. The installed service runs this binary with `service run`, which in
// turn supervises cloudflared, so start/stop/status work identically across
// systemd, launchd and the Windows service manager.
package svc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/kardianos/service"
	"github.com/rs/zerolog/log"
)

// RunFunc runs the tunnel daemon until ctx is cancelled.
type RunFunc func(ctx context.Context, configPath string) error

// Program implements service.Interface for the kardianos/service library.
type Program struct {
	ConfigPath string  // tunnel config file passed to the daemon
	RunDaemon  RunFunc // function that runs the daemon in the foreground

	ctx    context.Context
	cancel context.CancelFunc
	done   chan error
}

// Start is called when the service starts.
// It must not block - the actual work runs in a goroutine.
func (p *Program) Start(s service.Service) error {
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.done = make(chan error, 1)

	go func() {
		if p.RunDaemon == nil {
			p.done <- fmt.Errorf("daemon run function not configured")
			return
		}
		p.done <- p.RunDaemon(p.ctx, p.ConfigPath)
	}()

	return nil
}

// Stop signals the daemon goroutine to stop and waits for it.
func (p *Program) Stop(s service.Service) error {
	if p.cancel != nil {
		p.cancel()
	}
	if p.done != nil {
		err := <-p.done
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}

// Config holds configuration for service installation.
type Config struct {
	Name        string // service name registered with the platform manager
	DisplayName string // display name shown in the service manager
	Description string // service description
	ConfigPath  string // tunnel config file the daemon reads
	UserName    string // user to run the service as (Linux/macOS only)
}

// DefaultName is the service name used when none is given.
const DefaultName = "opentunnel"

// DefaultConfig returns the standard service registration.
func DefaultConfig(configPath string) *Config {
	return &Config{
		Name:        DefaultName,
		DisplayName: "OpenTunnel Daemon",
		Description: "Cloudflare Tunnel daemon supervised by opentunnel",
		ConfigPath:  configPath,
	}
}

// newServiceConfig builds the kardianos service.Config.
func newServiceConfig(cfg *Config) *service.Config {
	args := []string{"service", "run"}
	if cfg.ConfigPath != "" {
		args = append(args, "--config", cfg.ConfigPath)
	}

	svcCfg := &service.Config{
		Name:        cfg.Name,
		DisplayName: cfg.DisplayName,
		Description: cfg.Description,
		Arguments:   args,
	}

	switch runtime.GOOS {
	case "linux":
		svcCfg.Dependencies = []string{"After=network-online.target", "Wants=network-online.target"}
		svcCfg.Option = service.KeyValue{
			"Restart":    "on-failure",
			"RestartSec": "5",
		}
		if cfg.UserName != "" {
			svcCfg.UserName = cfg.UserName
		}
	case "darwin":
		svcCfg.Option = service.KeyValue{
			"KeepAlive":     true,
			"RunAtLoad":     true,
			"SessionCreate": true,
		}
		if cfg.UserName != "" {
			svcCfg.UserName = cfg.UserName
		}
	case "windows":
		svcCfg.Option = service.KeyValue{
			"OnFailure":      "restart",
			"OnFailureDelay": "5s",
		}
	}

	return svcCfg
}

// newService creates a service instance bound to this executable.
func newService(prg *Program, cfg *Config) (service.Service, error) {
	if _, err := os.Executable(); err != nil {
		return nil, fmt.Errorf("get executable path: %w", err)
	}
	return service.New(prg, newServiceConfig(cfg))
}

// Install installs the service. With force, a running or already installed
// service is replaced.
func Install(cfg *Config, force bool) error {
	prg := &Program{ConfigPath: cfg.ConfigPath}
	svc, err := newService(prg, cfg)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	status, err := svc.Status()
	if err == nil {
		switch status {
		case service.StatusRunning:
			if !force {
				return fmt.Errorf("service %q is running; stop it first or use --force", cfg.Name)
			}
			if err := svc.Stop(); err != nil {
				log.Warn().Err(err).Msg("failed to stop service")
			}
			if err := svc.Uninstall(); err != nil {
				log.Warn().Err(err).Msg("failed to uninstall service")
			}
		case service.StatusStopped:
			if !force {
				return fmt.Errorf("service %q already installed; use --force to reinstall", cfg.Name)
			}
			if err := svc.Uninstall(); err != nil {
				log.Warn().Err(err).Msg("failed to uninstall service")
			}
		}
	}

	if err := svc.Install(); err != nil {
		return fmt.Errorf("install service: %w", err)
	}

	return nil
}

// Uninstall stops the service if running and removes it.
func Uninstall(cfg *Config) error {
	prg := &Program{ConfigPath: cfg.ConfigPath}
	svc, err := newService(prg, cfg)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	status, _ := svc.Status()
	if status == service.StatusRunning {
		if err := svc.Stop(); err != nil {
			log.Warn().Err(err).Msg("failed to stop service")
		}
	}

	if err := svc.Uninstall(); err != nil {
		return fmt.Errorf("uninstall service: %w", err)
	}

	return nil
}

// Start starts the installed service.
func Start(cfg *Config) error {
	prg := &Program{ConfigPath: cfg.ConfigPath}
	svc, err := newService(prg, cfg)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	if err := svc.Start(); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	return nil
}

// Stop stops the installed service.
func Stop(cfg *Config) error {
	prg := &Program{ConfigPath: cfg.ConfigPath}
	svc, err := newService(prg, cfg)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	if err := svc.Stop(); err != nil {
		return fmt.Errorf("stop service: %w", err)
	}
	return nil
}

// Restart restarts the installed service.
func Restart(cfg *Config) error {
	prg := &Program{ConfigPath: cfg.ConfigPath}
	svc, err := newService(prg, cfg)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	if err := svc.Restart(); err != nil {
		return fmt.Errorf("restart service: %w", err)
	}
	return nil
}

// Status returns the service status.
func Status(cfg *Config) (service.Status, error) {
	prg := &Program{ConfigPath: cfg.ConfigPath}
	svc, err := newService(prg, cfg)
	if err != nil {
		return service.StatusUnknown, fmt.Errorf("create service: %w", err)
	}
	return svc.Status()
}

// StatusString returns a human-readable status string.
func StatusString(status service.Status) string {
	switch status {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Run hands control to the service manager. Called from `service run` when
// the manager starts us.
func Run(prg *Program, cfg *Config) error {
	svc, err := newService(prg, cfg)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return svc.Run()
}

// CheckPrivileges checks that the current user can manage system services.
func CheckPrivileges() error {
	switch runtime.GOOS {
	case "windows":
		// The install call fails with a clearer error if not elevated.
		return nil
	default:
		if os.Geteuid() != 0 {
			return fmt.Errorf("root privileges required (use sudo)")
		}
		return nil
	}
}
