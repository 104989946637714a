// Package daemon launches and inspects the local cloudflared binary.
//
// This package shells out to the system's cloudflared; it does NOT speak the
// tunnel protocol itself. Shelling out means the daemon's own credential
// handling, protocol negotiation, and reconnection logic are inherited
// without reimplementation.
//
// All arguments are passed via exec.Command's argv (not shell interpolation),
// so tunnel IDs or config paths containing shell metacharacters cannot
// inject commands.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"
)

// ErrNotInstalled means the cloudflared binary is not on PATH.
var ErrNotInstalled = errors.New("cloudflared is not installed or not in PATH")

// Binary is the daemon executable name resolved via PATH.
const Binary = "cloudflared"

// Client runs cloudflared processes. It is stateless and safe for concurrent
// use; each method creates an independent exec.Cmd.
type Client struct{}

// New creates a daemon client.
func New() *Client { return &Client{} }

// EnsureInstalled checks that cloudflared is available on PATH. Call it
// before any daemon operation so the user gets one clear message instead of
// a confusing exec error mid-flow.
func EnsureInstalled() error {
	if _, err := exec.LookPath(Binary); err != nil {
		return ErrNotInstalled
	}
	return nil
}

// Version returns the installed daemon's version string, e.g.
// "cloudflared version 2025.8.1".
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, Binary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("run %s --version: %w", Binary, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// RunAttached runs the tunnel daemon in the foreground under a PTY,
// streaming its output to the user's terminal. The PTY keeps cloudflared's
// colored, line-erasing progress output intact, which a plain pipe would
// strip.
//
// Blocks until the daemon exits or ctx is cancelled; on cancellation the
// process is killed rather than left orphaned.
func (c *Client) RunAttached(ctx context.Context, configPath string) error {
	args := []string{"tunnel"}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	args = append(args, "run")
	cmd := exec.Command(Binary, args...)

	f, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer f.Close()

	// Kill the daemon when the context is cancelled. Ctrl+C reaches the
	// foreground process group on its own, but an explicit kill covers the
	// TUI-driven cancellation path too.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = cmd.Process.Kill()
		case <-done:
		}
	}()

	// Forward stdin into the PTY and PTY output to the terminal. The copy
	// returns once the daemon exits and the PTY master hits EOF.
	go func() {
		_, _ = io.Copy(f, os.Stdin)
	}()
	_, _ = io.Copy(os.Stdout, f)

	return cmd.Wait()
}

// InstallService shells out to `cloudflared service install <token>`,
// registering the daemon with the platform service manager using the
// tunnel's run token. Returns the combined output for display.
func (c *Client) InstallService(ctx context.Context, token string) (string, error) {
	out, err := exec.CommandContext(ctx, Binary, "service", "install", token).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("cloudflared service install: %w", err)
	}
	return string(out), nil
}

// UninstallService removes the daemon's service registration.
func (c *Client) UninstallService(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, Binary, "service", "uninstall").CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("cloudflared service uninstall: %w", err)
	}
	return string(out), nil
}
