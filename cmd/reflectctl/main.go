// Package main implements reflectctl, a command-line client for the journal
// API: log in, submit today's reflection, and wait for its analysis.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/consciousness-backend/internal/platform/logger"
	"github.com/yungbote/consciousness-backend/internal/pollclient"
)

var (
	serverURL string
	email     string
	password  string
	token     string
	timeout   time.Duration
	outJSON   bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reflectctl",
	Short: "Command-line client for the daily reflection API",
	Long: `reflectctl talks to a running journal server.

Credentials come from --email/--password (or REFLECT_EMAIL/REFLECT_PASSWORD),
or an access token from --token (or REFLECT_TOKEN).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("REFLECT_SERVER", "http://localhost:5000"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&email, "email", os.Getenv("REFLECT_EMAIL"), "account email")
	rootCmd.PersistentFlags().StringVar(&password, "password", os.Getenv("REFLECT_PASSWORD"), "account password")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("REFLECT_TOKEN"), "access token (skips login)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")
	rootCmd.PersistentFlags().BoolVar(&outJSON, "json", false, "print results as JSON")

	rootCmd.AddCommand(submitCmd, profileCmd, latestCmd, waitCmd)
}

// connect returns a client that is logged in or carries --token.
func connect(ctx context.Context) (*pollclient.Client, error) {
	c := pollclient.NewClient(serverURL, timeout)
	if token != "" {
		c.SetToken(token)
		return c, nil
	}
	if email == "" || password == "" {
		return nil, fmt.Errorf("either --token or --email and --password are required")
	}
	if err := c.Login(ctx, email, password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return c, nil
}

func cliLogger() *logger.Logger {
	log, err := logger.New(envOr("LOG_MODE", "test"))
	if err != nil {
		return logger.NewNop()
	}
	return log
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
