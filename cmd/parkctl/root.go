package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/parkpulse/web/internal/client/api"
	"github.com/parkpulse/web/internal/pkg/logging"
)

var (
	serverURL string
	stateDir  string
	logLevel  string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "parkctl",
	Short: "parkctl talks to a ParkPulse web server like a browser tab would",
	Long: `parkctl resolves nearby parks and manages favorites through the ParkPulse
client SDK. Cookies (visitor id, favorites, debug flag overrides) are kept in
the state directory so consecutive invocations behave like one session.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(logging.New(os.Stderr, logLevel, "text"))
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	home, _ := os.UserHomeDir()
	defaultServer := os.Getenv("PARKPULSE_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:3000"
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "base URL of the web server (env PARKPULSE_SERVER)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", filepath.Join(home, ".parkpulse"), "directory holding cookies and favorites")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "per-request timeout")

	rootCmd.AddCommand(nearbyCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(debugCookieCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorLabel.Sprint("error:"), err)
		os.Exit(1)
	}
}

// session opens an API client with the saved cookie jar. The returned func
// writes the jar back.
func session() (*api.Client, func() error, error) {
	c := api.New(serverURL, timeout)
	jar := cookieJar{path: filepath.Join(stateDir, "cookies.json")}
	if err := jar.load(c); err != nil {
		return nil, nil, err
	}
	return c, func() error { return jar.save(c) }, nil
}
