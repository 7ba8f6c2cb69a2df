package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/parkpulse/web/internal/adapters/flags"
	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/core/usecases"
)

var debugOpts struct {
	secret string
	ttl    time.Duration
	save   bool
}

var debugCookieCmd = &cobra.Command{
	Use:   "debug-cookie <real|near|in>",
	Short: "Mint a flag-override cookie that sets the debug geolocation mode",
	Long: `Encrypts a flag-override token with the server's flags secret. With --save
the cookie is stored in the state directory and sent by later commands;
"real" with --save removes it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, ok := domain.ParseGeoMode(args[0])
		if !ok {
			return fmt.Errorf("unknown mode %q, want real, near or in", args[0])
		}

		client, saveJar, err := session()
		if err != nil {
			return err
		}
		if mode == domain.GeoModeReal && debugOpts.save {
			client.SetCookie(flags.CookieName, "")
			return saveJar()
		}

		if debugOpts.secret == "" {
			return fmt.Errorf("--secret is required (or set FLAGS_SECRET)")
		}
		d, err := flags.NewDecrypter(debugOpts.secret)
		if err != nil {
			return err
		}
		token, err := d.EncryptOverrides(map[string]any{usecases.DebugGeoModeFlag: string(mode)}, debugOpts.ttl)
		if err != nil {
			return err
		}

		if !debugOpts.save {
			fmt.Printf("%s=%s\n", flags.CookieName, token)
			return nil
		}
		client.SetCookie(flags.CookieName, token)
		return saveJar()
	},
}

func init() {
	f := debugCookieCmd.Flags()
	f.StringVar(&debugOpts.secret, "secret", os.Getenv("FLAGS_SECRET"), "base64url flags secret shared with the server")
	f.DurationVar(&debugOpts.ttl, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	f.BoolVar(&debugOpts.save, "save", false, "store the cookie for later commands")
}
