package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/parkpulse/web/internal/client/geolocation"
	"github.com/parkpulse/web/internal/client/nearby"
	"github.com/parkpulse/web/internal/core/domain"
)

var nearbyOpts struct {
	lat, lng float64
	radius   float64
	limit    int
	watch    bool
	json     bool
}

var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "Show parks around a position, or the park you are in",
	Long: `Resolves nearby parks through the geolocation provider and the nearby
client. Without --lat/--lng the server locates you by IP. An active debug
geolocation mode on the server (see debug-cookie) replaces the position.`,
	RunE: runNearby,
}

func init() {
	f := nearbyCmd.Flags()
	f.Float64Var(&nearbyOpts.lat, "lat", 0, "latitude")
	f.Float64Var(&nearbyOpts.lng, "lng", 0, "longitude")
	f.Float64Var(&nearbyOpts.radius, "radius", domain.DefaultNearbyRadius, "search radius in meters (0-50000)")
	f.IntVar(&nearbyOpts.limit, "limit", domain.DefaultNearbyLimit, "maximum number of parks (1-50)")
	f.BoolVar(&nearbyOpts.watch, "watch", false, "keep running and print every refresh")
	f.BoolVar(&nearbyOpts.json, "json", false, "print raw JSON")
	nearbyCmd.MarkFlagsRequiredTogether("lat", "lng")
}

// cliPermissions grants location access only when a position was given.
type cliPermissions bool

func (p cliPermissions) QueryGeolocation(context.Context) (geolocation.PermissionState, error) {
	if p {
		return geolocation.PermissionGranted, nil
	}
	return geolocation.PermissionPrompt, nil
}

func runNearby(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, saveJar, err := session()
	if err != nil {
		return err
	}
	defer func() {
		if err := saveJar(); err != nil {
			fmt.Fprintln(os.Stderr, errorLabel.Sprint("warning:"), "save cookies:", err)
		}
	}()

	var locator geolocation.StaticLocator
	hasPosition := cmd.Flags().Changed("lat")
	if hasPosition {
		locator.Coordinate = &domain.Coordinate{Latitude: nearbyOpts.lat, Longitude: nearbyOpts.lng}
	}

	provider, err := geolocation.NewProvider(geolocation.Options{
		Locator:     locator,
		Permissions: cliPermissions(hasPosition),
		DebugModes:  client,
	})
	if err != nil {
		return err
	}
	defer provider.Close()

	nc := nearby.NewClient(client)
	params := nearby.Params{Radius: nearbyOpts.radius, Limit: nearbyOpts.limit}

	show := func(st geolocation.State) error {
		res := nc.Query(ctx, st, params)
		if !res.Enabled {
			return nil
		}
		if res.Err != nil && res.Data == nil {
			return res.Err
		}
		if res.IsStale {
			staleLabel.Fprintf(os.Stderr, "showing data from %s: %v\n", res.FetchedAt.Format("15:04:05"), res.Err)
		}
		provider.SetInPark(res.Data.Type == domain.NearbyTypeInPark)
		if nearbyOpts.json {
			return printJSON(os.Stdout, res.Data)
		}
		printNearby(os.Stdout, res.Data)
		return nil
	}

	if !nearbyOpts.watch {
		provider.Start(ctx)
		return show(provider.State())
	}

	states := make(chan geolocation.State, 8)
	unsubscribe := provider.Subscribe(func(st geolocation.State) {
		select {
		case states <- st:
		default:
		}
	})
	defer unsubscribe()

	provider.Start(ctx)
	last := provider.State()
	if err := show(last); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case st := <-states:
			// Coordinates are replaced, never mutated, so pointer equality means no new reading.
			if st.Loading || !st.InitialCheckDone || (st.Position == last.Position && st.Error == last.Error) {
				continue
			}
			last = st
			if err := show(st); err != nil {
				var ferr *nearby.FetchError
				if !errors.As(err, &ferr) {
					return err
				}
				fmt.Fprintln(os.Stderr, errorLabel.Sprint("error:"), ferr.Message)
			}
		}
	}
}
