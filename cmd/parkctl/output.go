package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/parkpulse/web/internal/core/domain"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	heading    = color.New(color.Bold)
	staleLabel = color.New(color.FgYellow)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatDistance(m float64) string {
	if m < 1000 {
		return fmt.Sprintf("%.0f m", m)
	}
	return fmt.Sprintf("%.1f km", m/1000)
}

func formatWait(w *int) string {
	if w == nil {
		return "-"
	}
	return fmt.Sprintf("%d min", *w)
}

func printNearby(w io.Writer, res *domain.NearbyResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	switch res.Type {
	case domain.NearbyTypeInPark:
		p := res.InPark.Park
		heading.Fprintf(tw, "In park: %s (%s)\n", p.Name, formatDistance(p.Distance))
		fmt.Fprintln(tw, "ATTRACTION\tSTATUS\tWAIT\tDISTANCE")
		for _, a := range res.InPark.Attractions {
			dist := "-"
			if a.Distance != nil {
				dist = formatDistance(*a.Distance)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Name, a.Status, formatWait(a.WaitTime), dist)
		}
	case domain.NearbyTypeNearbyParks:
		heading.Fprintf(tw, "%d parks nearby\n", res.NearbyParks.Count)
		fmt.Fprintln(tw, "PARK\tCITY\tSTATUS\tDISTANCE")
		for _, p := range res.NearbyParks.Parks {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.City, p.Status, formatDistance(p.Distance))
		}
	}
}
