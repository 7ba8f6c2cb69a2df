package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parkpulse/web/internal/client/favorites"
	"github.com/parkpulse/web/internal/core/domain"
)

var favoritesJSON bool

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage favorite parks, attractions, shows and restaurants",
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <type> <id>",
	Short: "Add a favorite",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(s *favorites.Store) error {
			t, err := domain.ParseFavoriteType(args[0])
			if err != nil {
				return err
			}
			return s.Add(t, args[1])
		})
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove <type> <id>",
	Short: "Remove a favorite",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(s *favorites.Store) error {
			t, err := domain.ParseFavoriteType(args[0])
			if err != nil {
				return err
			}
			return s.Remove(t, args[1])
		})
	},
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <type> <id>",
	Short: "Toggle a favorite and print whether it is now set",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(s *favorites.Store) error {
			t, err := domain.ParseFavoriteType(args[0])
			if err != nil {
				return err
			}
			on, err := s.Toggle(t, args[1])
			if err != nil {
				return err
			}
			fmt.Println(on)
			return nil
		})
	},
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites stored locally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := favorites.NewStore(favorites.Config{Persister: favoritesFile()})
		if err != nil {
			return err
		}
		defer s.Close()

		snap := s.Snapshot()
		if favoritesJSON {
			return printJSON(os.Stdout, snap)
		}
		for _, t := range domain.FavoriteTypes {
			ids := snap.IDs(t)
			if len(ids) == 0 {
				continue
			}
			heading.Printf("%ss\n", t)
			fmt.Println("  " + strings.Join(ids, "\n  "))
		}
		return nil
	},
}

func init() {
	favoritesListCmd.Flags().BoolVar(&favoritesJSON, "json", false, "print raw JSON")
	favoritesCmd.AddCommand(favoritesAddCmd, favoritesRemoveCmd, favoritesToggleCmd, favoritesListCmd)
}

func favoritesFile() favorites.FilePersister {
	return favorites.FilePersister{Path: filepath.Join(stateDir, "favorites")}
}

// withStore runs one mutation and flushes the debounced sync before exiting.
// A failed sync is reported but the local change stands.
func withStore(ctx context.Context, fn func(*favorites.Store) error) error {
	client, saveJar, err := session()
	if err != nil {
		return err
	}
	s, err := favorites.NewStore(favorites.Config{
		Persister: favoritesFile(),
		Syncer:    client,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(s); err != nil {
		return err
	}
	if err := s.Flush(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorLabel.Sprint("warning:"), "saved locally, server sync failed:", err)
	}
	return saveJar()
}
