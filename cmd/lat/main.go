package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/lattice/internal/config"
	"github.com/alfredjeanlab/lattice/internal/events"
	"github.com/alfredjeanlab/lattice/internal/graphs"
	"github.com/alfredjeanlab/lattice/internal/store"
	"github.com/alfredjeanlab/lattice/internal/store/badger"
	"github.com/alfredjeanlab/lattice/internal/store/postgres"
	"github.com/alfredjeanlab/lattice/internal/ui"
)

var (
	dbURL       string
	dataDir     string
	jsonOutput  bool
	noColorFlag bool

	cfg *config.Config
	st  store.Store
	pub events.Publisher
	svc *graphs.Service
)

// openStore selects the backend: Postgres when a database URL is
// configured, otherwise embedded Badger under the data directory.
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		return postgres.New(cfg.DatabaseURL)
	}
	return badger.Open(badger.Config{Path: cfg.DataDir})
}

var rootCmd = &cobra.Command{
	Use:   "lat <command>",
	Short: "Manage isolated curriculum graphs",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColorFlag || !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		// Active profile sits below environment variables and above defaults.
		p := activeProfile()
		if p.DatabaseURL != "" && os.Getenv("LATTICE_DATABASE_URL") == "" {
			cfg.DatabaseURL = p.DatabaseURL
		}
		if p.DataDir != "" && os.Getenv("LATTICE_DATA_DIR") == "" {
			cfg.DataDir = p.DataDir
		}
		if p.NATSURL != "" && os.Getenv("LATTICE_NATS_URL") == "" {
			cfg.NATSURL = p.NATSURL
		}

		if dbURL != "" {
			cfg.DatabaseURL = dbURL
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}

		st, err = openStore(cfg)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}

		if cfg.NATSURL != "" {
			p, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return fmt.Errorf("connecting to NATS: %w", err)
			}
			pub = p
		}

		svc = graphs.NewService(st, pub)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if pub != nil {
			pub.Close()
		}
		if st != nil {
			st.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Postgres URL (default $LATTICE_DATABASE_URL; embedded store when empty)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "embedded store directory (default $LATTICE_DATA_DIR or ~/.local/share/lattice)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable ANSI colors")

	rootCmd.AddGroup(
		&cobra.Group{ID: "graphs", Title: "Graphs:"},
		&cobra.Group{ID: "content", Title: "Nodes & Edges:"},
		&cobra.Group{ID: "views", Title: "Views:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Graphs
	rootCmd.AddCommand(graphCmd)

	// Nodes & edges
	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(edgeCmd)

	// Views
	rootCmd.AddCommand(closureCmd)
	rootCmd.AddCommand(reachCmd)
	rootCmd.AddCommand(cyclesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)

	// System
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
