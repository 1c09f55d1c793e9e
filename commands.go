package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dtkav/casemap/aggregate"
	"github.com/dtkav/casemap/config"
	"github.com/dtkav/casemap/logging"
	"github.com/dtkav/casemap/server"
	"github.com/dtkav/casemap/store"
	"github.com/dtkav/casemap/usecase"
)

var (
	sourceFile  string
	sourceAPI   string
	watchSource bool
	serveAddr   string
	attachDir   string
	reportFmt   string
	forceInit   bool
)

// -------------------------
// dashboard
// -------------------------

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Run the interactive terminal dashboard",
	Long: `Renders the sector pie and the sector×maturity and sector×country heatmaps.
Move with the arrow keys, switch charts with a/d and press enter on a slice or
cell to list the matching use cases.

Records come from --file, --api, or the configured store.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if watchSource && sourceFile == "" {
		return errors.New("--watch needs --file")
	}
	if sourceFile != "" && sourceAPI != "" {
		return errors.New("--file and --api are mutually exclusive")
	}

	// stderr belongs to the alternate screen while the TUI runs.
	if cfg.Logging.File == "" {
		if err := logging.Init(logging.Options{Level: cfg.Logging.Level, File: dashboardLogPath()}); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var load loader
	switch {
	case sourceFile != "":
		load = fileLoader(sourceFile)
	case sourceAPI != "":
		load = apiLoader(sourceAPI)
	default:
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		load = storeLoader(st)
	}

	var changes <-chan struct{}
	if watchSource {
		ch, err := watchFile(ctx, sourceFile, 300*time.Millisecond)
		if err != nil {
			return err
		}
		changes = ch
	}

	p := tea.NewProgram(newModel(load, changes, cfg.ChartOptions()), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func dashboardLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "casemap", fmt.Sprintf("dashboard-%s.log", time.Now().Format("2006-01-02")))
}

// -------------------------
// serve
// -------------------------

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the use-case API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := server.New(st,
			server.WithChartOptions(cfg.ChartOptions()),
			server.WithRateLimit(cfg.Server.RateLimit, cfg.Server.Burst),
			server.WithTimeout(cfg.GetServerTimeout()),
			server.WithNotFound(store.ErrNotFound),
		)
		logging.Info("serving list", "list", st.List(), "storage", cfg.Storage.Kind)
		return srv.ListenAndServe(ctx, addr)
	},
}

// -------------------------
// import
// -------------------------

var importCmd = &cobra.Command{
	Use:   "import <items.json>",
	Short: "Load list items (and attachments) into the store",
	Long: `Reads a JSON array of list items into the configured store. With
--attachments, files under <dir>/<item id>/ are attached to that item in
name order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		records, err := usecase.ReadFile(args[0])
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		items, files, err := importRecords(ctx, st, records, attachDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items and %d attachments into %q\n", items, files, st.List())
		return nil
	},
}

// importRecords stores every record and, when dir is set, the files found in
// dir/<id>/.
func importRecords(ctx context.Context, st *store.Store, records []aggregate.Record, dir string) (items, files int, err error) {
	for _, rec := range records {
		id, err := st.PutItem(ctx, rec)
		if err != nil {
			return items, files, err
		}
		items++
		if dir == "" {
			continue
		}

		itemDir := filepath.Join(dir, fmt.Sprint(id))
		entries, err := os.ReadDir(itemDir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return items, files, fmt.Errorf("read attachments for item %d: %w", id, err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			content, err := os.ReadFile(filepath.Join(itemDir, e.Name()))
			if err != nil {
				return items, files, err
			}
			if err := st.PutAttachment(ctx, id, e.Name(), content); err != nil {
				return items, files, err
			}
			files++
		}
	}
	logging.Info("import finished", "items", items, "attachments", files)
	return items, files, nil
}

// -------------------------
// report
// -------------------------

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the computed dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var load loader
		switch {
		case sourceFile != "":
			load = fileLoader(sourceFile)
		case sourceAPI != "":
			load = apiLoader(sourceAPI)
		default:
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			load = storeLoader(st)
		}

		records, err := load(ctx)
		if err != nil {
			return err
		}
		return writeReport(cmd.OutOrStdout(), aggregate.Build(records, cfg.ChartOptions()), reportFmt)
	},
}

// -------------------------
// config
// -------------------------

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to --config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := writeDefaultConfig(configPath, forceInit); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
		return nil
	},
}

// writeDefaultConfig saves the built-in defaults to path. An existing file is
// only replaced when force is set.
func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	return config.DefaultConfig().Save(path)
}

func init() {
	dashboardCmd.Flags().StringVarP(&sourceFile, "file", "f", "", "Read items from a JSON file")
	dashboardCmd.Flags().StringVar(&sourceAPI, "api", "", "Read items from a get-usecase-data URL")
	dashboardCmd.Flags().BoolVarP(&watchSource, "watch", "w", false, "Reload when --file changes")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")

	importCmd.Flags().StringVar(&attachDir, "attachments", "", "Directory of <item id>/<file> attachments")

	reportCmd.Flags().StringVarP(&sourceFile, "file", "f", "", "Read items from a JSON file")
	reportCmd.Flags().StringVar(&sourceAPI, "api", "", "Read items from a get-usecase-data URL")
	reportCmd.Flags().StringVar(&reportFmt, "format", "text", "Output format: json, pretty, csv, text")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reportCmd)

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
