package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/undiff"
	"github.com/fwojciec/undiff/bubbletea"
	"github.com/fwojciec/undiff/chroma"
	"github.com/fwojciec/undiff/clipboard"
	"github.com/fwojciec/undiff/config"
	"github.com/fwojciec/undiff/fs"
	"github.com/fwojciec/undiff/gitdiff"
	"github.com/fwojciec/undiff/jsonfile"
	"github.com/fwojciec/undiff/jsonl"
	"github.com/fwojciec/undiff/lipgloss"
	"github.com/fwojciec/undiff/logging"
	"github.com/fwojciec/undiff/logline"
	"github.com/fwojciec/undiff/redact"
	"github.com/fwojciec/undiff/replay"
	"github.com/fwojciec/undiff/sqlite"
	"github.com/fwojciec/undiff/watch"
	yamlcodec "github.com/fwojciec/undiff/yaml"
	"github.com/spf13/cobra"
)

// options holds flag values shared by the commands.
type options struct {
	configPath string
	logLevel   string

	// replay
	output       string
	format       string
	keep         []string
	mask         []string
	dropPrefixes []string
	dropStates   bool
	noCache      bool
	view         bool
	watch        bool

	// history
	limit int

	// config
	init bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "undiff",
		Short: "Replay diagnostic logs into a timeline of state and actions",
		Long: "Reconstructs application state from the diff and action lines of a\n" +
			"diagnostic log and exports the resulting timeline.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", config.Path(), "Config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		newReplayCmd(opts, stdout, stderr),
		newViewCmd(opts, stdout, stderr),
		newHistoryCmd(opts, stdout, stderr),
		newConfigCmd(opts, stdout),
	)
	return root
}

// withDefaultCommand routes `undiff LOG ...` to the replay command.
func withDefaultCommand(root *cobra.Command, args []string) []string {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return args
	}
	root.InitDefaultHelpCmd()
	if _, _, err := root.Find(args); err == nil {
		return args
	}
	return append([]string{"replay"}, args...)
}

func newReplayCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay LOG",
		Short: "Rebuild and export the timeline of a log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := replayConfig(cmd, opts)
			if err != nil {
				return err
			}

			// The viewer owns the terminal; keep console logging out of it.
			logger, err := newLogger(cfg, stderr, opts.view)
			if err != nil {
				return err
			}
			defer logger.Close()

			app, cleanup := buildApp(cfg, logger.Logger, stdout, opts.noCache)
			defer cleanup()

			req := ReplayRequest{
				LogPath:    args[0],
				OutputPath: cfg.Output.Path,
				Format:     cfg.Output.Format,
				View:       opts.view,
			}

			if !opts.watch {
				_, err := app.Replay(cmd.Context(), req)
				return err
			}

			w, err := watch.New(req.LogPath, watch.WithLogger(logger.Logger))
			if err != nil {
				return err
			}
			return app.Watch(cmd.Context(), req, w)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Output file (default from config)")
	f.StringVarP(&opts.format, "format", "f", "", "Output format: json, jsonl, yaml")
	f.StringArrayVar(&opts.keep, "keep", nil, "Keep only this state path, e.g. tracker.trackers (repeatable)")
	f.StringArrayVar(&opts.mask, "mask", nil, "Mask values of this key in states and actions (repeatable)")
	f.StringArrayVar(&opts.dropPrefixes, "drop-action-prefix", nil, "Drop actions whose type has this prefix (repeatable)")
	f.BoolVar(&opts.dropStates, "drop-states", false, "Omit every state snapshot")
	f.BoolVar(&opts.noCache, "no-cache", false, "Skip the replay cache")
	f.BoolVar(&opts.view, "view", false, "Browse the timeline after exporting")
	f.BoolVar(&opts.watch, "watch", false, "Replay again whenever the log changes")
	return cmd
}

func newViewCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "view FILE",
		Short: "Browse a previously exported timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, stderr, true)
			if err != nil {
				return err
			}
			defer logger.Close()

			app, cleanup := buildApp(cfg, logger.Logger, stdout, true)
			defer cleanup()
			return app.View(cmd.Context(), args[0])
		},
	}
}

func newHistoryCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent replay runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, stderr, false)
			if err != nil {
				return err
			}
			defer logger.Close()

			app, cleanup := buildApp(cfg, logger.Logger, stdout, true)
			defer cleanup()
			return app.History(cmd.Context(), opts.limit)
		},
	}
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	return cmd
}

func newConfigCmd(opts *options, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(stdout, "# Config file: %s\n", opts.configPath)
			switch {
			case config.ExistsAt(opts.configPath):
				fmt.Fprintln(stdout, "# Status: loaded")
			case opts.init:
				if err := config.SaveTo(opts.configPath, cfg); err != nil {
					return err
				}
				fmt.Fprintln(stdout, "# Status: written with defaults")
			default:
				fmt.Fprintln(stdout, "# Status: using defaults (no config file)")
			}
			fmt.Fprintln(stdout)
			return toml.NewEncoder(stdout).Encode(cfg)
		},
	}
	cmd.Flags().BoolVar(&opts.init, "init", false, "Write the defaults if no config file exists")
	return cmd
}

func loadConfig(opts *options) (config.Config, error) {
	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, config.Validate(cfg)
}

// replayConfig layers replay flags over the loaded configuration.
func replayConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
		if !flags.Changed("output") && cfg.Output.Path != "" {
			// log.json becomes log.yaml when only the format is overridden.
			p := cfg.Output.Path
			cfg.Output.Path = strings.TrimSuffix(p, filepath.Ext(p)) + "." + opts.format
		}
	}
	if flags.Changed("output") {
		cfg.Output.Path = opts.output
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = "log." + cfg.Output.Format
	}

	cfg.Filters.Keep = append(cfg.Filters.Keep, opts.keep...)
	cfg.Filters.Mask = append(cfg.Filters.Mask, opts.mask...)
	cfg.Filters.DropActionPrefixes = append(cfg.Filters.DropActionPrefixes, opts.dropPrefixes...)
	cfg.Filters.DropStates = cfg.Filters.DropStates || opts.dropStates

	return cfg, config.Validate(cfg)
}

func newLogger(cfg config.Config, stderr io.Writer, quiet bool) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Config{
		Level:  level,
		JSON:   cfg.Log.JSON,
		Quiet:  quiet,
		Dir:    cfg.Log.Dir,
		Output: stderr,
	})
	if err != nil {
		// Console logging still works without the file.
		logger.Warn("log file unavailable", "dir", cfg.Log.Dir, "error", err)
	}
	return logger, nil
}

// buildApp wires the production implementations. The returned cleanup
// releases the history database.
func buildApp(cfg config.Config, logger *slog.Logger, stdout io.Writer, noCache bool) (*App, func()) {
	markers := logline.Markers{
		Origin: cfg.Markers.Origin,
		Diff:   cfg.Markers.Diff,
		Action: cfg.Markers.Action,
	}
	states, actions := redact.FromConfig(cfg.Filters)

	var replayer undiff.Replayer = replay.NewBuilder(
		replay.WithClassifier(logline.NewClassifier(markers)),
		replay.WithParser(logline.NewParser(markers, logline.WithLogger(logger))),
		replay.WithStateFilter(states),
		replay.WithActionFilter(actions),
		replay.WithLogger(logger),
	)
	if cfg.Cache.Enabled && !noCache {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = fs.DefaultCacheDir()
		}
		replayer = fs.NewReplayer(replayer, dir, cfg.Fingerprint(), fs.WithLogger(logger))
	}

	encoders := map[string]undiff.Encoder{
		"json":  jsonfile.NewCodec(),
		"jsonl": jsonl.NewCodec(),
		"yaml":  yamlcodec.NewCodec(),
	}
	loaders := map[string]undiff.TimelineLoader{
		"json":  fs.NewLoader(jsonfile.NewCodec()),
		"jsonl": fs.NewLoader(jsonl.NewCodec()),
		"yaml":  fs.NewLoader(yamlcodec.NewCodec()),
	}

	app := &App{
		Replayer: replayer,
		Exporter: fs.NewExporter(encoders[cfg.Output.Format]),
		Viewer:   newViewer(cfg, logger),
		Detect:   chroma.NewDetector().DetectFormat,
		Loaders:  loaders,
		Logger:   logger,
		Out:      stdout,
	}

	cleanup := func() {}
	if cfg.History.Enabled {
		store, err := sqlite.Open(cfg.HistoryPath())
		if err != nil {
			logger.Warn("run history unavailable", "path", cfg.HistoryPath(), "error", err)
		} else {
			app.Store = store
			cleanup = func() { _ = store.Close() }
		}
	}
	return app, cleanup
}

func newViewer(cfg config.Config, logger *slog.Logger) *bubbletea.Viewer {
	theme, ok := lipgloss.ThemeByName(cfg.View.Theme)
	if !ok {
		theme = lipgloss.DefaultTheme()
	}

	modelOpts := []bubbletea.ModelOption{
		bubbletea.WithTheme(theme),
		bubbletea.WithDiffer(gitdiff.NewDiffer()),
		bubbletea.WithClipboard(clipboard.NewSystem()),
	}
	if tok, err := chroma.NewTokenizer(chroma.StyleFromPalette(theme.Palette())); err != nil {
		logger.Warn("syntax highlighting unavailable", "error", err)
	} else {
		modelOpts = append(modelOpts, bubbletea.WithTokenizer(tok))
	}
	return bubbletea.NewViewer(bubbletea.WithModelOptions(modelOpts...))
}
