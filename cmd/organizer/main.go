package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/fenilsonani/file-organizer/internal/catalog"
	"github.com/fenilsonani/file-organizer/internal/config"
	"github.com/fenilsonani/file-organizer/internal/logging"
	"github.com/fenilsonani/file-organizer/internal/progress"
	"github.com/fenilsonani/file-organizer/internal/reporter"
	"github.com/fenilsonani/file-organizer/internal/tracing"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Global flags
var (
	configPath string
	envFile    string
	verbose    bool
	outputFmt  string
	traceFlag  bool
)

// app holds what every command needs once flags and config are resolved
type app struct {
	cfg      *config.Config
	fs       afero.Fs
	logger   *logging.Logger
	reporter *reporter.Reporter
	progress *progress.Reporter
	catalog  *catalog.Catalog
	shutdown tracing.ShutdownFunc
	span     trace.Span
}

var current *app

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "organizer",
	Short: "Inspect directories and move files into category folders",
	Long: heredoc.Doc(`
		organizer inspects a directory and reorganizes it into category folders.

		It lists directory contents, summarizes storage by file category,
		finds duplicate files, and runs an external classification engine
		whose suggestions can be reviewed and then applied with 'move'.
	`),
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		current = a

		ctx, span := otel.Tracer("organizer").Start(cmd.Context(), cmd.CommandPath())
		a.span = span
		cmd.SetContext(ctx)
		if id := tracing.TraceID(ctx); id != "" {
			a.logger.Debug("Trace ID: %s", id)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/file-organizer/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with ORGANIZER_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "summary", "output format (summary, table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "print OpenTelemetry spans to stderr")

	rootCmd.AddCommand(listCmd, foldersCmd, statsCmd, categoryCmd, categoriesCmd, duplicatesCmd)
	rootCmd.AddCommand(analyzeCmd, searchCmd, moveCmd, renameCmd)
	rootCmd.AddCommand(plansCmd, configCmd)
}

func newApp(cmd *cobra.Command) (*app, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	format, err := reporter.ParseFormat(outputFmt)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFile(cfg.Log.File, consoleLevel(level, verbose, cfg.Log.File))
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Default().Merge(cfg.ExtraCategories)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("invalid extra_categories: %w", err)
	}

	enabled := cfg.Trace
	if cmd.Flags().Changed("trace") {
		enabled = traceFlag
	}
	shutdown, err := tracing.Init(os.Stderr, "organizer", Version, enabled)
	if err != nil {
		logger.Close()
		return nil, err
	}

	logger.Debug("Config loaded, output=%s trace=%t", format, enabled)
	return &app{
		cfg:      cfg,
		fs:       afero.NewOsFs(),
		logger:   logger,
		reporter: reporter.New(os.Stdout, format),
		progress: progress.NewReporter(),
		catalog:  cat,
		shutdown: shutdown,
	}, nil
}

func closeApp() {
	if current == nil {
		return
	}
	if current.span != nil {
		current.span.End()
	}
	if err := current.shutdown(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "failed to flush traces:", err)
	}
	current.logger.Close()
	current = nil
}

// consoleLevel keeps routine info lines off the terminal unless asked for,
// so they do not interleave with the spinner and report output
func consoleLevel(configured logging.Level, verbose bool, logFile string) logging.Level {
	if verbose {
		return logging.LevelDebug
	}
	if logFile == "" && configured < logging.LevelWarn {
		return logging.LevelWarn
	}
	return configured
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	cfgPath, err := config.GetConfigPath()
	if err != nil {
		return nil, err
	}

	return config.Load(cfgPath)
}
