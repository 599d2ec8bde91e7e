package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/fenilsonani/file-organizer/internal/classify"
	"github.com/fenilsonani/file-organizer/internal/mover"
	"github.com/fenilsonani/file-organizer/internal/security"
	"github.com/fenilsonani/file-organizer/internal/ui"
)

var (
	savePath       string
	storePlan      bool
	planPath       string
	planID         string
	useLatest      bool
	applyRenaming  bool
	dryRun         bool
	skipDuplicates bool
	interactive    bool
	force          bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <dir>",
	Short: "Classify the files of a directory with the engine",
	Long: heredoc.Doc(`
		Runs the configured classification engine on a directory and shows
		the suggested folder and name for every file.

		Use --save to write the result to a plan file (JSON, or YAML for
		.yaml/.yml), or --store to keep it in the plan directory. A plan can
		be edited, reviewed and applied later with 'organizer move'.
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := newEngine()

		var result *classify.AnalyzeResult
		err := ui.RunWithSpinner(cmd.Context(), os.Stderr, "Classifying "+args[0], nil, func(ctx context.Context) error {
			var err error
			result, err = engine.Analyze(ctx, args[0])
			return err
		})
		if err != nil {
			return err
		}

		dir, _ := filepath.Abs(args[0])
		plan := &classify.Plan{Directory: dir, AnalyzeResult: *result}
		if savePath != "" {
			if err := classify.SavePlan(savePath, plan); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Plan saved to: %s\n", savePath)
		}
		if storePlan {
			store, err := openPlanStore()
			if err != nil {
				return err
			}
			if err := store.Save(plan); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Plan stored as: %s\n", plan.ID)
		}

		return current.reporter.Analysis(result)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <dir> <query>",
	Short: "Search the files of a directory by description",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := newEngine()

		var results []classify.FileClassification
		err := ui.RunWithSpinner(cmd.Context(), os.Stderr, "Searching "+args[0], nil, func(ctx context.Context) error {
			var err error
			results, err = engine.Search(ctx, args[0], args[1])
			return err
		})
		if err != nil {
			return err
		}
		return current.reporter.SearchResults(args[1], results)
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <dest>",
	Short: "Move the files of a plan into category folders",
	Long: heredoc.Doc(`
		Moves every selected file of a plan into its suggested folder under
		the destination root. Name collisions are resolved by appending _1,
		_2 and so on; a failed file does not stop the batch.

		The plan comes from --plan <file>, --id <plan id>, or --latest.
		Use --interactive to adjust the selection before anything moves.

		Examples:
		  organizer analyze ~/Downloads --save plan.yaml
		  organizer move ~/Organized --plan plan.yaml --dry-run
		  organizer move ~/Organized --latest --interactive --rename
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := current.cfg
		if cmd.Flags().Changed("rename") {
			cfg.Move.ApplyRenaming = applyRenaming
		}
		if cmd.Flags().Changed("dry-run") {
			cfg.Move.DryRun = dryRun
		}
		if cmd.Flags().Changed("skip-duplicates") {
			cfg.Move.SkipDuplicates = skipDuplicates
		}

		dest, err := destinationRoot(args[0], cfg.ProtectedPaths)
		if err != nil {
			return err
		}

		plan, err := resolvePlan()
		if err != nil {
			return err
		}

		items := plan.Classifications
		if interactive {
			if !ui.IsInteractive(os.Stdout) {
				return errors.New("--interactive needs a terminal")
			}
			reviewed, ok, err := ui.RunReview(items, os.Stdout)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Move cancelled")
				return nil
			}
			items = reviewed
		}

		decisions := classify.Decisions(items, classify.DecisionOptions{SkipDuplicates: cfg.Move.SkipDuplicates})
		selected := 0
		for _, d := range decisions {
			if d.Apply {
				selected++
			}
		}
		if selected == 0 {
			if current.reporter.IsStructured() {
				return current.reporter.Outcome(mover.Outcome{
					Skipped: len(decisions),
					DryRun:  cfg.Move.DryRun,
					Moves:   []mover.Move{},
				})
			}
			fmt.Println("No files selected, nothing to move")
			return nil
		}

		if !force && !cfg.Move.DryRun {
			question := fmt.Sprintf("Move %d files into %s?", selected, dest)
			if !confirm(os.Stdin, os.Stderr, question) {
				fmt.Println("Move cancelled")
				return nil
			}
		}

		executor := mover.New(current.fs)
		executor.SetDryRun(cfg.Move.DryRun)
		executor.SetLogger(current.logger)
		executor.SetProgressReporter(current.progress)

		var outcome mover.Outcome
		err = ui.RunWithSpinner(cmd.Context(), os.Stderr, "Moving files", current.progress, func(ctx context.Context) error {
			outcome = executor.Execute(ctx, dest, decisions, cfg.Move.ApplyRenaming)
			return nil
		})
		if err != nil {
			return err
		}
		return current.reporter.Outcome(outcome)
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <path> <new-name>",
	Short: "Rename a file in place",
	Long: heredoc.Doc(`
		Renames a file or folder within its own directory. The new name must
		be a plain file name and must not already exist.
	`),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", args[0], err)
		}

		if security.NewPathValidator().IsProtectedPath(path) {
			return fmt.Errorf("%w: refusing to rename inside a system path: %s", security.ErrUnsafePath, path)
		}

		executor := mover.New(current.fs)
		executor.SetDryRun(dryRun || current.cfg.Move.DryRun)
		executor.SetLogger(current.logger)

		target, err := executor.Rename(cmd.Context(), path, args[1])
		if err != nil {
			var moveErr *mover.MoveError
			if errors.As(err, &moveErr) {
				return errors.New(moveErr.UserMessage())
			}
			return err
		}
		if dryRun || current.cfg.Move.DryRun {
			fmt.Printf("[DRY RUN] Would rename to: %s\n", target)
		} else {
			fmt.Printf("Renamed to: %s\n", target)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&savePath, "save", "", "write the result to a plan file")
	analyzeCmd.Flags().BoolVar(&storePlan, "store", false, "keep the result in the plan directory")

	moveCmd.Flags().StringVar(&planPath, "plan", "", "plan file produced by 'analyze --save'")
	moveCmd.Flags().StringVar(&planID, "id", "", "stored plan id")
	moveCmd.Flags().BoolVar(&useLatest, "latest", false, "use the most recent stored plan")
	moveCmd.Flags().BoolVar(&applyRenaming, "rename", false, "apply suggested names")
	moveCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show where files would go without moving them")
	moveCmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", false, "leave files flagged as duplicates in place")
	moveCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "review the selection before moving")
	moveCmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")
	moveCmd.MarkFlagsMutuallyExclusive("plan", "id", "latest")

	renameCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the new path without renaming")
}

func newEngine() *classify.Engine {
	engine := classify.NewEngine(current.cfg.Engine.Command, current.cfg.Engine.Timeout)
	engine.SetLogger(current.logger)
	return engine
}

func resolvePlan() (*classify.Plan, error) {
	if planPath != "" {
		return classify.LoadPlan(planPath)
	}
	if planID == "" && !useLatest {
		return nil, errors.New("no plan given: use --plan, --id or --latest")
	}

	store, err := openPlanStore()
	if err != nil {
		return nil, err
	}
	if useLatest {
		return store.Latest()
	}
	return store.Load(planID)
}

// destinationRoot resolves dir to an absolute path that is safe to write into
func destinationRoot(dir string, protected []string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	validator := security.NewPathValidator()
	for _, p := range protected {
		validator.AddProtectedPath(p)
	}
	if err := validator.ValidateDestinationRoot(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// confirm asks a yes/no question; anything but y or yes means no
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (y/N): ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
