package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"rivet/internal/diag"
	"rivet/internal/diagfmt"
	"rivet/internal/driver"
	"rivet/internal/project"
	"rivet/internal/source"
	"rivet/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.rv|directory]",
	Short: "Check ownership and borrows in rivet source files",
	Long: `Check verifies moves, borrows and lifetimes in a single .rv file or in
all *.rv files under a directory. Without an argument the project root from
rivet.toml (or the current directory) is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	checkCmd.Flags().Bool("no-cache", false, "disable the on-disk result cache")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("no-progress", false, "disable the interactive progress view")
}

type checkOutcome struct {
	fileSet *source.FileSet
	results []driver.CheckDirResult
	err     error
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return fmt.Errorf("failed to get no-progress flag: %w", err)
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	// без аргумента проверяем корень проекта
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	searchDir := target
	if !info.IsDir() {
		searchDir = filepath.Dir(target)
	}

	// манифест задаёт умолчания, флаги их перекрывают
	manifest, found, err := project.Discover(searchDir)
	if err != nil {
		return err
	}
	if found {
		if jobs == 0 {
			jobs = manifest.Config.Check.Jobs
		}
		if !cmd.Root().PersistentFlags().Changed("max-diagnostics") && manifest.Config.Check.MaxDiagnostics > 0 {
			maxDiagnostics = manifest.Config.Check.MaxDiagnostics
		}
		if !manifest.Config.Check.Cache {
			noCache = true
		}
		if len(args) == 0 {
			target = manifest.Root
		}
	}

	pathMode := diagfmt.PathModeRelative
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	prettyOpts := diagfmt.PrettyOpts{
		Color:     useColor(cmd, os.Stderr),
		PathMode:  pathMode,
		ShowNotes: withNotes,
		ShowFixes: true,
	}
	jsonOpts := diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         pathMode,
		Max:              maxDiagnostics,
		IncludeNotes:     withNotes,
	}

	if !info.IsDir() {
		res, err := driver.Check(target, maxDiagnostics)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
		if format == "json" {
			if err := diagfmt.JSON(os.Stdout, res.Bag, res.FileSet, jsonOpts); err != nil {
				return err
			}
		} else {
			diagfmt.Pretty(os.Stderr, res.Bag, res.FileSet, prettyOpts)
		}
		if showTimings && !quiet {
			printTimings(os.Stderr, res.Timing)
		}
		return checkVerdict(cmd, quiet, format, 1, errorCount(res.Bag))
	}

	var cache *driver.DiskCache
	if !noCache {
		cache, err = driver.OpenDiskCache("rivet")
		if err != nil {
			// без кэша проверка всё равно возможна
			cache = nil
		}
	}

	opts := driver.CheckDirOptions{
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		Cache:          cache,
	}

	var outcome checkOutcome
	interactive := !noProgress && !quiet && format == "pretty" && isTerminal(os.Stdout)
	if interactive {
		outcome = runCheckWithUI(cmd.Context(), target, opts)
	} else {
		fileSet, results, err := driver.CheckDir(cmd.Context(), target, opts)
		outcome = checkOutcome{fileSet: fileSet, results: results, err: err}
	}
	if outcome.err != nil {
		return fmt.Errorf("check failed: %w", outcome.err)
	}

	totalErrors := 0
	if format == "json" {
		merged := diag.NewBag(maxDiagnostics * len(outcome.results))
		for _, res := range outcome.results {
			if res.Bag != nil {
				merged.Merge(res.Bag)
			}
		}
		merged.Sort()
		totalErrors = errorCount(merged)
		if err := diagfmt.JSON(os.Stdout, merged, outcome.fileSet, jsonOpts); err != nil {
			return err
		}
	} else {
		for _, res := range outcome.results {
			if res.LoadErr != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", res.Path, res.LoadErr)
				totalErrors++
				continue
			}
			diagfmt.Pretty(os.Stderr, res.Bag, outcome.fileSet, prettyOpts)
			totalErrors += errorCount(res.Bag)
			if showTimings && !quiet && !res.FromCache {
				fmt.Fprintf(os.Stderr, "%s:\n", res.Path)
				printTimings(os.Stderr, res.Timing)
			}
		}
	}
	return checkVerdict(cmd, quiet, format, len(outcome.results), totalErrors)
}

// runCheckWithUI запускает проверку с bubbletea-прогрессом поверх канала событий.
func runCheckWithUI(ctx context.Context, dir string, opts driver.CheckDirOptions) checkOutcome {
	files, err := listCheckedFiles(dir)
	if err != nil {
		return checkOutcome{err: err}
	}

	events := make(chan driver.Event, 256)
	opts.Events = events
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		fileSet, results, err := driver.CheckDir(ctx, dir, opts)
		outcomeCh <- checkOutcome{fileSet: fileSet, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("checking "+dir, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		outcome.err = uiErr
	}
	return outcome
}

func listCheckedFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == driver.SourceExt {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func errorCount(bag *diag.Bag) int {
	count := 0
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError {
			count++
		}
	}
	return count
}

func checkVerdict(cmd *cobra.Command, quiet bool, format string, files, errors int) error {
	if errors > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("found %d error(s) in %d file(s)", errors, files)
	}
	if !quiet && format == "pretty" {
		fmt.Fprintf(os.Stdout, "checked %d file(s), no errors\n", files)
	}
	return nil
}
