package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/shearops/shear/internal/config"
	"github.com/shearops/shear/internal/engine"
	"github.com/shearops/shear/internal/eventlog"
	"github.com/shearops/shear/internal/lockfile"
	"github.com/shearops/shear/internal/namelist"
	"github.com/shearops/shear/internal/profile"
	"github.com/shearops/shear/internal/prompt"
	"github.com/shearops/shear/internal/runstate"
	"github.com/shearops/shear/internal/sink"
	"github.com/shearops/shear/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one version-trimming pass",
	Long: `Runs one trimming pass over the site's document libraries: versions
older than the cutoff are planned (dry run) or deleted, batch by batch.

The first run against a fresh state directory always executes as a dry
run, whatever flags say. Delete mode asks for a typed confirmation
unless --confirm supplies the phrase up front. Every planned or deleted
version lands in the action log; storage is snapshotted before and
after so the report can state what a run actually reclaimed.`,
	Example: `  shear run
  shear run --library "Documents" --older-than 90
  shear run --delete --batch-percent 10
  shear run --delete --confirm DELETE --auto-continue --library-list libs.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		runTrim(cmd)
	},
}

func init() {
	registerRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("older-than", engine.DefaultOlderThanDays, "Version age cutoff in days")
	cmd.Flags().String("library", "", "Trim a single library by exact title")
	cmd.Flags().String("library-list", "", "CSV or line file naming the libraries to trim")
	cmd.Flags().Bool("delete", false, "Request delete mode (first run is always a dry run)")
	cmd.Flags().String("confirm", "", "Pre-approved confirmation phrase for non-interactive delete runs")
	cmd.Flags().Int("batch-percent", engine.DefaultBatchPercent, "Per-batch share of discovered items, in percent")
	cmd.Flags().Int("max-batch-minutes", engine.DefaultMaxBatchMinutes, "Per-batch wall-clock ceiling in minutes")
	cmd.Flags().Bool("auto-continue", false, "Start the next batch without asking")
	cmd.Flags().Bool("no-batching", false, "Process everything in one unbounded batch")
	cmd.Flags().Int("chunk-size", engine.DefaultChunkSize, "Versions per delete call")
	cmd.Flags().Int("chunk-pause-ms", int(engine.DefaultChunkPause/time.Millisecond), "Pause between delete calls in milliseconds")
	cmd.Flags().Int("max-retries", engine.DefaultMaxAttempts, "Delete attempts per chunk before counting a failure")
	cmd.Flags().String("profile", "", "Apply a named preset from profiles.toml before flag overrides")
	cmd.Flags().String("site", "", "Site URL (overrides store.site-url)")
}

// assembleParams builds the run parameters with flag > profile > config
// precedence: config (environment > file > defaults) seeds the values,
// a named profile overrides its non-zero fields, and explicitly set
// flags win over everything. The applied profile comes back too, for
// the fields outside engine.Params; it is zero when no profile was
// requested.
func assembleParams(cmd *cobra.Command, stateDir string) (engine.Params, profile.Profile) {
	p := engine.Params{
		OlderThanDays:   config.GetInt(config.KeyTrimOlderThanDays),
		LibraryTitle:    config.GetString(config.KeyTrimLibrary),
		DeleteRequested: config.GetBool(config.KeyTrimDelete),
		BatchPercent:    config.GetInt(config.KeyBatchPercent),
		MaxBatchMinutes: config.GetInt(config.KeyBatchMaxMinutes),
		AutoContinue:    config.GetBool(config.KeyBatchAutoContinue),
		BypassBatching:  config.GetBool(config.KeyBatchBypass),
		ChunkSize:       config.GetInt(config.KeyDeleteChunkSize),
		ChunkPause:      time.Duration(config.GetInt(config.KeyDeleteChunkPauseMs)) * time.Millisecond,
		MaxAttempts:     config.GetInt(config.KeyDeleteMaxRetries),
	}

	var prof profile.Profile
	if cmd.Flags().Changed("profile") {
		name, _ := cmd.Flags().GetString("profile")
		var err error
		prof, err = profile.Get(stateDir, name)
		if err != nil {
			FatalError("%v", err)
		}
		p = prof.Apply(p)
	}

	f := cmd.Flags()
	if f.Changed("older-than") {
		p.OlderThanDays, _ = f.GetInt("older-than")
	}
	if f.Changed("library") {
		p.LibraryTitle, _ = f.GetString("library")
	}
	if f.Changed("delete") {
		p.DeleteRequested, _ = f.GetBool("delete")
	}
	if f.Changed("batch-percent") {
		p.BatchPercent, _ = f.GetInt("batch-percent")
	}
	if f.Changed("max-batch-minutes") {
		p.MaxBatchMinutes, _ = f.GetInt("max-batch-minutes")
	}
	if f.Changed("auto-continue") {
		p.AutoContinue, _ = f.GetBool("auto-continue")
	}
	if f.Changed("no-batching") {
		p.BypassBatching, _ = f.GetBool("no-batching")
	}
	if f.Changed("chunk-size") {
		p.ChunkSize, _ = f.GetInt("chunk-size")
	}
	if f.Changed("chunk-pause-ms") {
		ms, _ := f.GetInt("chunk-pause-ms")
		p.ChunkPause = time.Duration(ms) * time.Millisecond
	}
	if f.Changed("max-retries") {
		p.MaxAttempts, _ = f.GetInt("max-retries")
	}
	return p, prof
}

// chooseConfirmer picks the confirmation channel: --confirm for
// unattended callers, an interactive form on TTYs, plain stdin reads
// when piped.
func chooseConfirmer(cmd *cobra.Command) prompt.Confirmer {
	if cmd.Flags().Changed("confirm") {
		phrase, _ := cmd.Flags().GetString("confirm")
		return prompt.PreApproved{Phrase: phrase}
	}
	if ui.IsTerminal() {
		return formConfirmer{}
	}
	return &prompt.Stdin{In: os.Stdin, Out: os.Stdout}
}

func runTrim(cmd *cobra.Command) {
	stateDir := resolveStateDir()
	params, prof := assembleParams(cmd, stateDir)

	local := config.LoadLocal(".")
	if params.LibraryTitle == "" && local.Library != "" {
		params.LibraryTitle = local.Library
	}
	listPath := stringSetting(cmd, "library-list", config.KeyTrimLibraryList)
	if listPath == "" {
		listPath = prof.LibraryList
	}
	if listPath == "" {
		listPath = local.LibraryList
	}
	if listPath != "" {
		names, err := namelist.Read(listPath)
		if err != nil {
			FatalError("%v", err)
		}
		params.LibraryFilter = names
	}

	client := buildStore(cmd, time.Duration(params.MaxBatchMinutes)*time.Minute)

	lock, err := lockfile.Acquire(stateDir)
	if err != nil {
		if errors.Is(err, lockfile.ErrLocked) {
			msg := err.Error()
			if info, ierr := lockfile.ReadInfo(stateDir); ierr == nil {
				msg = fmt.Sprintf("another shear run is already active (pid %d, started %s)",
					info.PID, info.StartedAt.Format(time.RFC3339))
			}
			FatalErrorWithHint(msg, "wait for it to finish, or remove "+
				filepath.Join(stateDir, lockfile.FileName)+" if that run crashed")
		}
		FatalError("%v", err)
	}
	defer func() { _ = lock.Release() }()

	events := eventlog.New(eventlog.Options{
		Path:    sinkPath(config.KeyLogsEventLog, stateDir, "events.log"),
		Verbose: verboseFlag,
		Quiet:   quietFlag,
	})

	eng := engine.Engine{
		Store:     client,
		Events:    events,
		Prompt:    chooseConfirmer(cmd),
		Progress:  os.Stdout,
		StatePath: runstate.Path(stateDir),
	}
	if path := sinkPath(config.KeyLogsActionLog, stateDir, "actions.csv"); path != "" {
		actions, err := sink.OpenActionLog(path)
		if err != nil {
			FatalError("%v", err)
		}
		defer func() { _ = actions.Close() }()
		eng.Actions = actions
	}
	if path := sinkPath(config.KeyLogsSizeLog, stateDir, "sizes.csv"); path != "" {
		sizes, err := sink.OpenSizeLog(path)
		if err != nil {
			FatalError("%v", err)
		}
		defer func() { _ = sizes.Close() }()
		eng.Sizes = sizes
	}

	sum, err := eng.Run(getRootContext(), params)
	if err != nil && sum == nil {
		reportRunAbort(err)
	}
	if err != nil {
		// The run itself completed; only the state write failed.
		WarnError("%v", err)
	}
	printSummary(sum)
}

// reportRunAbort maps the engine's aborting errors to operator-facing
// messages and exits. None of these branches mutated anything.
func reportRunAbort(err error) {
	switch {
	case errors.Is(err, engine.ErrDeclined):
		FatalErrorWithHint(err.Error(),
			"type "+engine.ConfirmPhrase+" exactly when prompted, or pass --confirm "+engine.ConfirmPhrase+" for unattended runs")
	case errors.Is(err, engine.ErrLibraryNotFound):
		FatalErrorWithHint(err.Error(), "run 'shear libraries' to list the document libraries on the site")
	case errors.Is(err, engine.ErrNoTargets):
		FatalErrorWithHint(err.Error(), "check the titles in the name-list file against 'shear libraries'")
	case errors.Is(err, engine.ErrNoItems):
		FatalError("%v", err)
	case errors.Is(err, engine.ErrCooldown):
		FatalError("%v", err)
	default:
		FatalError("%v", err)
	}
}
