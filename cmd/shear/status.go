package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shearops/shear/internal/config"
	"github.com/shearops/shear/internal/engine"
	"github.com/shearops/shear/internal/lockfile"
	"github.com/shearops/shear/internal/runstate"
	"github.com/shearops/shear/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show run state, cooldown, and lock status",
	Run: func(cmd *cobra.Command, args []string) {
		runStatus()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusReport struct {
	StateDir          string     `json:"state_dir"`
	ConfigFile        string     `json:"config_file,omitempty"`
	FirstRunPending   bool       `json:"first_run_pending"`
	LastRun           *time.Time `json:"last_run,omitempty"`
	LastPolicyChange  *time.Time `json:"last_policy_change,omitempty"`
	CooldownRemaining string     `json:"cooldown_remaining,omitempty"`
	ActiveRunPID      int        `json:"active_run_pid,omitempty"`
}

func runStatus() {
	stateDir := resolveStateDir()
	st, err := runstate.Load(runstate.Path(stateDir))
	if err != nil {
		FatalError("%v", err)
	}

	rep := statusReport{
		StateDir:         stateDir,
		ConfigFile:       config.ConfigFileUsed(),
		FirstRunPending:  !st.HasPriorRun(),
		LastRun:          st.LastDryRunUtc,
		LastPolicyChange: st.LastPolicyChangeUtc,
	}
	dec := engine.Decide(st.HasPriorRun(), false, st.LastPolicyChangeUtc, time.Now().UTC())
	if dec.Blocked {
		rep.CooldownRemaining = dec.CooldownRemaining.Round(time.Second).String()
	}

	// The lock file's content outlives released locks, so liveness is
	// probed by acquiring: success means no run is active.
	if l, lerr := lockfile.Acquire(stateDir); lerr == nil {
		_ = l.Release()
	} else if errors.Is(lerr, lockfile.ErrLocked) {
		if info, ierr := lockfile.ReadInfo(stateDir); ierr == nil {
			rep.ActiveRunPID = info.PID
		}
	}

	if jsonOutput {
		outputJSON(rep)
		return
	}

	fmt.Printf("State directory: %s\n", rep.StateDir)
	if rep.ConfigFile != "" {
		fmt.Printf("Config file:     %s\n", rep.ConfigFile)
	}
	if rep.FirstRunPending {
		fmt.Println(ui.RenderWarn("No completed runs yet; the next run executes as a dry run."))
	} else {
		fmt.Printf("Last run:        %s\n", rep.LastRun.Format(time.RFC3339))
	}
	if rep.LastPolicyChange != nil {
		fmt.Printf("Policy changed:  %s\n", rep.LastPolicyChange.Format(time.RFC3339))
	}
	if rep.CooldownRemaining != "" {
		fmt.Println(ui.RenderFail("Runs blocked: policy-change cooldown, " + rep.CooldownRemaining + " remaining"))
	}
	if rep.ActiveRunPID != 0 {
		fmt.Printf("Active run:      pid %d\n", rep.ActiveRunPID)
	}
}
