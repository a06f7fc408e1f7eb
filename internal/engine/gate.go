package engine

import (
	"fmt"
	"time"
)

// Mode is the effective run mode after the safety gate has spoken.
type Mode string

const (
	ModeDryRun Mode = "DryRun"
	ModeDelete Mode = "Delete"
)

// ConfirmPhrase must be typed exactly, case-sensitive, before a delete
// run proceeds.
const ConfirmPhrase = "DELETE"

// PolicyCooldown is how long after a retention policy change all runs
// stay blocked, so a policy edit settles before version sweeps resume.
const PolicyCooldown = 30 * time.Minute

// Decision is the safety gate's verdict for one run.
type Decision struct {
	Mode              Mode
	Blocked           bool
	Reason            string
	CooldownRemaining time.Duration
}

// Decide applies the safety rules to one run request. It is a pure
// function: the caller loads the prior-run marker and the last policy
// change time and passes them in along with the clock reading.
//
// Rules, in order:
//  1. A policy change inside PolicyCooldown blocks the run outright,
//     whatever mode was requested.
//  2. Without a prior completed run the mode is forced to dry run;
//     nothing overrides this.
//  3. Otherwise the requested mode stands. Delete mode still requires
//     the typed confirmation phrase, collected by the caller.
func Decide(hasPriorRun, deleteRequested bool, lastPolicyChange *time.Time, now time.Time) Decision {
	if lastPolicyChange != nil {
		elapsed := now.Sub(*lastPolicyChange)
		if elapsed < PolicyCooldown {
			mins := int(elapsed.Minutes())
			if mins < 0 {
				mins = 0
			}
			return Decision{
				Blocked:           true,
				CooldownRemaining: PolicyCooldown - elapsed,
				Reason: fmt.Sprintf("retention policy changed %d minute(s) ago; runs are blocked for %d minutes after a policy change",
					mins, int(PolicyCooldown.Minutes())),
			}
		}
	}
	if !hasPriorRun {
		return Decision{
			Mode:   ModeDryRun,
			Reason: "first run always executes as a dry run; review the plan, then rerun with --delete",
		}
	}
	if deleteRequested {
		return Decision{Mode: ModeDelete}
	}
	return Decision{Mode: ModeDryRun}
}
