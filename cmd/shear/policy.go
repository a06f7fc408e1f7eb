package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/shearops/shear/internal/engine"
	"github.com/shearops/shear/internal/runstate"
	"github.com/shearops/shear/internal/store"
	"github.com/shearops/shear/internal/ui"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Show or change the tenant version expiration policy",
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the tenant policy",
	Run: func(cmd *cobra.Command, args []string) {
		runPolicyShow(cmd)
	},
}

var policySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the tenant policy",
	Long: `Updates the tenant version expiration policy. With no policy flags an
interactive form edits the current values.

Changing the policy starts the run cooldown: all trimming runs stay
blocked for 30 minutes so the change settles before sweeps resume.`,
	Run: func(cmd *cobra.Command, args []string) {
		runPolicySet(cmd)
	},
}

func init() {
	policyShowCmd.Flags().String("site", "", "Site URL (overrides store.site-url)")
	policySetCmd.Flags().String("site", "", "Site URL (overrides store.site-url)")
	policySetCmd.Flags().Bool("auto-expiration", false, "Enable automatic version expiration")
	policySetCmd.Flags().Int("major-version-limit", 0, "Major versions kept per file")
	policySetCmd.Flags().Int("expire-after-days", 0, "Days before versions expire")
	policyCmd.AddCommand(policyShowCmd, policySetCmd)
	rootCmd.AddCommand(policyCmd)
}

func runPolicyShow(cmd *cobra.Command) {
	client := buildStore(cmd, 0)
	policy, err := client.Policy(getRootContext())
	if err != nil {
		FatalError("reading tenant policy: %v", err)
	}
	if jsonOutput {
		outputJSON(policy)
		return
	}
	fmt.Printf("Auto-expiration:     %v\n", policy.AutoExpiration)
	fmt.Printf("Major version limit: %d\n", policy.MajorVersionLimit)
	fmt.Printf("Expire after days:   %d\n", policy.ExpireAfterDays)
}

func runPolicySet(cmd *cobra.Command) {
	client := buildStore(cmd, 0)
	ctx := getRootContext()

	current, err := client.Policy(ctx)
	if err != nil {
		FatalError("reading tenant policy: %v", err)
	}

	next := current
	f := cmd.Flags()
	touched := false
	if f.Changed("auto-expiration") {
		next.AutoExpiration, _ = f.GetBool("auto-expiration")
		touched = true
	}
	if f.Changed("major-version-limit") {
		next.MajorVersionLimit, _ = f.GetInt("major-version-limit")
		touched = true
	}
	if f.Changed("expire-after-days") {
		next.ExpireAfterDays, _ = f.GetInt("expire-after-days")
		touched = true
	}

	if !touched {
		if !ui.IsTerminal() {
			FatalErrorWithHint("no policy changes given",
				"pass --auto-expiration, --major-version-limit, or --expire-after-days")
		}
		next, err = policyForm(current)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("Aborted; policy unchanged.")
				return
			}
			FatalError("%v", err)
		}
	}

	if next == current {
		fmt.Println("Policy unchanged.")
		return
	}

	if err := client.UpdatePolicy(ctx, next); err != nil {
		FatalError("updating tenant policy: %v", err)
	}

	// The cooldown gate reads this timestamp: every run is blocked for
	// PolicyCooldown after a policy change.
	stateDir := resolveStateDir()
	statePath := runstate.Path(stateDir)
	st, err := runstate.Load(statePath)
	if err != nil {
		WarnError("%v", err)
		st = runstate.State{}
	}
	now := time.Now().UTC()
	st.LastPolicyChangeUtc = &now
	if err := runstate.Save(statePath, st); err != nil {
		WarnError("recording policy change time: %v", err)
	}

	fmt.Printf("Policy updated. Runs are blocked for the next %d minutes.\n",
		int(engine.PolicyCooldown.Minutes()))
}

// policyForm edits the policy interactively, seeded with the current
// values.
func policyForm(current store.TenantPolicy) (store.TenantPolicy, error) {
	next := current
	limit := strconv.Itoa(current.MajorVersionLimit)
	days := strconv.Itoa(current.ExpireAfterDays)

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Automatic version expiration").
			Value(&next.AutoExpiration),
		huh.NewInput().
			Title("Major version limit").
			Description("Major versions kept per file").
			Value(&limit).
			Validate(validateCount),
		huh.NewInput().
			Title("Expire after days").
			Description("Days before versions expire").
			Value(&days).
			Validate(validateCount),
	))
	if err := form.Run(); err != nil {
		return current, err
	}
	next.MajorVersionLimit, _ = strconv.Atoi(strings.TrimSpace(limit))
	next.ExpireAfterDays, _ = strconv.Atoi(strings.TrimSpace(days))
	return next, nil
}

func validateCount(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a non-negative whole number")
	}
	return nil
}
