package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shearops/shear/internal/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List run profiles",
	Long: `Lists the built-in and user-defined run profiles. User profiles live
in profiles.toml inside the state directory and shadow built-ins of the
same name; 'shear run --profile <name>' applies one.`,
	Run: func(cmd *cobra.Command, args []string) {
		runProfiles()
	},
}

var profilesSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Create or update a run profile",
	Example: `  shear profiles save quarterly --older-than 120 --batch-percent 50
  shear profiles save overnight --batch-percent 100 --max-batch-minutes 45 --auto-continue`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runProfilesSave(cmd, args[0])
	},
}

func init() {
	profilesSaveCmd.Flags().String("description", "", "One-line description shown by 'shear profiles'")
	profilesSaveCmd.Flags().Int("older-than", 0, "Version age cutoff in days")
	profilesSaveCmd.Flags().String("library", "", "Single library to trim")
	profilesSaveCmd.Flags().String("library-list", "", "Path to a library name-list file")
	profilesSaveCmd.Flags().Bool("delete", false, "Run in delete mode")
	profilesSaveCmd.Flags().Int("batch-percent", 0, "Batch size as a percent of total items")
	profilesSaveCmd.Flags().Int("max-batch-minutes", 0, "Wall-clock bound per batch")
	profilesSaveCmd.Flags().Bool("auto-continue", false, "Proceed between batches without prompting")
	profilesSaveCmd.Flags().Bool("no-batching", false, "Process everything as one unbounded batch")
	profilesSaveCmd.Flags().Int("chunk-size", 0, "Versions deleted per store call")
	profilesSaveCmd.Flags().Int("chunk-pause-ms", 0, "Pause between delete chunks in milliseconds")
	profilesSaveCmd.Flags().Int("max-retries", 0, "Delete attempts per chunk")
	profilesCmd.AddCommand(profilesSaveCmd)
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles() {
	all, err := profile.All(resolveStateDir())
	if err != nil {
		FatalError("%v", err)
	}
	if jsonOutput {
		outputJSON(all)
		return
	}
	for _, name := range profile.Names(all) {
		fmt.Printf("%-12s %s\n", name, all[name].Description)
	}
}

func runProfilesSave(cmd *cobra.Command, name string) {
	p := profile.Profile{}
	p.Description, _ = cmd.Flags().GetString("description")
	p.OlderThanDays, _ = cmd.Flags().GetInt("older-than")
	p.Library, _ = cmd.Flags().GetString("library")
	p.LibraryList, _ = cmd.Flags().GetString("library-list")
	p.Delete, _ = cmd.Flags().GetBool("delete")
	p.BatchPercent, _ = cmd.Flags().GetInt("batch-percent")
	p.MaxBatchMinutes, _ = cmd.Flags().GetInt("max-batch-minutes")
	p.AutoContinue, _ = cmd.Flags().GetBool("auto-continue")
	p.NoBatching, _ = cmd.Flags().GetBool("no-batching")
	p.ChunkSize, _ = cmd.Flags().GetInt("chunk-size")
	p.ChunkPauseMs, _ = cmd.Flags().GetInt("chunk-pause-ms")
	p.MaxRetries, _ = cmd.Flags().GetInt("max-retries")

	if err := profile.Save(resolveStateDir(), name, p); err != nil {
		FatalError("%v", err)
	}
	fmt.Printf("Saved profile %q. Apply it with 'shear run --profile %s'.\n", name, name)
}
