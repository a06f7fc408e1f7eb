package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shearops/shear/internal/namelist"
	"github.com/shearops/shear/internal/store"
	"github.com/shearops/shear/internal/ui"
)

var librariesCmd = &cobra.Command{
	Use:   "libraries",
	Short: "List the document libraries on the site",
	Long: `Lists the site's document libraries with their item counts, so run
targets can be checked before trimming. --export writes the listing as
a name-list CSV that 'shear run --library-list' accepts directly.`,
	Run: func(cmd *cobra.Command, args []string) {
		runLibraries(cmd)
	},
}

func init() {
	librariesCmd.Flags().Bool("hidden", false, "Include hidden libraries")
	librariesCmd.Flags().String("export", "", "Write the listing to a name-list CSV file")
	librariesCmd.Flags().String("site", "", "Site URL (overrides store.site-url)")
	librariesCmd.Flags().Bool("no-pager", false, "Disable pager output")
	rootCmd.AddCommand(librariesCmd)
}

func runLibraries(cmd *cobra.Command) {
	client := buildStore(cmd, 0)
	libs, err := client.Libraries(getRootContext())
	if err != nil {
		FatalError("%v", err)
	}

	if hidden, _ := cmd.Flags().GetBool("hidden"); !hidden {
		visible := libs[:0]
		for _, lib := range libs {
			if !lib.Hidden {
				visible = append(visible, lib)
			}
		}
		libs = visible
	}
	sort.Slice(libs, func(i, j int) bool { return libs[i].Title < libs[j].Title })

	if export, _ := cmd.Flags().GetString("export"); export != "" {
		if err := namelist.WriteFile(export, libs); err != nil {
			FatalError("%v", err)
		}
		fmt.Printf("Wrote %d libraries to %s\n", len(libs), export)
		return
	}

	if jsonOutput {
		outputJSON(libs)
		return
	}

	noPager, _ := cmd.Flags().GetBool("no-pager")
	listing := formatLibraries(libs)
	if err := ui.ToPager(listing, ui.PagerOptions{NoPager: noPager}); err != nil {
		if _, writeErr := fmt.Fprint(os.Stdout, listing); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", writeErr)
		}
	}
}

func formatLibraries(libs []store.Library) string {
	if len(libs) == 0 {
		return "No document libraries found.\n"
	}
	var buf bytes.Buffer
	for _, lib := range libs {
		marker := ""
		if lib.Hidden {
			marker = "  " + ui.RenderMuted("(hidden)")
		}
		fmt.Fprintf(&buf, "%-32s %7d items  %s%s\n", ui.Truncate(lib.Title, 32), lib.ItemCount, lib.ServerRelativeURL, marker)
	}
	return buf.String()
}
