package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/shearops/shear/internal/engine"
	"github.com/shearops/shear/internal/ui"
)

func printSummary(sum *engine.Summary) {
	if jsonOutput {
		outputJSON(sum)
		return
	}
	fmt.Print(ui.RenderMarkdown(summaryMarkdown(sum)))
}

// summaryMarkdown renders the run report. glamour turns it into a
// styled block on TTYs; piped output gets the raw markdown, which reads
// fine as plain text.
func summaryMarkdown(s *engine.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Version trim report: %s\n\n", modeLabel(s.Mode))
	fmt.Fprintf(&b, "Run `%s` finished in %s. Libraries: %s.\n\n",
		s.RunID, s.Elapsed().Round(time.Second), strings.Join(s.Libraries, ", "))

	fmt.Fprintf(&b, "## Versions\n\n")
	fmt.Fprintf(&b, "- Files scanned: **%d** (%d with deletable versions, %d skipped)\n",
		s.FilesScanned, s.FilesEligible, s.ItemsSkipped)
	fmt.Fprintf(&b, "- Versions eligible: **%d**\n", s.VersionsEligible)
	if s.Mode == engine.ModeDelete {
		fmt.Fprintf(&b, "- Versions deleted: **%d**\n", s.VersionsDeleted)
		if s.PolicyBlocked > 0 {
			fmt.Fprintf(&b, "- Blocked by retention, hold, or record: **%d**\n", s.PolicyBlocked)
		}
		if s.DeletesFailed > 0 {
			fmt.Fprintf(&b, "- Failed deletes: **%d** (see the action log)\n", s.DeletesFailed)
		}
	} else {
		fmt.Fprintf(&b, "- Nothing was deleted; rerun with --delete to remove the planned versions\n")
	}
	if s.EarlyQuit {
		fmt.Fprintf(&b, "- Stopped early after batch %d; the remainder was left untouched\n", s.Batches)
	} else {
		fmt.Fprintf(&b, "- Batches: %d\n", s.Batches)
	}

	fmt.Fprintf(&b, "\n## Storage\n\n")
	fmt.Fprintf(&b, "- Before: %s\n", formatBytes(s.BytesBefore))
	fmt.Fprintf(&b, "- After: %s\n", formatBytes(s.BytesAfter))
	fmt.Fprintf(&b, "- Reclaimed: **%s**\n", formatBytes(s.BytesReclaimed))

	return b.String()
}

func modeLabel(m engine.Mode) string {
	if m == engine.ModeDelete {
		return "Delete"
	}
	return "Dry run"
}

// formatBytes renders a byte count for the report. Reclaimed space can
// be negative when writers added data mid-run.
func formatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}
