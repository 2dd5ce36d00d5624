package main

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"namefmt/pkg/renamer"
	"namefmt/pkg/usecase"
)

const (
	renameArrow = "-->"
	dryRunArrow = "~~>"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Italic(true)
)

func printDryRunBanner() {
	if !dryRun {
		return
	}

	fmt.Println(bannerStyle.Render("DRY-RUN"))
	fmt.Println()
}

func formatRename(oldName, newName string) string {
	arrow := renameArrow
	if dryRun {
		arrow = dryRunArrow
	}

	return fmt.Sprintf("%-50s %s %s", oldName, arrow, newName)
}

// printRenames prints one line per committed operation, in commit order.
func printRenames(operations []*renamer.Target) {
	for _, op := range operations {
		if op.State != renamer.StateCommitted {
			continue
		}
		fmt.Println(formatRename(op.OriginalName(), op.NewName()))
	}
}

func printNothingToDo() {
	fmt.Println(noticeStyle.Render("Not items found that need formatting."))
}

func printSummary(execution usecase.RunExecution) {
	var buffer bytes.Buffer

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"Kind", "Total", "Renamed", "Skipped", "Errors"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	table.Append(summaryRow("Directories", execution.Directories))
	table.Append(summaryRow("Files", execution.Files))

	total := execution.Result()
	table.SetFooter(summaryRow("Total", total))

	table.Render()
	fmt.Printf("\n%s", buffer.String())

	for _, op := range total.Operations {
		if op.State == renamer.StateSkipped && op.SkipReason != "name unchanged" {
			fmt.Printf("SKIP: %s (%s)\n", op.OriginalPath, op.SkipReason)
		}
	}
	if execution.Verified {
		fmt.Println(noticeStyle.Render("Content verified: tree digests match."))
	}
}

func summaryRow(kind string, result renamer.Result) []string {
	return []string{
		kind,
		strconv.Itoa(result.TotalCount),
		strconv.Itoa(result.RenamedCount),
		strconv.Itoa(result.SkippedCount),
		strconv.Itoa(result.ErrorCount),
	}
}
