package cmd

import (
	"io"

	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"

	"github.com/rendinam/logparse/report"
)

// ReportMain is wrapped by NewReportCommand and only exported for testing
// purposes.
var ReportMain *report.Main

// NewReportCommand returns a new cobra command wrapping ReportMain.
func NewReportCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	ReportMain = report.NewMain()
	reportCommand := &cobra.Command{
		Use:   "report",
		Short: "summarize per-channel download activity from the dataset",
		Long: `Reads the persisted dataset (never the raw logs) and prints
per-channel download statistics: totals, rates, data transferred, and
on-site vs off-site vs infrastructure splits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ReportMain.SetOutput(stdout)
			return ReportMain.Run()
		},
	}
	flags := reportCommand.Flags()
	err = commandeer.Flags(flags, ReportMain)
	if err != nil {
		panic(err)
	}
	return reportCommand
}

func init() {
	subcommandFns["report"] = NewReportCommand
}
