// Package cmd command line
package cmd

import (
	"context"
	"time"

	errors "github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/UB-Mannheim/maidisco/cmd/tui"
)

// tuiSearchTimeout bounds translate, search and summarize together.
const tuiSearchTimeout = 3 * time.Minute

var tuiCMD = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI",
	Long: `Launch an interactive Terminal User Interface (TUI) for natural-language catalog search.

Type a request, optionally narrow it by language and publication years,
and browse the normalized records together with the AI summary.

Keyboard shortcuts:
  Tab         Next input field
  Enter       Search
  ↑/↓         Browse results
  Esc         New search
  q / Ctrl+C  Quit`,
	Args: gcmd.NoExtraArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, err := initialize(context.Background(), cmd)
		if err != nil {
			return err
		}
		return runTUI(svc)
	},
}

func init() {
	rootCMD.AddCommand(tuiCMD)
}

// runTUI starts the interactive Terminal User Interface and returns any start/run error.
func runTUI(searcher tui.Searcher) error {
	model := tui.NewModel(searcher, tuiSearchTimeout)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return errors.WithStack(err)
}
