// Package sources implements the command-line interface for inspecting the
// configured event sources.
package sources

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/SVatsa12/teamforge/cmd/common"
)

// Command creates the sources command and its subcommands.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage event sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newListCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured event sources",
		RunE:  runList,
	}
}

func runList(_ *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}
	defer deps.Logger.Sync()

	srcs, err := common.LoadSources(deps)
	if err != nil {
		return err
	}

	if len(srcs) == 0 {
		deps.Logger.Info("No sources configured")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Type", "URL", "Parser"})

	for _, src := range srcs {
		t.AppendRow(table.Row{src.ID, src.Name, src.Type, src.URL, src.Parser})
	}

	t.Render()
	return nil
}
