// Package allocate implements the one-shot allocation command.
package allocate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SVatsa12/teamforge/cmd/common"
	"github.com/SVatsa12/teamforge/internal/allocator"
)

// Command creates the allocate command.
func Command() *cobra.Command {
	var req allocator.Request

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Run a single allocation pass",
		Long: `Score and rank the candidate pool against a project's required
skills (or a skill list given directly) and print the result as JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAllocate(cmd, req)
		},
	}

	cmd.Flags().StringVar(&req.ProjectID, "project", "", "project id to resolve required skills from")
	cmd.Flags().StringSliceVar(&req.ProjectSkills, "skills", nil, "required skills (comma-separated)")
	cmd.Flags().IntVar(&req.TeamSize, "team-size", 0, "team size (default from config)")
	cmd.Flags().BoolVar(&req.Persist, "persist", false, "persist assignments for the chosen candidates")
	cmd.Flags().StringVar(&req.Reason, "reason", "", "free-text reason recorded on persisted assignments")

	return cmd
}

func runAllocate(cmd *cobra.Command, req allocator.Request) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}
	defer deps.Logger.Sync()

	service, cleanup, err := common.NewAllocatorService(cmd.Context(), deps)
	if err != nil {
		return fmt.Errorf("create allocator service: %w", err)
	}
	defer cleanup()

	result, err := service.Allocate(cmd.Context(), req)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(result)
}
