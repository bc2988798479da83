package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadmate/leadmate/pkg/api"
	"github.com/leadmate/leadmate/pkg/domain/project"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects grouped by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		if err := services.Projects.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("load projects: %s", api.UserMessage(err))
		}

		buckets := services.Views.ProjectsByStatus()
		printBucket := func(label string, projects []project.Project) {
			fmt.Printf("%s (%d)\n", label, len(projects))
			for _, p := range projects {
				deadline := "-"
				if p.Deadline != nil {
					deadline = p.Deadline.Format("2006-01-02")
				}
				fmt.Printf("  %-24s %3d%%  due %-12s %s\n", p.ID, p.Progress, deadline, p.Title)
			}
			if len(projects) == 0 {
				fmt.Println("  (none)")
			}
		}
		printBucket("Active", buckets.Active)
		printBucket("Completed", buckets.Completed)
		printBucket("Other", buckets.Other)
		return nil
	},
}

var (
	projectCreateDesc     string
	projectCreateDeadline string
)

var projectCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}

		p := project.Project{
			Title:       args[0],
			Description: projectCreateDesc,
			Status:      project.StatusPlanning,
		}
		if projectCreateDeadline != "" {
			d, err := time.Parse("2006-01-02", projectCreateDeadline)
			if err != nil {
				return fmt.Errorf("invalid deadline %q: %w", projectCreateDeadline, err)
			}
			p.Deadline = &d
		}

		id, err := services.Projects.Create(cmd.Context(), p)
		if err != nil {
			return fmt.Errorf("create project: %s", api.UserMessage(err))
		}
		fmt.Printf("Created project %s\n", id)
		return nil
	},
}

var projectStatusCmd = &cobra.Command{
	Use:   "status <project-id> <status>",
	Short: "Set a project's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		if err := services.Projects.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("load projects: %s", api.UserMessage(err))
		}
		if err := services.Projects.SetStatus(cmd.Context(), args[0], project.Status(args[1])); err != nil {
			return fmt.Errorf("set status: %s", api.UserMessage(err))
		}
		fmt.Printf("Project %s is now %s\n", args[0], args[1])
		return nil
	},
}

var projectProgressCmd = &cobra.Command{
	Use:   "progress <project-id> <percent>",
	Short: "Set a project's progress (0-100)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		percent, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid percent %q: %w", args[1], err)
		}
		if err := services.Projects.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("load projects: %s", api.UserMessage(err))
		}
		if err := services.Projects.SetProgress(cmd.Context(), args[0], percent); err != nil {
			return fmt.Errorf("set progress: %s", api.UserMessage(err))
		}
		fmt.Printf("Project %s progress set to %d%%\n", args[0], project.ClampProgress(percent))
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		if err := services.Projects.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("load projects: %s", api.UserMessage(err))
		}
		if err := services.Projects.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete project: %s", api.UserMessage(err))
		}
		fmt.Printf("Deleted project %s\n", args[0])
		return nil
	},
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectCreateDesc, "description", "", "Project description")
	projectCreateCmd.Flags().StringVar(&projectCreateDeadline, "deadline", "", "Deadline (YYYY-MM-DD)")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectStatusCmd)
	projectCmd.AddCommand(projectProgressCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	RootCmd.AddCommand(projectCmd)
}
