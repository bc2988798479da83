package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leadmate/leadmate/pkg/api"
	"github.com/leadmate/leadmate/pkg/domain/task"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage board tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the kanban board columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		contextID := services.Session.ContextID(projectFlag)
		if err := services.Tasks.Refresh(cmd.Context(), contextID); err != nil {
			return fmt.Errorf("load tasks: %s", api.UserMessage(err))
		}

		columns, counts := services.Views.TaskColumns()
		printColumn := func(label string, n int, tasks []task.Task) {
			fmt.Printf("%s (%d)\n", label, n)
			for _, t := range tasks {
				fmt.Printf("  %-24s [%s] %s\n", t.ID, t.Priority, t.Title)
			}
			if len(tasks) == 0 {
				fmt.Println("  (none)")
			}
		}
		printColumn("To Do", counts.Todo, columns.Todo)
		printColumn("In Progress", counts.InProgress, columns.InProgress)
		printColumn("Completed", counts.Completed, columns.Completed)
		return nil
	},
}

var taskGenerateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate tasks from a prompt via the backend agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		contextID := services.Session.ContextID(projectFlag)
		tasks, err := services.Tasks.Generate(cmd.Context(), contextID, args[0])
		if err != nil {
			return fmt.Errorf("generate tasks: %s", api.UserMessage(err))
		}
		fmt.Printf("Generated %d tasks\n", len(tasks))
		for _, t := range tasks {
			fmt.Printf("  %-24s [%s] %s\n", t.ID, t.Priority, t.Title)
		}
		return nil
	},
}

var taskMoveCmd = &cobra.Command{
	Use:   "move <task-id> <status>",
	Short: "Move a task to another column (todo, inprogress, completed)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		contextID := services.Session.ContextID(projectFlag)
		if err := services.Tasks.Refresh(cmd.Context(), contextID); err != nil {
			return fmt.Errorf("load tasks: %s", api.UserMessage(err))
		}
		if err := services.Tasks.Move(cmd.Context(), args[0], task.Status(args[1])); err != nil {
			return fmt.Errorf("move task: %s", api.UserMessage(err))
		}
		fmt.Printf("Task %s moved to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskGenerateCmd)
	taskCmd.AddCommand(taskMoveCmd)
	RootCmd.AddCommand(taskCmd)
}
