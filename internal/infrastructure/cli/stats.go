package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadmate/leadmate/pkg/api"
	"github.com/leadmate/leadmate/pkg/application"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the dashboard summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		if err := services.Projects.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("load projects: %s", api.UserMessage(err))
		}
		contextID := services.Session.ContextID(projectFlag)
		if err := services.Tasks.Refresh(cmd.Context(), contextID); err != nil {
			return fmt.Errorf("load tasks: %s", api.UserMessage(err))
		}

		stats := services.Views.DashboardStats(time.Now())
		fmt.Printf("Projects:      %d (%d active, %d completed)\n",
			stats.TotalProjects, stats.ActiveProjects, stats.CompletedProjects)
		fmt.Printf("Due this week: %d\n", stats.DueThisWeek)
		fmt.Printf("Tasks:         %d/%d completed\n", stats.CompletedTasks, stats.TotalTasks)
		return nil
	},
}

var commitsSince string

var commitsCmd = &cobra.Command{
	Use:   "commits <owner/repo>",
	Short: "Show a per-day commit histogram for a GitHub repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}

		owner, repo, ok := strings.Cut(args[0], "/")
		if !ok || owner == "" || repo == "" {
			return fmt.Errorf("repository must be owner/repo, got %q", args[0])
		}

		since := time.Now().AddDate(0, -1, 0)
		if commitsSince != "" {
			since, err = time.Parse("2006-01-02", commitsSince)
			if err != nil {
				return fmt.Errorf("invalid --since %q: %w", commitsSince, err)
			}
		}

		analysis := application.NewAnalysisService(cmd.Context(), services.Config.GitHubToken)
		histogram, err := analysis.Histogram(cmd.Context(), owner, repo, since)
		if err != nil {
			return fmt.Errorf("fetch commits: %w", err)
		}

		if len(histogram) == 0 {
			fmt.Println("No commits in range")
			return nil
		}
		max := 0
		for _, d := range histogram {
			if d.Count > max {
				max = d.Count
			}
		}
		for _, d := range histogram {
			bar := strings.Repeat("#", d.Count*40/max)
			fmt.Printf("%s %3d %s\n", d.Day, d.Count, bar)
		}
		return nil
	},
}

func init() {
	commitsCmd.Flags().StringVar(&commitsSince, "since", "", "Start date (YYYY-MM-DD, default one month ago)")
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(commitsCmd)
}
