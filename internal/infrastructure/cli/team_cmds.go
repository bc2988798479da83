package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leadmate/leadmate/pkg/api"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage team members",
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List team members",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		if err := services.Team.Refresh(cmd.Context(), projectFlag); err != nil {
			return fmt.Errorf("load team: %s", api.UserMessage(err))
		}

		members := services.Views.Members()
		fmt.Printf("Team (%d)\n", len(members))
		for _, m := range members {
			fmt.Printf("  %-24s %-20s %s\n", m.ID, m.Name, strings.Join(m.TechStack, ", "))
		}
		if len(members) == 0 {
			fmt.Println("  (none)")
		}
		return nil
	},
}

var teamAddResumeCmd = &cobra.Command{
	Use:   "add-resume <file>",
	Short: "Create a member by parsing a resume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		contentType := mime.TypeByExtension(filepath.Ext(args[0]))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		member, err := services.Team.AddFromResume(cmd.Context(), projectFlag, api.Upload{
			Filename:    filepath.Base(args[0]),
			ContentType: contentType,
			Reader:      f,
		})
		if err != nil {
			return fmt.Errorf("add member: %s", api.UserMessage(err))
		}
		fmt.Printf("Added %s (%s)\n", member.Name, member.ID)
		return nil
	},
}

func init() {
	teamCmd.AddCommand(teamListCmd)
	teamCmd.AddCommand(teamAddResumeCmd)
	RootCmd.AddCommand(teamCmd)
}
