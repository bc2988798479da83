package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leadmate/leadmate/pkg/api"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and print the session token",
	Long: `Log in against the backend and print the bearer token.
The token is not written to disk; export it for subsequent commands:

  export LEADMATE_TOKEN=$(leadmate login you@example.com --password ...)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}

		password := loginPassword
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}

		user, err := services.Client.Login(cmd.Context(), args[0], password)
		if err != nil {
			return fmt.Errorf("login failed: %s", api.UserMessage(err))
		}

		fmt.Fprintf(os.Stderr, "Logged in as %s (%s)\n", user.Name, user.Role)
		fmt.Println(services.Session.Token())
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user behind the current token",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		user := services.Session.User()
		fmt.Printf("%s <%s>\n", user.Name, user.Email)
		fmt.Printf("  role:    %s\n", user.Role)
		fmt.Printf("  company: %s\n", user.CompanyID)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")
	RootCmd.AddCommand(loginCmd)
	RootCmd.AddCommand(whoamiCmd)
}
