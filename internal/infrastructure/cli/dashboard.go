package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadmate/leadmate/internal/infrastructure/watch"
	"github.com/leadmate/leadmate/pkg/api"
	"github.com/leadmate/leadmate/pkg/infrastructure/dashboard"
)

var dashboardAddr string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the web dashboard",
	Long: `Serve a read-only web dashboard over the local entity cache.
The page refreshes live as mutations apply and revert; edits to the
config file are picked up without a restart.`,
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

		addr := dashboardAddr
		if addr == "" {
			addr = services.Config.DashboardAddr
		}

		server, err := dashboard.NewServer(addr, services.Views)
		if err != nil {
			return fmt.Errorf("create dashboard: %w", err)
		}
		services.Engine.SetNotify(server.NotifyChange)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Reload cached data when the config file changes; a changed
		// base URL only applies on restart, but refreshed data keeps
		// the page honest in the meantime.
		cfgPath, err := resolveConfigPath()
		if err == nil {
			watcher, werr := watch.NewConfigWatcher(cfgPath, time.Second, func() {
				log.Printf("config changed, refreshing data")
				if err := services.Projects.Refresh(ctx); err != nil {
					log.Printf("refresh projects: %v", err)
				}
				if err := services.Tasks.Refresh(ctx, contextID); err != nil {
					log.Printf("refresh tasks: %v", err)
				}
			})
			if werr != nil {
				log.Printf("config watch disabled: %v", werr)
			} else {
				go watcher.Run(ctx)
			}
		}

		log.Printf("dashboard at http://%s", addr)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dashboard server: %w", err)
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardAddr, "addr", "", "Listen address (default from config)")
	RootCmd.AddCommand(dashboardCmd)
}
