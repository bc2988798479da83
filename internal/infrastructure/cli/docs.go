package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leadmate/leadmate/pkg/api"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage project documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents for a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		if err := services.Documents.Refresh(cmd.Context(), projectFlag); err != nil {
			return fmt.Errorf("load documents: %s", api.UserMessage(err))
		}

		docs := services.Views.Documents()
		fmt.Printf("Documents (%d)\n", len(docs))
		for _, d := range docs {
			analyzed := " "
			if d.HasContent() {
				analyzed = "*"
			}
			fmt.Printf("  %s %-24s %s\n", analyzed, d.ID, d.Filename)
		}
		if len(docs) == 0 {
			fmt.Println("  (none)")
		}
		return nil
	},
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload one or more documents to a project",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}

		uploads := make([]api.Upload, 0, len(args))
		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()
			contentType := mime.TypeByExtension(filepath.Ext(path))
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			uploads = append(uploads, api.Upload{
				Filename:    filepath.Base(path),
				ContentType: contentType,
				Reader:      f,
			})
		}

		docs, err := services.Documents.Upload(cmd.Context(), projectFlag, uploads)
		if err != nil {
			return fmt.Errorf("upload: %s", api.UserMessage(err))
		}
		fmt.Printf("Uploaded %d documents\n", len(docs))
		return nil
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		if err := services.Documents.Refresh(cmd.Context(), projectFlag); err != nil {
			return fmt.Errorf("load documents: %s", api.UserMessage(err))
		}
		if err := services.Documents.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete document: %s", api.UserMessage(err))
		}
		fmt.Printf("Deleted document %s\n", args[0])
		return nil
	},
}

var docsAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run content extraction over a project's documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		if err := services.Documents.Analyze(cmd.Context(), projectFlag); err != nil {
			return fmt.Errorf("analyze: %s", api.UserMessage(err))
		}
		fmt.Println("Analysis complete")
		return nil
	},
}

func init() {
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsUploadCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	docsCmd.AddCommand(docsAnalyzeCmd)
	RootCmd.AddCommand(docsCmd)
}
