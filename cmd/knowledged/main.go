package main

import (
	"fmt"
	"os"

	"github.com/botweaver/knowledge/internal/cli"
	"github.com/botweaver/knowledge/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "knowledged",
		Short: "Knowledge pipeline daemon and CLI",
		Long:  "Knowledge daemon for running the RAG pipeline API server, processing documents, and querying context",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ProcessCmd())
	rootCmd.AddCommand(admin.QueryCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
