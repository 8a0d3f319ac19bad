// Package main implements the policyd CLI for ingesting HR policy
// documents and asking grounded questions about them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// cfgFile is the optional path to a YAML config file.
	cfgFile string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "policyd",
	Short: "HR policy question answering over your own documents",
	Long: `policyd ingests HR policy documents (PDF and DOCX), indexes them in a
local vector store, and answers employee questions grounded in the
indexed passages, with citations back to the source documents.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (YAML)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the policyd version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("policyd", version)
	},
}
