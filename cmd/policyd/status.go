package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status",
	Long:  `Print the configured backends and the number of indexed chunks.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := a.store.Count(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Vector store:  %s\n", a.cfg.VectorStore.Provider)
	fmt.Printf("Embeddings:    %s (%s)\n", a.cfg.Embeddings.Provider, a.cfg.Embeddings.Model)
	fmt.Printf("LLM model:     %s\n", a.cfg.LLM.Model)
	fmt.Printf("Indexed chunks: %d\n", count)
	return nil
}
