package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all indexed chunks",
	Long: `Remove every chunk from the collection. The collection itself stays
usable and can be re-populated with ingest.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		fmt.Print("This deletes every indexed chunk. Continue? [y/N] ")
		var reply string
		fmt.Scanln(&reply)
		if reply != "y" && reply != "Y" && reply != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.Clear(cmd.Context()); err != nil {
		return err
	}

	fmt.Println("Index cleared.")
	return nil
}
