package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/policyd/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest policy documents into the index",
	Long: `Extract text from the given PDF or DOCX files, split it into chunks,
and add the chunks to the vector store.

Files that cannot be read or have an unsupported extension are skipped
and reported; the rest of the batch still goes through.

Examples:
  policyd ingest handbook.pdf
  policyd ingest policies/*.docx handbook.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	svc := ingest.New(a.store, a.cfg.Chunking.Size, a.cfg.Chunking.Overlap, a.logger)
	summary, err := svc.IngestFiles(cmd.Context(), args)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d file(s), %d chunk(s).\n", summary.FilesProcessed, summary.ChunksAdded)
	for _, fe := range summary.Errors {
		fmt.Printf("Skipped %s: %v\n", fe.Path, fe.Err)
	}
	if len(summary.Errors) > 0 {
		return fmt.Errorf("%d file(s) could not be ingested", len(summary.Errors))
	}
	return nil
}
