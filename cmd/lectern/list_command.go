package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lectern/internal/vectorstore"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all stored passages with their metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(store *vectorstore.Store) error {
				listing, err := store.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), map[string]any{
						"count":     listing.Count,
						"ids":       listing.IDs,
						"documents": listing.Documents,
						"metadatas": listing.Metadatas,
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total chunks: %d\n", listing.Count)
				if listing.Count == 0 {
					return nil
				}
				rows := make([][]string, 0, listing.Count)
				for i, id := range listing.IDs {
					meta := listing.Metadatas[i]
					filename := meta.Lookup("filename")
					position := "full doc"
					index, haveIndex := meta.Get("chunk_index")
					total, haveTotal := meta.Get("total_chunks")
					if haveIndex && haveTotal {
						position = fmt.Sprintf("%d of %d", index.IntValue()+1, total.IntValue())
					}
					rows = append(rows, []string{
						id,
						filename,
						position,
						truncate(listing.Documents[i], 60),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"ID", "FILE", "CHUNK", "PASSAGE"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output raw JSON")

	return cmd
}
