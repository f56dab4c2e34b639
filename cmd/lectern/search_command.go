package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lectern/internal/vectorstore"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		nResults   int
		videoID    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <question>",
		Short: "Show the stored passages most relevant to a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(store *vectorstore.Store) error {
				var where vectorstore.Where
				if videoID != "" {
					where = vectorstore.Where{"video_id": videoID}
				}
				result, err := store.Query(cmd.Context(), args[0], nResults, where)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), searchPayload(result))
				}

				out := cmd.OutOrStdout()
				if len(result.Documents) == 0 {
					fmt.Fprintln(out, "No passages found.")
					return nil
				}
				rows := make([][]string, 0, len(result.IDs))
				for i, id := range result.IDs {
					filename := result.Metadatas[i].Lookup("filename")
					rows = append(rows, []string{
						id,
						filename,
						fmt.Sprintf("%.4f", result.Distances[i]),
						truncate(result.Documents[i], 80),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"ID", "FILE", "DISTANCE", "PASSAGE"}, rows, 3))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&nResults, "n-results", vectorstore.DefaultNResults, "Number of passages to return")
	cmd.Flags().StringVar(&videoID, "video-id", "", "Restrict the search to one video's material")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output raw JSON")

	return cmd
}

// searchPayload mirrors the HTTP API field names for scripting.
func searchPayload(result vectorstore.QueryResult) map[string]any {
	return map[string]any{
		"ids":       result.IDs,
		"documents": result.Documents,
		"metadatas": result.Metadatas,
		"distances": result.Distances,
	}
}
