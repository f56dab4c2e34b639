package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lectern/internal/answer"
	"lectern/internal/vectorstore"
)

func newAskCommand(ctx *commandContext) *cobra.Command {
	var (
		nContext   int
		videoID    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from stored course material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(store *vectorstore.Store) error {
				asm, err := ctx.buildAssembler(store)
				if err != nil {
					return err
				}
				result := asm.Ask(cmd.Context(), args[0], nContext, videoID)
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), result)
				}
				if !result.Success {
					return fmt.Errorf("answer generation failed: %s", result.Err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "=== Answer ===")
				fmt.Fprintln(out)
				fmt.Fprintln(out, result.Answer)
				if len(result.PassagesUsed) > 0 {
					fmt.Fprintln(out)
					fmt.Fprintln(out, "--- Sources used ---")
					for i, p := range result.PassagesUsed {
						if i == 3 {
							break
						}
						filename := p.Metadata.Lookup("filename")
						if filename == "" {
							filename = "?"
						}
						fmt.Fprintf(out, "  %d. %s\n", i+1, filename)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&nContext, "n-context", answer.DefaultContextSize, "Number of passages sent to the model")
	cmd.Flags().StringVar(&videoID, "video-id", "", "Restrict context to one video's material")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output raw JSON")

	return cmd
}
