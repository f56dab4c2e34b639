package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lectern/internal/download"
	"lectern/internal/pipeline"
	"lectern/internal/vectorstore"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var (
		meta       pipeline.UploadMetadata
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <path-or-url>",
		Short: "Transcribe and index a video, PDF, or DOCX (local file or URL)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			if !download.IsURL(target) {
				absPath, err := filepath.Abs(target)
				if err != nil {
					return fmt.Errorf("resolve path: %w", err)
				}
				info, err := os.Stat(absPath)
				if err != nil {
					if os.IsNotExist(err) {
						return fmt.Errorf("file does not exist: %s", absPath)
					}
					return fmt.Errorf("inspect file: %w", err)
				}
				if info.IsDir() {
					return fmt.Errorf("%s is a directory", absPath)
				}
				target = absPath
			}

			return ctx.withStore(cmd.Context(), func(store *vectorstore.Store) error {
				p, err := ctx.buildPipeline(store)
				if err != nil {
					return err
				}
				result := p.ProcessUpload(cmd.Context(), target, meta)
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), result)
				}
				if !result.Success {
					return fmt.Errorf("ingest failed: %s", result.Error)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Ingested %s as document %s\n", filepath.Base(target), result.DocID)
				if result.PDFPath != "" {
					fmt.Fprintf(out, "Transcript PDF: %s\n", result.PDFPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&meta.VideoID, "video-id", "", "Video identifier for scoped question answering")
	cmd.Flags().StringVar(&meta.UserID, "user-id", "", "Uploading user identifier")
	cmd.Flags().StringVar(&meta.Subject, "subject", "", "Subject name")
	cmd.Flags().StringVar(&meta.SubjectID, "subject-id", "", "Subject identifier")
	cmd.Flags().StringVar(&meta.Chapter, "chapter", "", "Chapter name")
	cmd.Flags().StringVar(&meta.ChapterID, "chapter-id", "", "Chapter identifier")
	cmd.Flags().StringVar(&meta.Part, "part", "", "Part label")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output raw JSON")

	return cmd
}
