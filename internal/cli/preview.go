// Package cli provides the preview command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ASL66/mirad-upload/internal/filetype"
	"github.com/ASL66/mirad-upload/internal/preview"
)

// newPreviewCmd creates the 'preview' command.
func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <filename>",
		Short: "Preview a remote file inline",
		Long: `Preview a remote file without a full download.

Text files print a bounded prefix. Images, PDFs, audio and video print
the direct URL to open in a browser or player. Anything else falls back
to the download URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()

			client, err := getAPIClient()
			if err != nil {
				return err
			}

			engine := preview.NewEngine(client, nil, log)
			sess := engine.Open(cmd.Context(), args[0])
			defer engine.Close()

			view := sess.View
			switch view.Kind {
			case preview.ViewText:
				fmt.Print(view.Text)
				if view.Truncated {
					fmt.Println("\n[preview truncated]")
				}
			case preview.ViewImage:
				fmt.Printf("Image (%s): %s\n", view.MIME, view.URL)
			case preview.ViewMedia:
				fmt.Printf("%s (%s): %s\n", mediaLabel(sess.Category), view.MIME, view.URL)
			case preview.ViewPDF, preview.ViewDownloadOnly:
				fmt.Printf("No inline preview for %s files. Download URL:\n%s\n",
					sess.Category, view.URL)
			case preview.ViewDegraded:
				fmt.Printf("Preview unavailable (%v). Download URL:\n%s\n", view.Err, view.URL)
			}
			return nil
		},
	}

	return cmd
}

func mediaLabel(category filetype.Category) string {
	if category == filetype.CategoryAudio {
		return "Audio"
	}
	return "Video"
}
