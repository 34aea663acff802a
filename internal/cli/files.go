// Package cli provides file operation commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ASL66/mirad-upload/internal/api"
	"github.com/ASL66/mirad-upload/internal/constants"
	"github.com/ASL66/mirad-upload/internal/deletion"
	"github.com/ASL66/mirad-upload/internal/events"
	"github.com/ASL66/mirad-upload/internal/listing"
	"github.com/ASL66/mirad-upload/internal/progress"
	"github.com/ASL66/mirad-upload/internal/transfer"
	"github.com/ASL66/mirad-upload/internal/util/sizes"
)

// newUploadCmd creates the 'upload' command.
func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file> [file...]",
		Short: "Upload files to the server",
		Long: `Upload one or more files in a single batch.

Progress is reported as one aggregate bar across the whole batch. A
failed batch leaves your selection intact so you can retry.

Examples:
  # Upload a single file
  mirad upload report.pdf

  # Upload several files as one batch
  mirad upload notes.txt photo.jpg talk.mp4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()

			client, err := getAPIClient()
			if err != nil {
				return err
			}

			staged := make([]transfer.StagedFile, 0, len(args))
			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				staged = append(staged, transfer.StagedFile{
					Name:    filepath.Base(path),
					Size:    int64(len(content)),
					Content: content,
				})
			}

			bus := events.NewEventBus(constants.EventBusDefaultBuffer)
			defer bus.Close()

			store := listing.NewStore(client, bus, log)
			controller := transfer.NewController(client, store, bus, log,
				transfer.WithSettleDelay(0))
			controller.Select(staged)

			reporter := progress.NewCLIReporter()
			ch := bus.SubscribeAll()
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				watchUploadEvents(ch, reporter)
			}()

			fmt.Printf("Uploading %s\n", controller.Summary())
			err = controller.Submit(cmd.Context())
			bus.Close()
			wg.Wait()

			if err != nil {
				reporter.Error(err)
				return err
			}
			fmt.Printf("Uploaded %d file(s)\n", len(staged))
			return nil
		},
	}

	return cmd
}

// watchUploadEvents drives a progress reporter from the upload lifecycle
// events until the bus closes.
func watchUploadEvents(ch <-chan events.Event, reporter progress.Reporter) {
	started := false
	for ev := range ch {
		switch e := ev.(type) {
		case *events.UploadEvent:
			switch e.Type() {
			case events.EventUploadStarted:
				reporter.Start(e.TotalBytes, fmt.Sprintf("%d file(s)", e.FileCount))
				started = true
			case events.EventUploadProgress:
				if started {
					reporter.Update(e.BytesSent)
				}
			case events.EventUploadSucceeded:
				if started {
					reporter.Finish()
				}
			}
		}
	}
}

// newListCmd creates the 'list' command.
func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List files on the server",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()

			client, err := getAPIClient()
			if err != nil {
				return err
			}

			store := listing.NewStore(client, nil, log)
			if err := store.Refresh(cmd.Context()); err != nil {
				if api.IsSessionExpired(err) {
					return fmt.Errorf("session expired, run 'mirad login'")
				}
				return err
			}

			files := store.Files()
			if len(files) == 0 {
				fmt.Println("No files on the server.")
				return nil
			}

			fmt.Printf("%-50s %12s  %s\n", "NAME", "SIZE", "MODIFIED")
			for _, f := range files {
				fmt.Printf("%-50s %12s  %s\n", f.Name, sizes.Format(f.Size), f.DateStr)
			}
			fmt.Printf("\n%d file(s)\n", len(files))
			return nil
		},
	}

	return cmd
}

// newDownloadCmd creates the 'download' command.
func newDownloadCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "download <filename>",
		Short: "Download a file from the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getAPIClient()
			if err != nil {
				return err
			}

			result, err := client.Download(cmd.Context(), args[0])
			if err != nil {
				if api.IsSessionExpired(err) {
					return fmt.Errorf("session expired, run 'mirad login'")
				}
				return err
			}
			defer result.Body.Close()

			name := result.Filename
			if name == "" {
				name = args[0]
			}
			target := filepath.Join(outputDir, filepath.Base(name))

			out, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", target, err)
			}
			defer out.Close()

			reporter := progress.NewCLIReporter()
			reporter.Start(result.Size, filepath.Base(name))
			written, err := io.Copy(out, &countingReader{r: result.Body, reporter: reporter})
			reporter.Finish()
			if err != nil {
				return fmt.Errorf("download failed: %w", err)
			}

			fmt.Printf("Downloaded %s (%s)\n", target, sizes.Format(written))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "Directory to save the file into")
	return cmd
}

// countingReader feeds byte counts to a progress reporter as it reads.
type countingReader struct {
	r        io.Reader
	reporter progress.Reporter
	total    int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.total += int64(n)
		c.reporter.Update(c.total)
	}
	return n, err
}

// newDeleteCmd creates the 'delete' command.
func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <filename>",
		Aliases: []string{"rm"},
		Short:   "Delete a file on the server",
		Long: `Delete a single file by name.

Deletion asks for confirmation first; pass --yes to skip the prompt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()

			client, err := getAPIClient()
			if err != nil {
				return err
			}

			coordinator := deletion.NewCoordinator(client, nil, nil, log)
			coordinator.RequestDelete(args[0])

			if !yes && !confirm(fmt.Sprintf("Delete '%s'?", args[0])) {
				coordinator.Cancel()
				fmt.Println("Cancelled.")
				return nil
			}

			if err := coordinator.Confirm(cmd.Context()); err != nil {
				if api.IsSessionExpired(err) {
					return fmt.Errorf("session expired, run 'mirad login'")
				}
				return err
			}

			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
