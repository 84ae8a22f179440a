package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/recap/internal/config"
	"github.com/teemow/recap/internal/tools/batch"
)

func newBackfillCmd() *cobra.Command {
	var (
		userID string
		from   string
		to     string
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Process all recordings in a date range",
		Long: `List a user's Zoom cloud recordings within a date range and run the
full pipeline for each one sequentially.

Recordings without a transcript are reported as failures but do not stop
the run; the final summary lists the outcome per meeting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fromTime, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fmt.Errorf("invalid --from date %q: expected YYYY-MM-DD", from)
			}
			toTime := time.Now()
			if to != "" {
				toTime, err = time.Parse("2006-01-02", to)
				if err != nil {
					return fmt.Errorf("invalid --to date %q: expected YYYY-MM-DD", to)
				}
			}

			return runBackfill(cfg, userID, fromTime, toTime)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Zoom user ID or email whose recordings to process")
	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD, default: today)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func runBackfill(cfg *config.Config, userID string, from, to time.Time) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := buildApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.shutdown()
	}()

	recordings, err := a.zoom.ListRecordings(ctx, userID, from, to)
	if err != nil {
		return fmt.Errorf("failed to list recordings: %w", err)
	}
	if len(recordings) == 0 {
		fmt.Printf("No recordings found for %s between %s and %s\n",
			userID, from.Format("2006-01-02"), to.Format("2006-01-02"))
		return nil
	}

	fmt.Printf("Processing %d recording(s)\n", len(recordings))

	meetingUUIDs := make([]string, 0, len(recordings))
	for _, rec := range recordings {
		meetingUUIDs = append(meetingUUIDs, rec.UUID)
	}

	results := batch.Run(ctx, meetingUUIDs, func(ctx context.Context, meetingUUID string) (string, error) {
		result, err := a.processor.ProcessRecording(ctx, meetingUUID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("archived to %s", result.SessionFolder), nil
	})

	fmt.Println(batch.Format(results))
	return nil
}
