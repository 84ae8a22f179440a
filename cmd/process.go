package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/recap/internal/analysis"
	"github.com/teemow/recap/internal/config"
	"github.com/teemow/recap/internal/pipeline"
)

func newProcessCmd() *cobra.Command {
	var (
		meetingUUID    string
		transcriptFile string
		chatLogFile    string
		topic          string
		hostEmail      string
		kinds          []string
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a single recording or transcript file",
		Long: `Run the full pipeline once and exit.

With --meeting, the recording's transcript is downloaded from Zoom.
With --transcript, a local WebVTT file is used instead, which covers
recordings that have already expired from Zoom's cloud storage.

Either way the transcript is analyzed and the resulting documents are
archived to Google Drive.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (meetingUUID == "") == (transcriptFile == "") {
				return fmt.Errorf("exactly one of --meeting or --transcript is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var parsedKinds []analysis.Kind
			for _, name := range kinds {
				kind, ok := analysis.ParseKind(name)
				if !ok {
					return fmt.Errorf("unknown analysis kind %q", name)
				}
				parsedKinds = append(parsedKinds, kind)
			}

			return runProcess(cfg, processOptions{
				meetingUUID:    meetingUUID,
				transcriptFile: transcriptFile,
				chatLogFile:    chatLogFile,
				topic:          topic,
				hostEmail:      hostEmail,
				kinds:          parsedKinds,
			})
		},
	}

	cmd.Flags().StringVar(&meetingUUID, "meeting", "", "Zoom meeting UUID to process")
	cmd.Flags().StringVar(&transcriptFile, "transcript", "", "Path to a local WebVTT transcript file to process")
	cmd.Flags().StringVar(&chatLogFile, "chat-log", "", "Path to the in-meeting chat log (only with --transcript)")
	cmd.Flags().StringVar(&topic, "topic", "", "Session topic (only with --transcript, default: transcript file name)")
	cmd.Flags().StringVar(&hostEmail, "host", "", "Host email for the session (only with --transcript)")
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "Analysis kinds to run (only with --transcript, default: all)")

	return cmd
}

type processOptions struct {
	meetingUUID    string
	transcriptFile string
	chatLogFile    string
	topic          string
	hostEmail      string
	kinds          []analysis.Kind
}

func runProcess(cfg *config.Config, opts processOptions) error {
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

	var result *pipeline.JobResult
	if opts.meetingUUID != "" {
		result, err = a.processor.ProcessRecording(ctx, opts.meetingUUID)
	} else {
		result, err = processTranscriptFile(ctx, a, opts)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Processed session for course %q\n", result.Course)
	fmt.Printf("Drive folder: %s\n", result.SessionFolder)
	for name, url := range result.InsightURLs {
		fmt.Printf("  %s: %s\n", name, url)
	}
	return nil
}

func processTranscriptFile(ctx context.Context, a *app, opts processOptions) (*pipeline.JobResult, error) {
	vttBytes, err := os.ReadFile(opts.transcriptFile)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var chatLog string
	if opts.chatLogFile != "" {
		chatBytes, err := os.ReadFile(opts.chatLogFile)
		if err != nil {
			return nil, fmt.Errorf("read chat log: %w", err)
		}
		chatLog = string(chatBytes)
	}

	topic := opts.topic
	if topic == "" {
		base := filepath.Base(opts.transcriptFile)
		topic = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return a.processor.ProcessTranscript(ctx, vttBytes, pipeline.SessionMeta{
		Topic:     topic,
		HostEmail: opts.hostEmail,
		StartTime: time.Now(),
		ChatLog:   chatLog,
		Kinds:     opts.kinds,
	})
}
