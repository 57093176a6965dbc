package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/murmur-app/murmur/client"
	"github.com/murmur-app/murmur/internal/audio"
	"github.com/murmur-app/murmur/internal/capture"
	"github.com/murmur-app/murmur/internal/logger"
)

func init() {
	var (
		conversationID string
		title          string
		device         string
		rate           int
		channels       int
		duration       time.Duration
	)

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Record from the local microphone and upload the take",
		Long: "Captures audio with arecord until the duration elapses or Ctrl-C, " +
			"then uploads the recording. Without --conversation a new conversation " +
			"is created implicitly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New("murmurctl")

			session := capture.NewSession(capture.NewDeviceSource(log, 500), log)
			// Ctrl-C during capture must still release the device.
			defer func() { _ = session.Cancel() }()

			c := capture.DefaultConstraints()
			c.DeviceID = device
			c.SampleRate = rate
			c.Channels = channels
			if err := session.Start(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "recording from %s, press Ctrl-C to stop\n", device)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(stop)
			select {
			case <-time.After(duration):
			case <-stop:
			case <-cmd.Context().Done():
			}

			chunks, err := session.Complete()
			if err != nil {
				return err
			}
			blob, err := audio.AssembleBlob(chunks, audio.CanonicalMIME)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "captured %s (%d bytes), uploading\n",
				session.Recorded().Round(time.Millisecond), len(blob.Data))

			api := client.New(apiFlag)
			if conversationID == "" {
				conv, err := api.CreateConversation(cmd.Context(), title)
				if err != nil {
					return err
				}
				conversationID = conv.ID
			}
			rec, err := api.UploadRecording(cmd.Context(), conversationID, title, blob.Data)
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}
	recordCmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Target conversation id (a new conversation is created when empty)")
	recordCmd.Flags().StringVarP(&title, "title", "t", "", "Recording title")
	recordCmd.Flags().StringVar(&device, "device", "default", "ALSA capture device")
	recordCmd.Flags().IntVar(&rate, "rate", 44100, "Sample rate in Hz")
	recordCmd.Flags().IntVar(&channels, "channels", 1, "Channel count")
	recordCmd.Flags().DurationVarP(&duration, "duration", "d", 30*time.Second, "Maximum capture duration")
	rootCmd.AddCommand(recordCmd)
}
