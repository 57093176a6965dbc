package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/murmur-app/murmur/client"
)

func init() {
	recCmd := &cobra.Command{Use: "recordings", Short: "Recording operations"}

	var title string
	uploadCmd := &cobra.Command{
		Use:   "upload CONVERSATION_ID WAV_FILE",
		Short: "Upload a WAV file as a recording",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			rec, err := client.New(apiFlag).UploadRecording(cmd.Context(), args[0], title, data)
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}
	uploadCmd.Flags().StringVarP(&title, "title", "t", "", "Recording title")
	recCmd.AddCommand(uploadCmd)

	var out string
	fetchCmd := &cobra.Command{
		Use:   "fetch CONVERSATION_ID RECORDING_ID",
		Short: "Download a recording's audio",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := client.New(apiFlag).DownloadAudio(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if out == "" {
				out = args[1] + ".wav"
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d bytes to %s\n", len(data), out)
			return nil
		},
	}
	fetchCmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default RECORDING_ID.wav)")
	recCmd.AddCommand(fetchCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete CONVERSATION_ID RECORDING_ID",
		Short: "Delete a recording",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.New(apiFlag).DeleteRecording(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("deleted", args[1])
			return nil
		},
	}
	recCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(recCmd)
}
