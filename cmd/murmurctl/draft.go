package main

import (
	"github.com/spf13/cobra"

	"github.com/murmur-app/murmur/client"
)

func init() {
	var format, instructions string
	draftCmd := &cobra.Command{
		Use:   "draft CONVERSATION_ID",
		Short: "Generate a draft from a conversation's transcripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := client.New(apiFlag).CreateDraft(cmd.Context(), args[0], format, instructions)
			if err != nil {
				return err
			}
			return printJSON(draft)
		},
	}
	draftCmd.Flags().StringVarP(&format, "format", "f", "blog", "Output format: tweet, blog, article")
	draftCmd.Flags().StringVarP(&instructions, "instructions", "i", "", "Optional style instructions")
	rootCmd.AddCommand(draftCmd)
}
