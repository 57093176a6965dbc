package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/murmur-app/murmur/client"
)

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	convCmd := &cobra.Command{Use: "conversations", Short: "Conversation operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			convs, err := client.New(apiFlag).ListConversations(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(convs)
		},
	}
	convCmd.AddCommand(listCmd)

	var title string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := client.New(apiFlag).CreateConversation(cmd.Context(), title)
			if err != nil {
				return err
			}
			return printJSON(conv)
		},
	}
	createCmd.Flags().StringVarP(&title, "title", "t", "", "Conversation title")
	convCmd.AddCommand(createCmd)

	getCmd := &cobra.Command{
		Use:   "get CONVERSATION_ID",
		Short: "Get a conversation by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := client.New(apiFlag).GetConversation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(conv)
		},
	}
	convCmd.AddCommand(getCmd)

	renameCmd := &cobra.Command{
		Use:   "rename CONVERSATION_ID NEW_TITLE",
		Short: "Rename a conversation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := client.New(apiFlag).RenameConversation(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(conv)
		},
	}
	convCmd.AddCommand(renameCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete CONVERSATION_ID",
		Short: "Delete a conversation and all its recordings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.New(apiFlag).DeleteConversation(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}
	convCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(convCmd)
}
