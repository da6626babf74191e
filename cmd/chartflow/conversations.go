package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/barasalah2/chartflow/store"
)

var conversationsLimit int

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Inspect stored conversations",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		list, err := st.ListConversations(cmd.Context(), conversationsLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if formatFlag != "text" {
			return writeJSON(out, list, formatFlag)
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No conversations.")
			return nil
		}
		for _, c := range list {
			fmt.Fprintf(out, "%s  %-40s  %s\n", c.ID, c.Title, humanize.Time(c.UpdatedAt))
		}
		return nil
	},
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a conversation with its messages and saved charts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		conv, err := st.GetConversation(ctx, args[0])
		if err != nil {
			return err
		}
		msgs, err := st.ListMessages(ctx, conv.ID)
		if err != nil {
			return err
		}
		charts, err := st.ListCharts(ctx, conv.ID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if formatFlag == "text" {
			return writeConversationText(out, conv, msgs, charts)
		}
		return writeJSON(out, struct {
			Conversation *store.Conversation `json:"conversation"`
			Messages     []store.Message     `json:"messages"`
			Charts       []store.SavedChart  `json:"charts"`
		}{conv, msgs, charts}, formatFlag)
	},
}

var conversationsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a conversation and its saved charts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteConversation(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	conversationsListCmd.Flags().IntVarP(&conversationsLimit, "limit", "n", 20, "Maximum conversations to list (0 = all)")
	conversationsCmd.AddCommand(conversationsListCmd, conversationsShowCmd, conversationsRmCmd)
}

func writeConversationText(w io.Writer, conv *store.Conversation, msgs []store.Message, charts []store.SavedChart) error {
	fmt.Fprintf(w, "%s (%s)\n", conv.Title, conv.ID)
	fmt.Fprintf(w, "created %s, updated %s\n\n", conv.CreatedAt.Format(time.RFC822), humanize.Time(conv.UpdatedAt))
	for _, m := range msgs {
		fmt.Fprintf(w, "[%s] %s\n", m.Role, m.Content)
		for _, v := range m.Visualizations {
			fmt.Fprintf(w, "    - %s %s\n", v.Type, v.Title)
		}
	}
	if len(charts) > 0 {
		fmt.Fprintln(w, "\nSaved charts:")
		for _, c := range charts {
			fmt.Fprintf(w, "  %s  %s (%d spec(s), %d rows)\n", c.ID, c.Title, len(c.Specs), len(c.Data))
		}
	}
	return nil
}
