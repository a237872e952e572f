package cmd

import (
	"github.com/DeepanKumar2553/neoshare/internal/relay"
	"github.com/spf13/cobra"
)

var receiveRoom string

var receiveCmd = &cobra.Command{
	Use:     "receive",
	Aliases: []string{"r", "recv"},
	Short:   "Join a room as the receiver",
	Long: `Join an existing room as the receiver. Messages from the sender are
printed as they arrive, and stdin lines are relayed back.

Examples:
  neoshare receive --room 48213377`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return connectAndChat(cmd, receiveRoom, relay.Responder)
	},
}

func init() {
	receiveCmd.Flags().StringVarP(&receiveRoom, "room", "r", "", "room code shared by the sender")
	receiveCmd.MarkFlagRequired("room")
	rootCmd.AddCommand(receiveCmd)
}
