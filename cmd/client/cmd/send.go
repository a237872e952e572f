package cmd

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/DeepanKumar2553/neoshare/internal/relay"
	"github.com/spf13/cobra"
)

var sendRoom string

var sendCmd = &cobra.Command{
	Use:     "send",
	Aliases: []string{"s"},
	Short:   "Open a room as the sender",
	Long: `Join a room as the sender and relay stdin lines to the receiver.
A random 8-digit room code is generated when --room is not given.

Examples:
  neoshare send
  neoshare send --room 48213377
  neoshare send --server wss://relay.example.com --name alice`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		room := sendRoom
		if room == "" {
			code, err := newRoomCode()
			if err != nil {
				return err
			}
			room = code
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Room code: %s\n", room)
		return connectAndChat(cmd, room, relay.Initiator)
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendRoom, "room", "r", "", "room code (generated when empty)")
	rootCmd.AddCommand(sendCmd)
}

// newRoomCode returns a random 8-digit numeric room code.
func newRoomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate room code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+10000000), nil
}
