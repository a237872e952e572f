package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/DeepanKumar2553/neoshare/internal/client"
	"github.com/DeepanKumar2553/neoshare/internal/relay"
	"github.com/DeepanKumar2553/neoshare/pkg/protocol"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func connectAndChat(cmd *cobra.Command, room string, role relay.Role) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := viper.GetString(nameKey)
	if name == "" {
		name = role.String()
	}
	server := viper.GetString(serverKey)

	c, err := client.Dial(ctx, server, room, role,
		client.WithName(name),
		client.WithLogger(logger.Named("client")))
	if err != nil {
		return err
	}
	defer c.Close()

	logger.Info("connected", zap.String("server", server), zap.String("room", room), zap.Stringer("role", role))
	fmt.Fprintf(cmd.OutOrStdout(), "Joined room %s as %s. Type your messages (or 'quit' to exit):\n", room, role)

	return runChat(ctx, c, cmd.InOrStdin(), cmd.OutOrStdout())
}

// runChat relays lines from in to the peer and prints the peer's messages to
// out. It returns when in is exhausted, the user quits, ctx is done or the
// connection ends.
//
// The relay drops frames sent before the room is paired, so lines typed while
// no peer is known are not sent, and a Join from a new peer is answered with
// our own Join so the late side learns who is in the room.
func runChat(ctx context.Context, c *client.Client, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.Join(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "*** waiting for peer ***")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	peer := false
	for {
		select {
		case <-ctx.Done():
			return leave(c)
		case msg, ok := <-c.Messages():
			if !ok {
				if err := c.Err(); err != nil {
					return fmt.Errorf("connection lost: %w", err)
				}
				fmt.Fprintln(out, "*** connection closed ***")
				return nil
			}
			switch msg.Type {
			case protocol.MessageTypeJoin:
				if peer {
					continue
				}
				peer = true
				if err := c.Join(ctx); err != nil {
					return err
				}
			case protocol.MessageTypeLeave:
				peer = false
			default:
				peer = true
			}
			fmt.Fprintln(out, formatMessage(msg))
			if !peer {
				fmt.Fprintln(out, "*** waiting for peer ***")
			}
		case line, ok := <-lines:
			if !ok {
				return leave(c)
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if text == "quit" || text == "exit" {
				return leave(c)
			}
			if !peer {
				fmt.Fprintln(out, "*** no peer yet, message not sent ***")
				continue
			}
			msg := protocol.Message{Type: protocol.MessageTypeText, Content: text}
			if err := c.Send(ctx, msg); err != nil {
				return err
			}
		}
	}
}

func leave(c *client.Client) error {
	if err := c.Leave(context.Background()); err != nil {
		logger.Debug("failed to send leave message", zap.Error(err))
	}
	return nil
}

func formatMessage(msg protocol.Message) string {
	sender := msg.Sender
	if sender == "" {
		sender = "peer"
	}
	switch msg.Type {
	case protocol.MessageTypeJoin:
		return fmt.Sprintf("*** %s joined the room ***", sender)
	case protocol.MessageTypeLeave:
		return fmt.Sprintf("*** %s left the room ***", sender)
	default:
		return fmt.Sprintf("[%s]: %s", sender, msg.Content)
	}
}
