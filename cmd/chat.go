package cmd

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/client/chat"
	"github.com/tugrulsicakyuz/mobile-delivy/client/model"
	"github.com/tugrulsicakyuz/mobile-delivy/client/transport"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func chatTypeFlag(cmd *cobra.Command) model.ChatType {
	courier, _ := cmd.Flags().GetBool("courier")
	if courier {
		return model.ChatCourier
	}
	return model.ChatRestaurant
}

func openChannel(s *session, orderID string, chatType model.ChatType, realtime bool) *chat.Channel {
	var tr chat.Transport
	if realtime {
		tr = transport.New(settings.Client.WSURL)
	}
	ch := chat.NewChannel(orderID, chatType, *s.me, s.api, tr, s.cache)
	ch.Retention = s.cache.Retention
	return ch
}

func printEntry(cmd *cobra.Command, ch *chat.Channel, e chat.Entry) {
	who := "Other"
	if ch.IsOutgoing(e.Message) {
		who = "You"
	}
	suffix := ""
	switch {
	case e.Failed:
		suffix = " (failed)"
	case e.Pending:
		suffix = " (sending)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s%s\n", e.Timestamp.Local().Format(time.DateTime), who, e.Content, suffix)
}

var chatTailCmd = &cobra.Command{
	Use:   "chat-tail <orderId>",
	Short: "Follow an order conversation live",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(true)
		if err != nil {
			return err
		}
		defer s.kv.Close()

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		ch := openChannel(s, args[0], chatTypeFlag(cmd), true)
		var mu sync.Mutex
		printed := make(map[string]bool)
		ch.OnChange(func(view []chat.Entry) {
			mu.Lock()
			defer mu.Unlock()
			for _, e := range view {
				if e.Pending || printed[e.ID] {
					continue
				}
				printed[e.ID] = true
				printEntry(cmd, ch, e)
			}
		})
		if err := ch.Open(ctx); err != nil {
			log.Warnf("History unavailable, showing cached messages: %v", err)
		}
		defer ch.Close()

		ch.Poll(ctx)
		return s.cache.MarkRead(args[0], ch.ChatType, s.me.ID)
	},
}

var chatSendCmd = &cobra.Command{
	Use:   "chat-send <orderId> <message...>",
	Short: "Send a message in an order conversation",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(true)
		if err != nil {
			return err
		}
		defer s.kv.Close()

		ch := openChannel(s, args[0], chatTypeFlag(cmd), false)
		if err := ch.Open(cmd.Context()); err != nil {
			log.Debugf("history: %v", err)
		}
		saved, err := ch.Send(cmd.Context(), strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		log.Debugf("Message %s stored as #%d", saved.ID, saved.Seq)
		return nil
	},
}

var chatExportCmd = &cobra.Command{
	Use:   "chat-export <orderId>",
	Short: "Print the cached conversation and how many messages are unread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(true)
		if err != nil {
			return err
		}
		defer s.kv.Close()

		chatType := chatTypeFlag(cmd)
		unread, err := s.cache.UnreadCount(args[0], chatType, s.me.ID)
		if err != nil {
			return err
		}
		text, err := s.cache.Export(args[0], chatType, s.me.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		fmt.Fprintf(cmd.OutOrStdout(), "-- %d unread\n", unread)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{chatTailCmd, chatSendCmd, chatExportCmd} {
		c.Flags().Bool("courier", false, "use the courier conversation instead of the restaurant one")
		rootCmd.AddCommand(c)
	}
}
