package cmd

import (
	"context"

	apigateway "github.com/tugrulsicakyuz/mobile-delivy/api-gateway"
	chatsvc "github.com/tugrulsicakyuz/mobile-delivy/chat-svc"
	"github.com/tugrulsicakyuz/mobile-delivy/config"
	ordersvc "github.com/tugrulsicakyuz/mobile-delivy/order-svc"

	"github.com/spf13/cobra"
)

func serviceCommand(use, short string, run func(context.Context, *config.Settings) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return run(ctx, settings)
		},
	}
}

func init() {
	rootCmd.AddCommand(
		serviceCommand("order-svc", "Run the order service (orders, restaurants, menus)", ordersvc.Run),
		serviceCommand("chat-svc", "Run the chat service (history, websocket rooms)", chatsvc.Run),
		serviceCommand("gateway", "Run the API gateway in front of both services", apigateway.Run),
	)
}
