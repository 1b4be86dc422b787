// Package apigateway fronts order-svc and chat-svc behind one address.
package apigateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/api-gateway/internal/gateway"
	"github.com/tugrulsicakyuz/mobile-delivy/config"

	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

func Run(ctx context.Context, settings *config.Settings) error {
	gw := gateway.NewGateway(gateway.Config{
		OrderSvcURL: settings.Gateway.OrderSvcURL,
		ChatSvcURL:  settings.Gateway.ChatSvcURL,
	}, &http.Client{Timeout: 30 * time.Second})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	server := &http.Server{Addr: settings.HTTP.GatewayAddr, Handler: c.Handler(gw.SetupRoutes())}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("API Gateway listening on %s", settings.HTTP.GatewayAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("Shutting down API gateway")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
