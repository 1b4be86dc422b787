// Package chatsvc runs the per-order chat service: REST history, websocket rooms and the
// Kafka consumers feeding them.
package chatsvc

import (
	"context"
	"errors"
	"net/http"
	"time"

	httpapi "github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/api/http"
	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/hub"
	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/service"
	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/storage"
	"github.com/tugrulsicakyuz/mobile-delivy/config"

	"github.com/lucsky/cuid"
	log "github.com/sirupsen/logrus"
)

func Run(ctx context.Context, settings *config.Settings) error {
	pool := config.MustInitPgxPool(ctx, settings.Postgres)
	defer pool.Close()

	store := storage.NewMessageStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	rdb := config.MustInitRedis(settings.Redis)
	defer rdb.Close()

	writer := config.NewKafkaWriter(settings.Kafka, settings.Kafka.ChatTopic)
	defer writer.Close()

	rooms := hub.New()
	messages := service.NewMessageService(
		store,
		storage.NewRecentLog(rdb, settings.Chat.Retention),
		storage.NewKafkaPublisher(writer),
		rooms,
		settings.Chat.Retention,
		settings.Chat.MaxLength,
	)

	fanout := config.NewKafkaFanoutReader(settings.Kafka, settings.Kafka.ChatTopic, cuid.New())
	defer fanout.Close()
	orderEvents := config.NewKafkaReader(settings.Kafka, settings.Kafka.OrderTopic, settings.Kafka.GroupID)
	defer orderEvents.Close()

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	go service.NewConsumer(fanout, orderEvents, rooms, messages).Start(consumerCtx)

	handler := httpapi.NewHandler(messages, http.HandlerFunc(rooms.ServeWS))
	server := httpapi.NewServer(settings.HTTP.ChatAddr, httpapi.NewRouter(handler))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("Shutting down chat service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
