// Package ordersvc runs the order, restaurant and courier-matching HTTP service.
package ordersvc

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/config"
	httpapi "github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/api/http"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/service"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/storage"

	log "github.com/sirupsen/logrus"
)

func Run(ctx context.Context, settings *config.Settings) error {
	db := config.MustInitPostgres(settings.Postgres)
	defer db.Close()

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	rdb := config.MustInitRedis(settings.Redis)
	defer rdb.Close()

	writer := config.NewKafkaWriter(settings.Kafka, settings.Kafka.OrderTopic)
	defer writer.Close()

	var images service.ImageStore = storage.DiskImageStore{Dir: settings.Uploads.Dir}
	if settings.Uploads.S3Bucket != "" {
		s3Store, err := storage.NewS3ImageStore(ctx, settings.Uploads.S3Bucket, settings.Uploads.S3Region)
		if err != nil {
			return err
		}
		images = s3Store
	}

	dashboard := storage.NewDashboardStore(rdb)
	orders := service.NewOrderService(
		repo,
		repo,
		storage.NewKafkaPublisher(writer),
		dashboard,
		service.PickupQRGenerator{BaseURL: settings.HTTP.PublicURL},
	)
	restaurants := service.NewRestaurantService(repo, storage.NewRedisCache(rdb, settings.Redis.MenuTTL), images)

	handler := httpapi.NewHandler(orders, restaurants, service.NewDashboardService(dashboard), settings.Uploads.Dir)
	server := httpapi.NewServer(settings.HTTP.OrderAddr, httpapi.NewRouter(handler))

	return serve(ctx, server)
}

func serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("Shutting down order service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
