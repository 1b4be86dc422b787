package service

import (
	"context"

	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"
)

type DashboardService struct {
	store DashboardStore
}

func NewDashboardService(store DashboardStore) *DashboardService {
	return &DashboardService{store: store}
}

func (s *DashboardService) Stats(ctx context.Context, restaurantID string) (*domain.DashboardStats, error) {
	return s.store.Stats(ctx, restaurantID)
}
