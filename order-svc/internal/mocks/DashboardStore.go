package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
	domain "github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"
)

// DashboardStore is a mock type for the DashboardStore type
type DashboardStore struct {
	mock.Mock
}

// Record provides a mock function with given fields: ctx, event
func (_m *DashboardStore) Record(ctx context.Context, event domain.OrderEvent) error {
	ret := _m.Called(ctx, event)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, domain.OrderEvent) error); ok {
		r0 = rf(ctx, event)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Stats provides a mock function with given fields: ctx, restaurantID
func (_m *DashboardStore) Stats(ctx context.Context, restaurantID string) (*domain.DashboardStats, error) {
	ret := _m.Called(ctx, restaurantID)

	var r0 *domain.DashboardStats
	if rf, ok := ret.Get(0).(func(context.Context, string) *domain.DashboardStats); ok {
		r0 = rf(ctx, restaurantID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.DashboardStats)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, restaurantID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewDashboardStore creates a new instance of DashboardStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewDashboardStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *DashboardStore {
	mock := &DashboardStore{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
