package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
	domain "github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"
)

// OrderRepository is a mock type for the OrderRepository type
type OrderRepository struct {
	mock.Mock
}

// CreateOrder provides a mock function with given fields: ctx, order
func (_m *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	ret := _m.Called(ctx, order)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *domain.Order) error); ok {
		r0 = rf(ctx, order)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetOrder provides a mock function with given fields: ctx, id
func (_m *OrderRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.Order
	if rf, ok := ret.Get(0).(func(context.Context, string) *domain.Order); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListOrders provides a mock function with given fields: ctx, query
func (_m *OrderRepository) ListOrders(ctx context.Context, query domain.OrderQuery) ([]domain.Order, error) {
	ret := _m.Called(ctx, query)

	var r0 []domain.Order
	if rf, ok := ret.Get(0).(func(context.Context, domain.OrderQuery) []domain.Order); ok {
		r0 = rf(ctx, query)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Order)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, domain.OrderQuery) error); ok {
		r1 = rf(ctx, query)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpdateStatus provides a mock function with given fields: ctx, id, from, to
func (_m *OrderRepository) UpdateStatus(ctx context.Context, id string, from domain.Status, to domain.Status) (bool, error) {
	ret := _m.Called(ctx, id, from, to)

	var r0 bool
	if rf, ok := ret.Get(0).(func(context.Context, string, domain.Status, domain.Status) bool); ok {
		r0 = rf(ctx, id, from, to)
	} else {
		r0 = ret.Get(0).(bool)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, domain.Status, domain.Status) error); ok {
		r1 = rf(ctx, id, from, to)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ClaimOrder provides a mock function with given fields: ctx, id, courier
func (_m *OrderRepository) ClaimOrder(ctx context.Context, id string, courier domain.Actor) (bool, error) {
	ret := _m.Called(ctx, id, courier)

	var r0 bool
	if rf, ok := ret.Get(0).(func(context.Context, string, domain.Actor) bool); ok {
		r0 = rf(ctx, id, courier)
	} else {
		r0 = ret.Get(0).(bool)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, domain.Actor) error); ok {
		r1 = rf(ctx, id, courier)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SaveQRCode provides a mock function with given fields: ctx, id, qr
func (_m *OrderRepository) SaveQRCode(ctx context.Context, id string, qr []byte) error {
	ret := _m.Called(ctx, id, qr)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, []byte) error); ok {
		r0 = rf(ctx, id, qr)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetQRCode provides a mock function with given fields: ctx, id
func (_m *OrderRepository) GetQRCode(ctx context.Context, id string) ([]byte, error) {
	ret := _m.Called(ctx, id)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, string) []byte); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewOrderRepository creates a new instance of OrderRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewOrderRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderRepository {
	mock := &OrderRepository{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
