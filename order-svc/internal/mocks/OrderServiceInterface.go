package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
	domain "github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"
)

// OrderServiceInterface is a mock type for the OrderServiceInterface type
type OrderServiceInterface struct {
	mock.Mock
}

// CreateOrder provides a mock function with given fields: ctx, customer, cart
func (_m *OrderServiceInterface) CreateOrder(ctx context.Context, customer domain.Actor, cart []domain.CartLine) (*domain.Order, error) {
	ret := _m.Called(ctx, customer, cart)

	var r0 *domain.Order
	if rf, ok := ret.Get(0).(func(context.Context, domain.Actor, []domain.CartLine) *domain.Order); ok {
		r0 = rf(ctx, customer, cart)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, domain.Actor, []domain.CartLine) error); ok {
		r1 = rf(ctx, customer, cart)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetOrder provides a mock function with given fields: ctx, id
func (_m *OrderServiceInterface) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
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

// ListOrders provides a mock function with given fields: ctx, actor, filter
func (_m *OrderServiceInterface) ListOrders(ctx context.Context, actor domain.Actor, filter domain.Filter) ([]domain.Order, error) {
	ret := _m.Called(ctx, actor, filter)

	var r0 []domain.Order
	if rf, ok := ret.Get(0).(func(context.Context, domain.Actor, domain.Filter) []domain.Order); ok {
		r0 = rf(ctx, actor, filter)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Order)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, domain.Actor, domain.Filter) error); ok {
		r1 = rf(ctx, actor, filter)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpdateStatus provides a mock function with given fields: ctx, orderID, next, actor
func (_m *OrderServiceInterface) UpdateStatus(ctx context.Context, orderID string, next domain.Status, actor domain.Actor) (*domain.Order, error) {
	ret := _m.Called(ctx, orderID, next, actor)

	var r0 *domain.Order
	if rf, ok := ret.Get(0).(func(context.Context, string, domain.Status, domain.Actor) *domain.Order); ok {
		r0 = rf(ctx, orderID, next, actor)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, domain.Status, domain.Actor) error); ok {
		r1 = rf(ctx, orderID, next, actor)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListAvailable provides a mock function with given fields: ctx
func (_m *OrderServiceInterface) ListAvailable(ctx context.Context) ([]domain.Order, error) {
	ret := _m.Called(ctx)

	var r0 []domain.Order
	if rf, ok := ret.Get(0).(func(context.Context) []domain.Order); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Order)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Claim provides a mock function with given fields: ctx, orderID, courier
func (_m *OrderServiceInterface) Claim(ctx context.Context, orderID string, courier domain.Actor) (*domain.Order, error) {
	ret := _m.Called(ctx, orderID, courier)

	var r0 *domain.Order
	if rf, ok := ret.Get(0).(func(context.Context, string, domain.Actor) *domain.Order); ok {
		r0 = rf(ctx, orderID, courier)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, domain.Actor) error); ok {
		r1 = rf(ctx, orderID, courier)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// QRCode provides a mock function with given fields: ctx, orderID
func (_m *OrderServiceInterface) QRCode(ctx context.Context, orderID string) ([]byte, error) {
	ret := _m.Called(ctx, orderID)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, string) []byte); ok {
		r0 = rf(ctx, orderID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, orderID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewOrderServiceInterface creates a new instance of OrderServiceInterface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewOrderServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderServiceInterface {
	mock := &OrderServiceInterface{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
