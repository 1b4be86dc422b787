package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
	model "github.com/tugrulsicakyuz/mobile-delivy/client/model"
)

// OrdersAPI is a mock type for the OrdersAPI type
type OrdersAPI struct {
	mock.Mock
}

// CreateOrder provides a mock function with given fields: ctx, customer, cart
func (_m *OrdersAPI) CreateOrder(ctx context.Context, customer model.Identity, cart []model.CartLine) (*model.Order, error) {
	ret := _m.Called(ctx, customer, cart)

	var r0 *model.Order
	if rf, ok := ret.Get(0).(func(context.Context, model.Identity, []model.CartLine) *model.Order); ok {
		r0 = rf(ctx, customer, cart)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Order)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, model.Identity, []model.CartLine) error); ok {
		r1 = rf(ctx, customer, cart)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListOrders provides a mock function with given fields: ctx, actorID, role, activeOnly
func (_m *OrdersAPI) ListOrders(ctx context.Context, actorID string, role model.Role, activeOnly bool) ([]model.Order, error) {
	ret := _m.Called(ctx, actorID, role, activeOnly)

	var r0 []model.Order
	if rf, ok := ret.Get(0).(func(context.Context, string, model.Role, bool) []model.Order); ok {
		r0 = rf(ctx, actorID, role, activeOnly)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Order)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, model.Role, bool) error); ok {
		r1 = rf(ctx, actorID, role, activeOnly)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListAvailable provides a mock function with given fields: ctx
func (_m *OrdersAPI) ListAvailable(ctx context.Context) ([]model.Order, error) {
	ret := _m.Called(ctx)

	var r0 []model.Order
	if rf, ok := ret.Get(0).(func(context.Context) []model.Order); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Order)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpdateStatus provides a mock function with given fields: ctx, orderID, status, actor
func (_m *OrdersAPI) UpdateStatus(ctx context.Context, orderID string, status model.Status, actor model.Identity) (*model.Order, error) {
	ret := _m.Called(ctx, orderID, status, actor)

	var r0 *model.Order
	if rf, ok := ret.Get(0).(func(context.Context, string, model.Status, model.Identity) *model.Order); ok {
		r0 = rf(ctx, orderID, status, actor)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Order)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, model.Status, model.Identity) error); ok {
		r1 = rf(ctx, orderID, status, actor)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Claim provides a mock function with given fields: ctx, orderID, courier
func (_m *OrdersAPI) Claim(ctx context.Context, orderID string, courier model.Identity) (*model.Order, error) {
	ret := _m.Called(ctx, orderID, courier)

	var r0 *model.Order
	if rf, ok := ret.Get(0).(func(context.Context, string, model.Identity) *model.Order); ok {
		r0 = rf(ctx, orderID, courier)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Order)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, model.Identity) error); ok {
		r1 = rf(ctx, orderID, courier)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewOrdersAPI creates a new instance of OrdersAPI. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewOrdersAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrdersAPI {
	mock := &OrdersAPI{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
