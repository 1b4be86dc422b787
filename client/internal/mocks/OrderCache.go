package mocks

import (
	mock "github.com/stretchr/testify/mock"
	model "github.com/tugrulsicakyuz/mobile-delivy/client/model"
)

// OrderCache is a mock type for the OrderCache type
type OrderCache struct {
	mock.Mock
}

// SaveOrders provides a mock function with given fields: actorID, role, orders
func (_m *OrderCache) SaveOrders(actorID string, role model.Role, orders []model.Order) error {
	ret := _m.Called(actorID, role, orders)

	var r0 error
	if rf, ok := ret.Get(0).(func(string, model.Role, []model.Order) error); ok {
		r0 = rf(actorID, role, orders)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// LoadOrders provides a mock function with given fields: actorID, role
func (_m *OrderCache) LoadOrders(actorID string, role model.Role) ([]model.Order, error) {
	ret := _m.Called(actorID, role)

	var r0 []model.Order
	if rf, ok := ret.Get(0).(func(string, model.Role) []model.Order); ok {
		r0 = rf(actorID, role)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Order)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(string, model.Role) error); ok {
		r1 = rf(actorID, role)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewOrderCache creates a new instance of OrderCache. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewOrderCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderCache {
	mock := &OrderCache{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
