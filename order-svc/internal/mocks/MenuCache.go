package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
	domain "github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"
)

// MenuCache is a mock type for the MenuCache type
type MenuCache struct {
	mock.Mock
}

// GetMenu provides a mock function with given fields: ctx, restaurantID
func (_m *MenuCache) GetMenu(ctx context.Context, restaurantID string) ([]domain.MenuItem, bool, error) {
	ret := _m.Called(ctx, restaurantID)

	var r0 []domain.MenuItem
	if rf, ok := ret.Get(0).(func(context.Context, string) []domain.MenuItem); ok {
		r0 = rf(ctx, restaurantID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.MenuItem)
	}

	var r1 bool
	if rf, ok := ret.Get(1).(func(context.Context, string) bool); ok {
		r1 = rf(ctx, restaurantID)
	} else {
		r1 = ret.Get(1).(bool)
	}

	var r2 error
	if rf, ok := ret.Get(2).(func(context.Context, string) error); ok {
		r2 = rf(ctx, restaurantID)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// SetMenu provides a mock function with given fields: ctx, restaurantID, items
func (_m *MenuCache) SetMenu(ctx context.Context, restaurantID string, items []domain.MenuItem) error {
	ret := _m.Called(ctx, restaurantID, items)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, []domain.MenuItem) error); ok {
		r0 = rf(ctx, restaurantID, items)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Invalidate provides a mock function with given fields: ctx, restaurantID
func (_m *MenuCache) Invalidate(ctx context.Context, restaurantID string) error {
	ret := _m.Called(ctx, restaurantID)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, restaurantID)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMenuCache creates a new instance of MenuCache. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMenuCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *MenuCache {
	mock := &MenuCache{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
