package mocks

import (
	"context"
	"io"

	mock "github.com/stretchr/testify/mock"
	domain "github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"
)

// RestaurantServiceInterface is a mock type for the RestaurantServiceInterface type
type RestaurantServiceInterface struct {
	mock.Mock
}

// Upsert provides a mock function with given fields: ctx, rest
func (_m *RestaurantServiceInterface) Upsert(ctx context.Context, rest *domain.Restaurant) error {
	ret := _m.Called(ctx, rest)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *domain.Restaurant) error); ok {
		r0 = rf(ctx, rest)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// List provides a mock function with given fields: ctx, activeOnly
func (_m *RestaurantServiceInterface) List(ctx context.Context, activeOnly bool) ([]domain.Restaurant, error) {
	ret := _m.Called(ctx, activeOnly)

	var r0 []domain.Restaurant
	if rf, ok := ret.Get(0).(func(context.Context, bool) []domain.Restaurant); ok {
		r0 = rf(ctx, activeOnly)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Restaurant)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, bool) error); ok {
		r1 = rf(ctx, activeOnly)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Get provides a mock function with given fields: ctx, id
func (_m *RestaurantServiceInterface) Get(ctx context.Context, id string) (*domain.Restaurant, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.Restaurant
	if rf, ok := ret.Get(0).(func(context.Context, string) *domain.Restaurant); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Restaurant)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SetActive provides a mock function with given fields: ctx, id, active
func (_m *RestaurantServiceInterface) SetActive(ctx context.Context, id string, active bool) error {
	ret := _m.Called(ctx, id, active)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, bool) error); ok {
		r0 = rf(ctx, id, active)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Delete provides a mock function with given fields: ctx, id
func (_m *RestaurantServiceInterface) Delete(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, id)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// UploadCover provides a mock function with given fields: ctx, id, filename, contentType, body
func (_m *RestaurantServiceInterface) UploadCover(ctx context.Context, id string, filename string, contentType string, body io.Reader) (string, error) {
	ret := _m.Called(ctx, id, filename, contentType, body)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string, io.Reader) string); ok {
		r0 = rf(ctx, id, filename, contentType, body)
	} else {
		r0 = ret.Get(0).(string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, string, io.Reader) error); ok {
		r1 = rf(ctx, id, filename, contentType, body)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// CreateMenuItem provides a mock function with given fields: ctx, item
func (_m *RestaurantServiceInterface) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	ret := _m.Called(ctx, item)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *domain.MenuItem) error); ok {
		r0 = rf(ctx, item)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Menu provides a mock function with given fields: ctx, restaurantID
func (_m *RestaurantServiceInterface) Menu(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	ret := _m.Called(ctx, restaurantID)

	var r0 []domain.MenuItem
	if rf, ok := ret.Get(0).(func(context.Context, string) []domain.MenuItem); ok {
		r0 = rf(ctx, restaurantID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.MenuItem)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, restaurantID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpdateMenuItem provides a mock function with given fields: ctx, item
func (_m *RestaurantServiceInterface) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	ret := _m.Called(ctx, item)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *domain.MenuItem) error); ok {
		r0 = rf(ctx, item)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SetAvailability provides a mock function with given fields: ctx, restaurantID, itemID, available
func (_m *RestaurantServiceInterface) SetAvailability(ctx context.Context, restaurantID string, itemID string, available bool) error {
	ret := _m.Called(ctx, restaurantID, itemID, available)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string, bool) error); ok {
		r0 = rf(ctx, restaurantID, itemID, available)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// DeleteMenuItem provides a mock function with given fields: ctx, restaurantID, itemID
func (_m *RestaurantServiceInterface) DeleteMenuItem(ctx context.Context, restaurantID string, itemID string) error {
	ret := _m.Called(ctx, restaurantID, itemID)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		r0 = rf(ctx, restaurantID, itemID)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// UploadMenuImage provides a mock function with given fields: ctx, restaurantID, itemID, filename, contentType, body
func (_m *RestaurantServiceInterface) UploadMenuImage(ctx context.Context, restaurantID string, itemID string, filename string, contentType string, body io.Reader) (string, error) {
	ret := _m.Called(ctx, restaurantID, itemID, filename, contentType, body)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string, string, io.Reader) string); ok {
		r0 = rf(ctx, restaurantID, itemID, filename, contentType, body)
	} else {
		r0 = ret.Get(0).(string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, string, string, io.Reader) error); ok {
		r1 = rf(ctx, restaurantID, itemID, filename, contentType, body)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewRestaurantServiceInterface creates a new instance of RestaurantServiceInterface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewRestaurantServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *RestaurantServiceInterface {
	mock := &RestaurantServiceInterface{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
