package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
	domain "github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"
)

// RestaurantRepository is a mock type for the RestaurantRepository type
type RestaurantRepository struct {
	mock.Mock
}

// UpsertRestaurant provides a mock function with given fields: ctx, rest
func (_m *RestaurantRepository) UpsertRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	ret := _m.Called(ctx, rest)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *domain.Restaurant) error); ok {
		r0 = rf(ctx, rest)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ListRestaurants provides a mock function with given fields: ctx, activeOnly
func (_m *RestaurantRepository) ListRestaurants(ctx context.Context, activeOnly bool) ([]domain.Restaurant, error) {
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

// GetRestaurant provides a mock function with given fields: ctx, id
func (_m *RestaurantRepository) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
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

// SetRestaurantActive provides a mock function with given fields: ctx, id, active
func (_m *RestaurantRepository) SetRestaurantActive(ctx context.Context, id string, active bool) (int64, error) {
	ret := _m.Called(ctx, id, active)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, string, bool) int64); ok {
		r0 = rf(ctx, id, active)
	} else {
		r0 = ret.Get(0).(int64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, bool) error); ok {
		r1 = rf(ctx, id, active)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// DeleteRestaurant provides a mock function with given fields: ctx, id
func (_m *RestaurantRepository) DeleteRestaurant(ctx context.Context, id string) (int64, error) {
	ret := _m.Called(ctx, id)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, string) int64); ok {
		r0 = rf(ctx, id)
	} else {
		r0 = ret.Get(0).(int64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpdateRestaurantImage provides a mock function with given fields: ctx, id, imageURL
func (_m *RestaurantRepository) UpdateRestaurantImage(ctx context.Context, id string, imageURL string) error {
	ret := _m.Called(ctx, id, imageURL)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		r0 = rf(ctx, id, imageURL)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// CreateMenuItem provides a mock function with given fields: ctx, item
func (_m *RestaurantRepository) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	ret := _m.Called(ctx, item)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *domain.MenuItem) error); ok {
		r0 = rf(ctx, item)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ListMenuItems provides a mock function with given fields: ctx, restaurantID
func (_m *RestaurantRepository) ListMenuItems(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
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
func (_m *RestaurantRepository) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) (int64, error) {
	ret := _m.Called(ctx, item)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, *domain.MenuItem) int64); ok {
		r0 = rf(ctx, item)
	} else {
		r0 = ret.Get(0).(int64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, *domain.MenuItem) error); ok {
		r1 = rf(ctx, item)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SetMenuItemAvailability provides a mock function with given fields: ctx, restaurantID, itemID, available
func (_m *RestaurantRepository) SetMenuItemAvailability(ctx context.Context, restaurantID string, itemID string, available bool) (int64, error) {
	ret := _m.Called(ctx, restaurantID, itemID, available)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, string, string, bool) int64); ok {
		r0 = rf(ctx, restaurantID, itemID, available)
	} else {
		r0 = ret.Get(0).(int64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, bool) error); ok {
		r1 = rf(ctx, restaurantID, itemID, available)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// DeleteMenuItem provides a mock function with given fields: ctx, restaurantID, itemID
func (_m *RestaurantRepository) DeleteMenuItem(ctx context.Context, restaurantID string, itemID string) (int64, error) {
	ret := _m.Called(ctx, restaurantID, itemID)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, string, string) int64); ok {
		r0 = rf(ctx, restaurantID, itemID)
	} else {
		r0 = ret.Get(0).(int64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, restaurantID, itemID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpdateMenuItemImage provides a mock function with given fields: ctx, restaurantID, itemID, imageURL
func (_m *RestaurantRepository) UpdateMenuItemImage(ctx context.Context, restaurantID string, itemID string, imageURL string) (int64, error) {
	ret := _m.Called(ctx, restaurantID, itemID, imageURL)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string) int64); ok {
		r0 = rf(ctx, restaurantID, itemID, imageURL)
	} else {
		r0 = ret.Get(0).(int64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, string) error); ok {
		r1 = rf(ctx, restaurantID, itemID, imageURL)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewRestaurantRepository creates a new instance of RestaurantRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewRestaurantRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *RestaurantRepository {
	mock := &RestaurantRepository{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
