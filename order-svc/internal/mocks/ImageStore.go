package mocks

import (
	"context"
	"io"

	mock "github.com/stretchr/testify/mock"
)

// ImageStore is a mock type for the ImageStore type
type ImageStore struct {
	mock.Mock
}

// Save provides a mock function with given fields: ctx, name, contentType, body
func (_m *ImageStore) Save(ctx context.Context, name string, contentType string, body io.Reader) (string, error) {
	ret := _m.Called(ctx, name, contentType, body)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string, string, io.Reader) string); ok {
		r0 = rf(ctx, name, contentType, body)
	} else {
		r0 = ret.Get(0).(string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, io.Reader) error); ok {
		r1 = rf(ctx, name, contentType, body)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewImageStore creates a new instance of ImageStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewImageStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *ImageStore {
	mock := &ImageStore{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
