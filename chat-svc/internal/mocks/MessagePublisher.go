package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
	domain "github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"
)

// MessagePublisher is a mock type for the MessagePublisher type
type MessagePublisher struct {
	mock.Mock
}

// PublishMessage provides a mock function with given fields: ctx, msg
func (_m *MessagePublisher) PublishMessage(ctx context.Context, msg domain.Message) error {
	ret := _m.Called(ctx, msg)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, domain.Message) error); ok {
		r0 = rf(ctx, msg)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMessagePublisher creates a new instance of MessagePublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMessagePublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MessagePublisher {
	mock := &MessagePublisher{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
