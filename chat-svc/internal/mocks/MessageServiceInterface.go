package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
	domain "github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"
)

// MessageServiceInterface is a mock type for the MessageServiceInterface type
type MessageServiceInterface struct {
	mock.Mock
}

// Send provides a mock function with given fields: ctx, msg
func (_m *MessageServiceInterface) Send(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	ret := _m.Called(ctx, msg)

	var r0 *domain.Message
	if rf, ok := ret.Get(0).(func(context.Context, domain.Message) *domain.Message); ok {
		r0 = rf(ctx, msg)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Message)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, domain.Message) error); ok {
		r1 = rf(ctx, msg)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// History provides a mock function with given fields: ctx, orderID, chatType
func (_m *MessageServiceInterface) History(ctx context.Context, orderID string, chatType domain.ChatType) ([]domain.Message, error) {
	ret := _m.Called(ctx, orderID, chatType)

	var r0 []domain.Message
	if rf, ok := ret.Get(0).(func(context.Context, string, domain.ChatType) []domain.Message); ok {
		r0 = rf(ctx, orderID, chatType)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Message)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, domain.ChatType) error); ok {
		r1 = rf(ctx, orderID, chatType)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMessageServiceInterface creates a new instance of MessageServiceInterface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMessageServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *MessageServiceInterface {
	mock := &MessageServiceInterface{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
