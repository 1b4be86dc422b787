package mocks

import (
	"context"
	"time"

	mock "github.com/stretchr/testify/mock"
	domain "github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"
)

// MessageRepository is a mock type for the MessageRepository type
type MessageRepository struct {
	mock.Mock
}

// Append provides a mock function with given fields: ctx, msg
func (_m *MessageRepository) Append(ctx context.Context, msg *domain.Message) (bool, error) {
	ret := _m.Called(ctx, msg)

	var r0 bool
	if rf, ok := ret.Get(0).(func(context.Context, *domain.Message) bool); ok {
		r0 = rf(ctx, msg)
	} else {
		r0 = ret.Get(0).(bool)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, *domain.Message) error); ok {
		r1 = rf(ctx, msg)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// History provides a mock function with given fields: ctx, orderID, chatType, since
func (_m *MessageRepository) History(ctx context.Context, orderID string, chatType domain.ChatType, since time.Time) ([]domain.Message, error) {
	ret := _m.Called(ctx, orderID, chatType, since)

	var r0 []domain.Message
	if rf, ok := ret.Get(0).(func(context.Context, string, domain.ChatType, time.Time) []domain.Message); ok {
		r0 = rf(ctx, orderID, chatType, since)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Message)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, domain.ChatType, time.Time) error); ok {
		r1 = rf(ctx, orderID, chatType, since)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMessageRepository creates a new instance of MessageRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMessageRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MessageRepository {
	mock := &MessageRepository{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
