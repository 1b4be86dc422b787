package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
	model "github.com/tugrulsicakyuz/mobile-delivy/client/model"
)

// ChatAPI is a mock type for the ChatAPI type
type ChatAPI struct {
	mock.Mock
}

// SendMessage provides a mock function with given fields: ctx, msg
func (_m *ChatAPI) SendMessage(ctx context.Context, msg model.Message) (*model.Message, error) {
	ret := _m.Called(ctx, msg)

	var r0 *model.Message
	if rf, ok := ret.Get(0).(func(context.Context, model.Message) *model.Message); ok {
		r0 = rf(ctx, msg)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Message)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, model.Message) error); ok {
		r1 = rf(ctx, msg)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Messages provides a mock function with given fields: ctx, orderID, chatType
func (_m *ChatAPI) Messages(ctx context.Context, orderID string, chatType model.ChatType) ([]model.Message, error) {
	ret := _m.Called(ctx, orderID, chatType)

	var r0 []model.Message
	if rf, ok := ret.Get(0).(func(context.Context, string, model.ChatType) []model.Message); ok {
		r0 = rf(ctx, orderID, chatType)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Message)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, model.ChatType) error); ok {
		r1 = rf(ctx, orderID, chatType)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewChatAPI creates a new instance of ChatAPI. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewChatAPI(t interface {
	mock.TestingT
	Cleanup(func())
}) *ChatAPI {
	mock := &ChatAPI{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
