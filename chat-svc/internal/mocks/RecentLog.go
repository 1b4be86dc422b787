package mocks

import (
	"context"
	"time"

	mock "github.com/stretchr/testify/mock"
	domain "github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"
)

// RecentLog is a mock type for the RecentLog type
type RecentLog struct {
	mock.Mock
}

// Add provides a mock function with given fields: ctx, msg
func (_m *RecentLog) Add(ctx context.Context, msg domain.Message) error {
	ret := _m.Called(ctx, msg)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, domain.Message) error); ok {
		r0 = rf(ctx, msg)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Recent provides a mock function with given fields: ctx, orderID, chatType, since
func (_m *RecentLog) Recent(ctx context.Context, orderID string, chatType domain.ChatType, since time.Time) ([]domain.Message, bool, error) {
	ret := _m.Called(ctx, orderID, chatType, since)

	var r0 []domain.Message
	if rf, ok := ret.Get(0).(func(context.Context, string, domain.ChatType, time.Time) []domain.Message); ok {
		r0 = rf(ctx, orderID, chatType, since)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Message)
	}

	var r1 bool
	if rf, ok := ret.Get(1).(func(context.Context, string, domain.ChatType, time.Time) bool); ok {
		r1 = rf(ctx, orderID, chatType, since)
	} else {
		r1 = ret.Get(1).(bool)
	}

	var r2 error
	if rf, ok := ret.Get(2).(func(context.Context, string, domain.ChatType, time.Time) error); ok {
		r2 = rf(ctx, orderID, chatType, since)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// Fill provides a mock function with given fields: ctx, orderID, chatType, msgs
func (_m *RecentLog) Fill(ctx context.Context, orderID string, chatType domain.ChatType, msgs []domain.Message) error {
	ret := _m.Called(ctx, orderID, chatType, msgs)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, domain.ChatType, []domain.Message) error); ok {
		r0 = rf(ctx, orderID, chatType, msgs)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Invalidate provides a mock function with given fields: ctx, orderID, chatType
func (_m *RecentLog) Invalidate(ctx context.Context, orderID string, chatType domain.ChatType) error {
	ret := _m.Called(ctx, orderID, chatType)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, domain.ChatType) error); ok {
		r0 = rf(ctx, orderID, chatType)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewRecentLog creates a new instance of RecentLog. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewRecentLog(t interface {
	mock.TestingT
	Cleanup(func())
}) *RecentLog {
	mock := &RecentLog{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
