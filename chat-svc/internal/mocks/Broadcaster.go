package mocks

import (
	mock "github.com/stretchr/testify/mock"
	domain "github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"
)

// Broadcaster is a mock type for the Broadcaster type
type Broadcaster struct {
	mock.Mock
}

// Broadcast provides a mock function with given fields: room, env
func (_m *Broadcaster) Broadcast(room string, env domain.Envelope) {
	_m.Called(room, env)
}

// NewBroadcaster creates a new instance of Broadcaster. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewBroadcaster(t interface {
	mock.TestingT
	Cleanup(func())
}) *Broadcaster {
	mock := &Broadcaster{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
