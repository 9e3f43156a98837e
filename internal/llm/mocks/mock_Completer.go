// Package mocks provides test doubles for the llm package.
package mocks

import (
	"context"

	llm "github.com/sells-group/listing-assistant/internal/llm"
	mock "github.com/stretchr/testify/mock"
)

// MockCompleter is a mock type for the Completer interface.
type MockCompleter struct {
	mock.Mock
}

// Complete provides a mock function with given fields: ctx, p
func (_m *MockCompleter) Complete(ctx context.Context, p llm.Prompt) (string, error) {
	ret := _m.Called(ctx, p)

	if len(ret) == 0 {
		panic("no return value specified for Complete")
	}

	if rf, ok := ret.Get(0).(func(context.Context, llm.Prompt) (string, error)); ok {
		return rf(ctx, p)
	}
	return ret.String(0), ret.Error(1)
}

// NewMockCompleter creates a new instance of MockCompleter.
func NewMockCompleter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCompleter {
	m := &MockCompleter{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
