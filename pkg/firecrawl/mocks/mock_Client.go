// Package mocks provides test doubles for the firecrawl client.
package mocks

import (
	"context"

	firecrawl "github.com/sells-group/listing-assistant/pkg/firecrawl"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// BatchScrape provides a mock function with given fields: ctx, req
func (_m *MockClient) BatchScrape(ctx context.Context, req firecrawl.BatchScrapeRequest) (*firecrawl.BatchScrapeResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for BatchScrape")
	}

	var r0 *firecrawl.BatchScrapeResponse
	if rf, ok := ret.Get(0).(func(context.Context, firecrawl.BatchScrapeRequest) (*firecrawl.BatchScrapeResponse, error)); ok {
		return rf(ctx, req)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*firecrawl.BatchScrapeResponse)
	}
	return r0, ret.Error(1)
}

// GetBatchScrapeStatus provides a mock function with given fields: ctx, id
func (_m *MockClient) GetBatchScrapeStatus(ctx context.Context, id string) (*firecrawl.BatchScrapeStatusResponse, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for GetBatchScrapeStatus")
	}

	var r0 *firecrawl.BatchScrapeStatusResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*firecrawl.BatchScrapeStatusResponse)
	}
	return r0, ret.Error(1)
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
