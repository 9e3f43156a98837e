package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/listing-assistant/internal/engine"
	"github.com/sells-group/listing-assistant/internal/model"
)

// --- Gate Mock ---

type mockGate struct {
	mock.Mock
}

func (m *mockGate) InDomain(ctx context.Context, query string) (bool, error) {
	args := m.Called(ctx, query)
	return args.Bool(0), args.Error(1)
}

// --- Classifier Mock ---

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, query string) (model.Intent, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(model.Intent), args.Error(1)
}

// --- Retriever Mock ---

type mockRetriever struct {
	mock.Mock
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string) (Retrieval, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(Retrieval), args.Error(1)
}

// --- Chart Mock ---

type mockCharts struct {
	mock.Mock
}

func (m *mockCharts) Synthesize(ctx context.Context, records []model.Record, query string) (string, error) {
	args := m.Called(ctx, records, query)
	return args.String(0), args.Error(1)
}

// --- Map Mock ---

type mockMaps struct {
	mock.Mock
}

func (m *mockMaps) Render(records []model.Record) string {
	return m.Called(records).String(0)
}

// --- Scraper Mock ---

type mockScraper struct {
	mock.Mock
}

func (m *mockScraper) Scrape(ctx context.Context, urls []string) ([]model.PropertyRecord, error) {
	args := m.Called(ctx, urls)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PropertyRecord), args.Error(1)
}

// --- Query Log Mock ---

type mockQueryLog struct {
	mock.Mock
}

func (m *mockQueryLog) RecordQuery(ctx context.Context, e *model.QueryEntry) error {
	return m.Called(ctx, e).Error(0)
}

// --- Engine Mock ---

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Query(ctx context.Context, question string) (*engine.Answer, error) {
	args := m.Called(ctx, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.Answer), args.Error(1)
}
