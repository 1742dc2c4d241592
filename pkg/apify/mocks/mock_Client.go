// Package mocks provides test doubles for the apify client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	apify "github.com/sells-group/contact-enrich/pkg/apify"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Search provides a mock function with given fields: ctx, query, maxResults
func (_m *MockClient) Search(ctx context.Context, query string, maxResults int) ([]apify.OrganicResult, error) {
	ret := _m.Called(ctx, query, maxResults)

	var r0 []apify.OrganicResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]apify.OrganicResult)
	}
	return r0, ret.Error(1)
}

// NewMockClient creates a new instance of MockClient and registers cleanup
// to assert expectations.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
