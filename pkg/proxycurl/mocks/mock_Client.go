// Package mocks provides test doubles for the proxycurl client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	proxycurl "github.com/sells-group/contact-enrich/pkg/proxycurl"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Profile provides a mock function with given fields: ctx, profileURL
func (_m *MockClient) Profile(ctx context.Context, profileURL string) (*proxycurl.Profile, error) {
	ret := _m.Called(ctx, profileURL)

	var r0 *proxycurl.Profile
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*proxycurl.Profile)
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
