// Package mocks provides test doubles for the gsheets client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	gsheets "github.com/sells-group/contact-enrich/pkg/gsheets"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Spreadsheet provides a mock function with given fields: ctx, spreadsheetID
func (_m *MockClient) Spreadsheet(ctx context.Context, spreadsheetID string) (*gsheets.Spreadsheet, error) {
	ret := _m.Called(ctx, spreadsheetID)

	var r0 *gsheets.Spreadsheet
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*gsheets.Spreadsheet)
	}
	return r0, ret.Error(1)
}

// Values provides a mock function with given fields: ctx, spreadsheetID, rng
func (_m *MockClient) Values(ctx context.Context, spreadsheetID, rng string) (*gsheets.ValueRange, error) {
	ret := _m.Called(ctx, spreadsheetID, rng)

	var r0 *gsheets.ValueRange
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*gsheets.ValueRange)
	}
	return r0, ret.Error(1)
}

// CellFormats provides a mock function with given fields: ctx, spreadsheetID, rng
func (_m *MockClient) CellFormats(ctx context.Context, spreadsheetID, rng string) ([]gsheets.CellData, error) {
	ret := _m.Called(ctx, spreadsheetID, rng)

	var r0 []gsheets.CellData
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]gsheets.CellData)
	}
	return r0, ret.Error(1)
}

// BatchUpdateValues provides a mock function with given fields: ctx, spreadsheetID, data
func (_m *MockClient) BatchUpdateValues(ctx context.Context, spreadsheetID string, data []gsheets.ValueRange) (*gsheets.BatchUpdateResponse, error) {
	ret := _m.Called(ctx, spreadsheetID, data)

	var r0 *gsheets.BatchUpdateResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*gsheets.BatchUpdateResponse)
	}
	return r0, ret.Error(1)
}

// ListSpreadsheets provides a mock function with given fields: ctx, folderID
func (_m *MockClient) ListSpreadsheets(ctx context.Context, folderID string) ([]gsheets.File, error) {
	ret := _m.Called(ctx, folderID)

	var r0 []gsheets.File
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]gsheets.File)
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
