// Package gsheets provides a minimal client for the Google Sheets v4 and
// Drive v3 REST APIs.
package gsheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultSheetsBaseURL = "https://sheets.googleapis.com"
	defaultDriveBaseURL  = "https://www.googleapis.com"

	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
)

// Client performs Google Sheets and Drive operations.
type Client interface {
	// Spreadsheet returns spreadsheet metadata (sheet titles).
	Spreadsheet(ctx context.Context, spreadsheetID string) (*Spreadsheet, error)
	// Values reads a range as formatted strings.
	Values(ctx context.Context, spreadsheetID, rng string) (*ValueRange, error)
	// CellFormats reads the formatted value and background color of each
	// cell in the first row of rng.
	CellFormats(ctx context.Context, spreadsheetID, rng string) ([]CellData, error)
	// BatchUpdateValues writes several ranges in one request.
	BatchUpdateValues(ctx context.Context, spreadsheetID string, data []ValueRange) (*BatchUpdateResponse, error)
	// ListSpreadsheets lists the spreadsheets in a Drive folder.
	ListSpreadsheets(ctx context.Context, folderID string) ([]File, error)
}

// Spreadsheet is the subset of spreadsheet metadata the client requests.
type Spreadsheet struct {
	SpreadsheetID string  `json:"spreadsheetId"`
	Sheets        []Sheet `json:"sheets"`
}

// Sheet is one tab of a spreadsheet.
type Sheet struct {
	Properties SheetProperties `json:"properties"`
	Data       []GridData      `json:"data,omitempty"`
}

// SheetProperties holds sheet metadata.
type SheetProperties struct {
	SheetID int64  `json:"sheetId"`
	Title   string `json:"title"`
}

// GridData holds cell data for a requested grid range.
type GridData struct {
	RowData []RowData `json:"rowData"`
}

// RowData is one row of cells.
type RowData struct {
	Values []CellData `json:"values"`
}

// CellData is a single cell with its effective format.
type CellData struct {
	FormattedValue  string      `json:"formattedValue"`
	EffectiveFormat *CellFormat `json:"effectiveFormat,omitempty"`
}

// CellFormat holds the cell formatting fields the client requests.
type CellFormat struct {
	BackgroundColor *Color `json:"backgroundColor,omitempty"`
}

// Color is an RGB color; omitted channels are zero.
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// IsWhite reports whether the color is pure white.
func (c Color) IsWhite() bool {
	return c.Red == 1 && c.Green == 1 && c.Blue == 1
}

// ValueRange is a range of values in A1 notation.
type ValueRange struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// BatchUpdateResponse is the response of values:batchUpdate.
type BatchUpdateResponse struct {
	TotalUpdatedCells int `json:"totalUpdatedCells"`
}

// File is a Drive file.
type File struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// APIError is a non-2xx response from a Google API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gsheets: unexpected status %d: %s", e.StatusCode, e.Message)
}

// Option configures the client.
type Option func(*httpClient)

// WithSheetsBaseURL overrides the Sheets API base URL (for testing).
func WithSheetsBaseURL(u string) Option {
	return func(c *httpClient) {
		c.sheetsBaseURL = u
	}
}

// WithDriveBaseURL overrides the Drive API base URL (for testing).
func WithDriveBaseURL(u string) Option {
	return func(c *httpClient) {
		c.driveBaseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	accessToken   string
	sheetsBaseURL string
	driveBaseURL  string
	http          *http.Client
}

// NewClient creates a Google Sheets client authenticated with an OAuth
// access token.
func NewClient(accessToken string, opts ...Option) Client {
	c := &httpClient{
		accessToken:   accessToken,
		sheetsBaseURL: defaultSheetsBaseURL,
		driveBaseURL:  defaultDriveBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// A1Range quotes a sheet title for use in an A1 range.
func A1Range(sheetName, cells string) string {
	quoted := "'" + strings.ReplaceAll(sheetName, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

func (c *httpClient) do(ctx context.Context, method, reqURL string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return eris.Wrap(err, "gsheets: marshal request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return eris.Wrap(err, "gsheets: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "gsheets: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "gsheets: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "gsheets: unmarshal response")
	}
	return nil
}

// errorMessage extracts error.message from a Google error body, falling back
// to the raw body.
func errorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return string(body)
}

func (c *httpClient) Spreadsheet(ctx context.Context, spreadsheetID string) (*Spreadsheet, error) {
	q := url.Values{}
	q.Set("fields", "spreadsheetId,sheets.properties(sheetId,title)")
	reqURL := fmt.Sprintf("%s/v4/spreadsheets/%s?%s", c.sheetsBaseURL, url.PathEscape(spreadsheetID), q.Encode())

	var out Spreadsheet
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Values(ctx context.Context, spreadsheetID, rng string) (*ValueRange, error) {
	reqURL := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s", c.sheetsBaseURL, url.PathEscape(spreadsheetID), url.PathEscape(rng))

	var out ValueRange
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CellFormats(ctx context.Context, spreadsheetID, rng string) ([]CellData, error) {
	q := url.Values{}
	q.Set("ranges", rng)
	q.Set("fields", "sheets.data.rowData.values(formattedValue,effectiveFormat.backgroundColor)")
	reqURL := fmt.Sprintf("%s/v4/spreadsheets/%s?%s", c.sheetsBaseURL, url.PathEscape(spreadsheetID), q.Encode())

	var out Spreadsheet
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Sheets) == 0 || len(out.Sheets[0].Data) == 0 || len(out.Sheets[0].Data[0].RowData) == 0 {
		return []CellData{}, nil
	}
	return out.Sheets[0].Data[0].RowData[0].Values, nil
}

type batchUpdateRequest struct {
	ValueInputOption string       `json:"valueInputOption"`
	Data             []ValueRange `json:"data"`
}

func (c *httpClient) BatchUpdateValues(ctx context.Context, spreadsheetID string, data []ValueRange) (*BatchUpdateResponse, error) {
	reqURL := fmt.Sprintf("%s/v4/spreadsheets/%s/values:batchUpdate", c.sheetsBaseURL, url.PathEscape(spreadsheetID))

	var out BatchUpdateResponse
	if err := c.do(ctx, http.MethodPost, reqURL, batchUpdateRequest{ValueInputOption: "RAW", Data: data}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type fileList struct {
	Files         []File `json:"files"`
	NextPageToken string `json:"nextPageToken"`
}

func (c *httpClient) ListSpreadsheets(ctx context.Context, folderID string) ([]File, error) {
	query := fmt.Sprintf("mimeType='%s' and trashed=false", spreadsheetMimeType)
	if folderID != "" {
		query = fmt.Sprintf("'%s' in parents and %s", strings.ReplaceAll(folderID, "'", `\'`), query)
	}

	files := []File{}
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("q", query)
		q.Set("fields", "nextPageToken,files(id,name)")
		q.Set("pageSize", "1000")
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var page fileList
		if err := c.do(ctx, http.MethodGet, c.driveBaseURL+"/drive/v3/files?"+q.Encode(), nil, &page); err != nil {
			return nil, err
		}
		files = append(files, page.Files...)
		if page.NextPageToken == "" {
			return files, nil
		}
		pageToken = page.NextPageToken
	}
}
