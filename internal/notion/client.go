package notion

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultBaseURL is the public Notion API root
	DefaultBaseURL = "https://api.notion.com/v1"
	// DefaultVersion is the Notion-Version header sent with every request
	DefaultVersion = "2022-06-28"
	// PageSize is the largest page the query endpoint returns
	PageSize = 100
)

// Options configures a Client
type Options struct {
	BaseURL string
	Token   string
	Version string
	Timeout time.Duration // zero disables the client timeout
}

// Client talks to the Notion REST API
type Client struct {
	http *resty.Client
}

// New creates a client. Requests are never retried.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	cl := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Notion-Version", opts.Version).
		SetRetryCount(0)
	if opts.Token != "" {
		cl.SetAuthToken(opts.Token)
	}
	if opts.Timeout > 0 {
		cl.SetTimeout(opts.Timeout)
	}
	return &Client{http: cl}
}

// Filter is passed verbatim to the query endpoint
type Filter map[string]any

// Sort orders query results by a property
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

const (
	Ascending  = "ascending"
	Descending = "descending"
)

// Query holds the optional filter and sorts of a database query
type Query struct {
	Filter Filter
	Sorts  []Sort
}

type queryRequest struct {
	Filter      Filter `json:"filter,omitempty"`
	Sorts       []Sort `json:"sorts,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
}

// QueryResponse is one page of query results
type QueryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// Database is the schema of a database
type Database struct {
	ID         string                    `json:"id"`
	Title      []RichText                `json:"title"`
	Properties map[string]PropertySchema `json:"properties"`
}

// PropertySchema describes one column of a database
type PropertySchema struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Type PropertyType `json:"type"`
}

// QueryDatabase fetches a single page of results starting at cursor
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, q Query, cursor string) (*QueryResponse, error) {
	body := queryRequest{
		Filter:      q.Filter,
		Sorts:       q.Sorts,
		StartCursor: cursor,
		PageSize:    PageSize,
	}
	var out QueryResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&APIError{}).
		Post("/databases/" + url.PathEscape(databaseID) + "/query")
	if err != nil {
		return nil, fmt.Errorf("failed to query database %s: %w", databaseID, err)
	}
	if err := handleResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

// QueryAll reads every page of a database query in order. An empty databaseID
// returns an empty slice without contacting the API.
func (c *Client) QueryAll(ctx context.Context, databaseID string, q Query) ([]Page, error) {
	pages := []Page{}
	if databaseID == "" {
		return pages, nil
	}
	cursor := ""
	for {
		resp, err := c.QueryDatabase(ctx, databaseID, q, cursor)
		if err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return pages, nil
		}
		cursor = *resp.NextCursor
	}
}

// RetrieveDatabase fetches the schema of a database
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var out Database
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&APIError{}).
		Get("/databases/" + url.PathEscape(databaseID))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve database %s: %w", databaseID, err)
	}
	if err := handleResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

func handleResponse(resp *resty.Response) error {
	if resp.StatusCode() < 400 {
		return nil
	}
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr != nil && apiErr.Message != "" {
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode()
		}
		return apiErr
	}
	return &APIError{Status: resp.StatusCode(), Message: fmt.Sprintf("API returned status %d", resp.StatusCode())}
}

// APIError is the error body returned by Notion
type APIError struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}
