// internal/adapter/airtable/client.go

package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"placemap/internal/domain/place"
)

// DefaultEndpoint is the public Airtable REST endpoint.
const DefaultEndpoint = "https://api.airtable.com/v0"

// Client fetches rows from an Airtable base over its REST API. It
// implements place.RowSource; pagination is walked internally so callers
// always see a fully materialized table.
type Client struct {
	apiKey   string
	baseID   string
	endpoint string
	http     *http.Client
}

// record mirrors one element of the Airtable list-records response.
type record struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

// listResponse mirrors the Airtable list-records response envelope.
type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset"`
}

// NewClient creates an Airtable row source for one base.
func NewClient(apiKey, baseID, endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:   apiKey,
		baseID:   baseID,
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// FetchAllRows returns every row of the referenced table, following the
// offset cursor until the table is exhausted. Any failed or malformed
// page fails the whole fetch; partial tables are never returned.
func (c *Client) FetchAllRows(ctx context.Context, tableRef string) ([]place.Row, error) {
	var rows []place.Row
	offset := ""

	for {
		page, err := c.fetchPage(ctx, tableRef, offset)
		if err != nil {
			return nil, err
		}

		for _, r := range page.Records {
			fields := r.Fields
			if fields == nil {
				fields = map[string]interface{}{}
			}
			rows = append(rows, place.Row{ID: r.ID, Fields: fields})
		}

		if page.Offset == "" {
			return rows, nil
		}
		offset = page.Offset
	}
}

func (c *Client) fetchPage(ctx context.Context, tableRef, offset string) (*listResponse, error) {
	u, err := url.Parse(fmt.Sprintf("%s/%s/%s", c.endpoint, c.baseID, tableRef))
	if err != nil {
		return nil, fmt.Errorf("building airtable url: %w", err)
	}
	if offset != "" {
		q := u.Query()
		q.Set("offset", offset)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building airtable request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching table %s: %w", tableRef, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetching table %s: status %d: %s", tableRef, resp.StatusCode, body)
	}

	var page listResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding table %s response: %w", tableRef, err)
	}

	return &page, nil
}
