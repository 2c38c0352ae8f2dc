package tsdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// RowPolicy controls how query decoding treats series rows whose length
// differs from the column count.
type RowPolicy int

const (
	// RowsTolerate accepts rows as the server sent them.
	RowsTolerate RowPolicy = iota

	// RowsStrict fails decoding with ErrRowMismatch.
	RowsStrict
)

// QueryResponse is the decoded body of a query request.
type QueryResponse struct {
	Results []QueryResult `json:"results"`
}

// QueryResult is the outcome of one statement.
//
// A statement error such as "database not found" is data, not a failed
// request: it arrives with a success status and is reported in Error.
type QueryResult struct {
	StatementID int      `json:"statement_id"`
	Series      []Series `json:"series"`
	Error       *string  `json:"error,omitempty"`
}

// Series is one table of a statement result.
// Numbers in Values are json.Number so that no precision is lost.
type Series struct {
	Name    string            `json:"name"`
	Tags    map[string]string `json:"tags,omitempty"`
	Columns []string          `json:"columns"`
	Values  [][]any           `json:"values"`
}

// Err returns the statement error, if any, as an error value.
func (r QueryResult) Err() error {
	if r.Error == nil {
		return nil
	}
	return fmt.Errorf("statement %d: %s", r.StatementID, *r.Error)
}

// Query runs an InfluxQL statement against the client's database.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - statement: InfluxQL text, sent URL-encoded as the q parameter
//
// Returns:
//   - *QueryResponse: Decoded results; Series is never nil
//   - error: ErrTransport, *RejectedError or ErrDecode
func (c *Client) Query(ctx context.Context, statement string) (*QueryResponse, error) {
	params := url.Values{}
	params.Set("db", c.database)
	params.Set("q", statement)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	return decodeQueryResponse(body, c.rows)
}

// decodeQueryResponse parses a success body.
func decodeQueryResponse(body []byte, rows RowPolicy) (*QueryResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var resp QueryResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	for i := range resp.Results {
		r := &resp.Results[i]
		if r.Series == nil {
			r.Series = []Series{}
		}
		if rows != RowsStrict {
			continue
		}
		for _, s := range r.Series {
			for n, row := range s.Values {
				if len(row) != len(s.Columns) {
					return nil, fmt.Errorf("%w: %w: series %q row %d has %d values for %d columns",
						ErrDecode, ErrRowMismatch, s.Name, n, len(row), len(s.Columns))
				}
			}
		}
	}

	return &resp, nil
}
