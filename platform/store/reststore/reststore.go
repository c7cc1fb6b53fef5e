// Package reststore implements store.Table over a PostgREST endpoint such as
// the one Supabase exposes under /rest/v1.
package reststore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"orcamento_backend/platform/store"

	"github.com/go-resty/resty/v2"
)

const (
	headerPrefer         = "Prefer"
	returnRepresentation = "return=representation"
)

// Client is a resty-backed PostgREST connection shared by every table.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a client for baseURL authenticated with apiKey.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	base := strings.TrimSuffix(baseURL, "/")
	if !strings.HasSuffix(base, "/rest/v1") {
		base += "/rest/v1"
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("apikey", apiKey).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", apiKey)).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{httpClient: restyClient}
}

// Ping implements store.Pinger by fetching the OpenAPI root.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.httpClient.R().SetContext(ctx).Get("/")
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	if resp.IsError() {
		return statusError(resp)
	}
	return nil
}

// Table maps one PostgREST resource onto rows of type T. T uses `json` tags
// matching the column names; unknown columns fail decoding.
type Table[T any] struct {
	client *Client
	name   string
}

var _ store.Table[struct{}] = (*Table[struct{}])(nil)

// NewTable returns the table resource called name.
func NewTable[T any](client *Client, name string) *Table[T] {
	return &Table[T]{client: client, name: name}
}

// Insert implements store.Table.
func (t *Table[T]) Insert(ctx context.Context, values map[string]any) (T, error) {
	var zero T
	resp, err := t.client.httpClient.R().
		SetContext(ctx).
		SetHeader(headerPrefer, returnRepresentation).
		SetBody(values).
		Post("/" + t.name)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	if resp.IsError() {
		return zero, statusError(resp)
	}

	records, err := decode[T](resp.Body())
	if err != nil {
		return zero, err
	}
	if len(records) != 1 {
		return zero, fmt.Errorf("%w: insert returned %d rows", store.ErrInvalidRecord, len(records))
	}
	return records[0], nil
}

// Select implements store.Table.
func (t *Table[T]) Select(ctx context.Context, q store.Query) ([]T, error) {
	params, err := encodeQuery(q)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.httpClient.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Get("/" + t.name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	return decode[T](resp.Body())
}

// Update implements store.Table. The affected row count is the number of rows
// PostgREST returns with return=representation.
func (t *Table[T]) Update(ctx context.Context, where []store.Filter, patch map[string]any) (int64, error) {
	if len(where) == 0 {
		return 0, fmt.Errorf("%w: update without filter", store.ErrRejected)
	}
	params, err := encodeFilters(where, url.Values{})
	if err != nil {
		return 0, err
	}

	resp, err := t.client.httpClient.R().
		SetContext(ctx).
		SetHeader(headerPrefer, returnRepresentation).
		SetQueryParamsFromValues(params).
		SetBody(patch).
		Patch("/" + t.name)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	if resp.IsError() {
		return 0, statusError(resp)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidRecord, err)
	}
	return int64(len(rows)), nil
}

func decode[T any](body []byte) ([]T, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var records []T
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidRecord, err)
	}
	return records, nil
}

func encodeQuery(q store.Query) (url.Values, error) {
	params := url.Values{}
	params.Set("select", "*")

	params, err := encodeFilters(q.Filters, params)
	if err != nil {
		return nil, err
	}

	if len(q.Order) > 0 {
		parts := make([]string, len(q.Order))
		for i, o := range q.Order {
			dir := "asc"
			if o.Desc {
				dir = "desc"
			}
			parts[i] = o.Column + "." + dir
		}
		params.Set("order", strings.Join(parts, ","))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	return params, nil
}

func encodeFilters(filters []store.Filter, params url.Values) (url.Values, error) {
	for _, f := range filters {
		switch f.Op {
		case store.OpEq:
			params.Add(f.Column, "eq."+formatValue(f.Value))
		case store.OpIsNull:
			params.Add(f.Column, "is.null")
		case store.OpIn:
			items, err := formatList(f.Value)
			if err != nil {
				return nil, err
			}
			params.Add(f.Column, "in.("+strings.Join(items, ",")+")")
		case store.OpILike:
			params.Add(f.Column, "ilike."+formatValue(f.Value))
		default:
			return nil, fmt.Errorf("%w: unsupported operator %q", store.ErrRejected, f.Op)
		}
	}
	return params, nil
}

func formatValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return "null"
	case string:
		return typed
	case time.Time:
		return typed.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatList(v any) ([]string, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: in filter needs a slice, got %T", store.ErrRejected, v)
	}
	items := make([]string, rv.Len())
	for i := range items {
		items[i] = quoteListItem(formatValue(rv.Index(i).Interface()))
	}
	return items, nil
}

// quoteListItem wraps values containing PostgREST reserved characters in double quotes.
func quoteListItem(s string) string {
	if !strings.ContainsAny(s, `,()"\ `) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func statusError(resp *resty.Response) error {
	var body apiError
	_ = json.Unmarshal(resp.Body(), &body)

	cause := fmt.Errorf("postgrest status %d: code=%s message=%s", resp.StatusCode(), body.Code, body.Message)
	switch {
	case resp.StatusCode() == http.StatusConflict || strings.HasPrefix(body.Code, "23"):
		return fmt.Errorf("%w: %w", store.ErrConstraint, cause)
	case resp.StatusCode() >= http.StatusInternalServerError, resp.StatusCode() == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", store.ErrUnavailable, cause)
	default:
		return fmt.Errorf("%w: %w", store.ErrRejected, cause)
	}
}
