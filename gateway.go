package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Gateway is the remote CRUD interface of one resource collection.
type Gateway[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, id int64, draft T) (T, error)
	Delete(ctx context.Context, id int64) error
}

var _ Gateway[Author] = (*HTTPGateway[Author])(nil) // ensure HTTPGateway implements Gateway.

// HTTPGateway talks to the catalog api over HTTP. Each call is a single
// attempt bounded by the client timeout.
type HTTPGateway[T any] struct {
	logger        *zap.Logger
	client        *http.Client
	ids           UIDHandler
	endpoint      string
	createPayload func(T) any
	updatePayload func(T) any
}

// GatewayOption customizes an HTTPGateway.
type GatewayOption[T any] func(*HTTPGateway[T])

// WithCreatePayload sets the body builder of creation requests.
func WithCreatePayload[T any](f func(T) any) GatewayOption[T] {
	return func(g *HTTPGateway[T]) { g.createPayload = f }
}

// WithUpdatePayload sets the body builder of update requests.
func WithUpdatePayload[T any](f func(T) any) GatewayOption[T] {
	return func(g *HTTPGateway[T]) { g.updatePayload = f }
}

// NewHTTPGateway provides a gateway to {apiURL}/v1/{resource}. By default
// drafts are sent as they are.
func NewHTTPGateway[T any](logger *zap.Logger, client *http.Client, apiURL, resource string, opts ...GatewayOption[T]) *HTTPGateway[T] {
	asIs := func(draft T) any { return draft }
	g := &HTTPGateway[T]{
		logger:        logger,
		client:        client,
		ids:           NewIDsHandler(),
		endpoint:      strings.TrimRight(apiURL, "/") + "/v1/" + resource,
		createPayload: asIs,
		updatePayload: asIs,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// envelope is the body of every api response.
type envelope struct {
	RequestID string          `json:"requestid"`
	Status    int             `json:"status"`
	Message   string          `json:"message"`
	Total     *int            `json:"total,omitempty"`
	Data      json.RawMessage `json:"data"`
}

func (g *HTTPGateway[T]) List(ctx context.Context) ([]T, error) {
	recs := []T{}
	err := g.do(ctx, "list", http.MethodGet, g.endpoint, 0, nil, &recs)
	return recs, err
}

func (g *HTTPGateway[T]) Create(ctx context.Context, draft T) (T, error) {
	var rec T
	err := g.do(ctx, "create", http.MethodPost, g.endpoint, 0, g.createPayload(draft), &rec)
	return rec, err
}

func (g *HTTPGateway[T]) Update(ctx context.Context, id int64, draft T) (T, error) {
	var rec T
	err := g.do(ctx, "update", http.MethodPut, fmt.Sprintf("%s/%d", g.endpoint, id), id, g.updatePayload(draft), &rec)
	return rec, err
}

func (g *HTTPGateway[T]) Delete(ctx context.Context, id int64) error {
	return g.do(ctx, "delete", http.MethodDelete, fmt.Sprintf("%s/%d", g.endpoint, id), id, nil, nil)
}

// do sends one request and decodes the envelope data into out when it is
// not nil. Failures are mapped to the gateway error types.
func (g *HTTPGateway[T]) do(ctx context.Context, op, method, url string, id int64, payload, out any) error {
	op = op + " " + url
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	requestID := g.ids.Generate(RequestIDPrefix)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("gateway: request failed", zap.String("op", op), zap.String("request.id", requestID), zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Warn("gateway: request rejected",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("request.id", requestID),
			zap.String("message", env.Message),
		)
		return statusError(op, id, resp.StatusCode, env)
	}

	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("invalid response body: %w", decodeErr)}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err = json.Unmarshal(env.Data, out); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("invalid response data: %w", err)}
	}
	return nil
}

func statusError(op string, id int64, status int, env envelope) error {
	message := env.Message
	var detail string
	if json.Unmarshal(env.Data, &detail) == nil && detail != "" {
		message = message + ": " + detail
	}
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{Op: op, Message: message}
	case http.StatusNotFound:
		return &NotFoundError{Op: op, ID: id}
	default:
		if message == "" {
			message = http.StatusText(status)
		}
		return &TransportError{Op: op, Status: status, Err: errors.New(message)}
	}
}
