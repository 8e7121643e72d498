// Package platform is the HTTP client for the events REST API. The API is
// owned elsewhere; this client only shapes requests, attaches bearer tokens,
// and classifies failures.
package platform

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

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eventhub/pkg/faults"
	"eventhub/pkg/models"
)

const correlationIDHeader = "X-Correlation-ID"

// TokenSource yields a bearer token for authenticated calls.
type TokenSource interface {
	Token() (string, error)
}

// Client talks to the events platform API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// NewClient creates a platform client. tokens supplies bearer tokens for
// write and owned-read operations; public reads go out without one.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// Search lists upcoming events, optionally filtered by exact event type.
func (c *Client) Search(ctx context.Context, eventType models.EventType) ([]models.EventRecord, error) {
	path := "/events/search"
	if eventType != "" {
		path += "?type=" + url.QueryEscape(string(eventType))
	}
	body, err := c.do(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return nil, err
	}
	return decodeEventList(body)
}

// Get fetches a single event by id.
func (c *Client) Get(ctx context.Context, id string) (*models.EventRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, false)
	if err != nil {
		return nil, err
	}
	var event models.EventRecord
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, faults.Wrap(faults.ServerRejected, "malformed event response", err)
	}
	return &event, nil
}

// createResponse mirrors the platform's insert acknowledgement.
type createResponse struct {
	InsertedID   string `json:"insertedId"`
	Acknowledged bool   `json:"acknowledged"`
}

// Create submits a new event and returns its server-assigned id.
func (c *Client) Create(ctx context.Context, req models.CreateEventRequest) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/events", req, true)
	if err != nil {
		return "", err
	}
	var resp createResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", faults.Wrap(faults.ServerRejected, "malformed create response", err)
	}
	if resp.InsertedID == "" && !resp.Acknowledged {
		return "", faults.New(faults.ServerRejected, "create not acknowledged")
	}
	return resp.InsertedID, nil
}

// Patch updates an event the current user created.
func (c *Client) Patch(ctx context.Context, id string, req models.UpdateEventRequest) error {
	_, err := c.do(ctx, http.MethodPatch, "/events/"+url.PathEscape(id), req, true)
	return err
}

// Delete removes an event the current user created.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil, true)
	return err
}

// Mine lists events created by the current user, optionally filtered by type.
func (c *Client) Mine(ctx context.Context, eventType models.EventType) ([]models.EventRecord, error) {
	path := "/events/my-events"
	if eventType != "" {
		path += "?type=" + url.QueryEscape(string(eventType))
	}
	body, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	return decodeEventList(body)
}

// Join records the current user's participation in an event.
func (c *Client) Join(ctx context.Context, eventID string) error {
	_, err := c.do(ctx, http.MethodPost, "/joinedEvents", models.JoinEventRequest{EventID: eventID}, true)
	return err
}

// MyJoined lists the events the current user has joined.
func (c *Client) MyJoined(ctx context.Context) ([]models.EventRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "/joinedEvents/my-joined", nil, true)
	if err != nil {
		return nil, err
	}
	return decodeEventList(body)
}

// do runs one request and returns the response body, classifying transport
// and status failures. authed requests carry a fresh bearer token.
func (c *Client) do(ctx context.Context, method, path string, payload any, authed bool) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, faults.Wrap(faults.Validation, "encode request", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, faults.Wrap(faults.Network, "build request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(correlationIDHeader, uuid.New().String())

	if authed {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("platform request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, faults.Wrap(faults.Network, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.Wrap(faults.Network, "read response", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	msg := serverMessage(body)
	c.logger.Warn("platform request rejected",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("message", msg))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, faults.New(faults.NotFound, msg)
	case http.StatusUnauthorized:
		return nil, faults.New(faults.Unauthenticated, msg)
	default:
		return nil, faults.New(faults.ServerRejected,
			fmt.Sprintf("%s (status %d)", msg, resp.StatusCode))
	}
}

// serverMessage extracts the error message the API puts in its body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return "request rejected"
}

// decodeEventList accepts both list shapes the API is known to produce: a
// bare array, or an object with an events field.
func decodeEventList(body []byte) ([]models.EventRecord, error) {
	var events []models.EventRecord
	if err := json.Unmarshal(body, &events); err == nil {
		return events, nil
	}

	var wrapped struct {
		Events []models.EventRecord `json:"events"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if wrapped.Events == nil {
			return []models.EventRecord{}, nil
		}
		return wrapped.Events, nil
	}
	return nil, faults.New(faults.ServerRejected, "unrecognized event list shape")
}
