package randomuser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"user-table-service/internal/usecase/record"
	"user-table-service/pkg/logger"
)

// DefaultURL is the public random-user endpoint.
const DefaultURL = "https://randomuser.me/api/"

const maxErrorBody = 512

var tracer = otel.Tracer("user-table-service/internal/adapter/randomuser")

// response mirrors the subset of the randomuser.me payload that is used.
type response struct {
	Results []struct {
		Login struct {
			UUID string `json:"uuid"`
		} `json:"login"`
		Name struct {
			First string `json:"first"`
			Last  string `json:"last"`
		} `json:"name"`
		Email string `json:"email"`
		DOB   struct {
			Date string `json:"date"`
		} `json:"dob"`
	} `json:"results"`
}

// Client fetches sample identities from the random-user API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

var _ record.Fetcher = (*Client)(nil)

// NewClient creates a random-user client. An empty baseURL selects DefaultURL.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *Client) buildURL(count int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid random-user url %q: %w", c.baseURL, err)
	}
	q := u.Query()
	q.Set("results", strconv.Itoa(count))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchIdentities requests count identities in one call.
func (c *Client) FetchIdentities(ctx context.Context, count int) ([]record.Identity, error) {
	ctx, span := tracer.Start(ctx, "randomuser.FetchIdentities")
	defer span.End()
	span.SetAttributes(attribute.Int("randomuser.count", count))

	log := logger.WithContext(ctx, c.log)

	endpoint, err := c.buildURL(count)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("request random users: %w", err)
	}
	defer res.Body.Close()

	log.Debug("random-user response",
		zap.String("url", endpoint),
		zap.Int("status", res.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		err := fmt.Errorf("random-user api returned %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
		span.SetStatus(codes.Error, "unexpected status")
		return nil, err
	}

	var payload response
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decode random users: %w", err)
	}

	out := make([]record.Identity, 0, len(payload.Results))
	for _, r := range payload.Results {
		out = append(out, record.Identity{
			UUID:      r.Login.UUID,
			FirstName: r.Name.First,
			LastName:  r.Name.Last,
			Email:     r.Email,
			DOB:       r.DOB.Date,
		})
	}

	log.Info("fetched random users", zap.Int("requested", count), zap.Int("received", len(out)))
	return out, nil
}
