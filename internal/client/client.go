// Package client talks to the smrs backend. Each operation is a single
// round trip that sends the jar's cookies and projects one field out of the
// JSON response.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/patric-chuzhbe/smrs/internal/logger"
	"github.com/patric-chuzhbe/smrs/internal/models"
)

// ErrNetwork is returned when the request could not complete.
var ErrNetwork = errors.New("network error")

// ErrParse is returned when the response body is not the expected JSON.
var ErrParse = errors.New("parse error")

// Client is the smrs backend client.
type Client struct {
	http *resty.Client
}

type Option func(*options)

type options struct {
	jar        http.CookieJar
	httpClient *http.Client
}

// WithCookieJar sets the jar holding the session cookie. Without it resty's
// default in-memory jar is used.
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) {
		o.jar = jar
	}
}

// WithHTTPClient makes the client reuse an existing *http.Client transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, optionsProto ...Option) *Client {
	opts := &options{}
	for _, protoOption := range optionsProto {
		protoOption(opts)
	}

	var restyClient *resty.Client
	if opts.httpClient != nil {
		restyClient = resty.NewWithClient(opts.httpClient)
	} else {
		restyClient = resty.New()
	}
	if opts.jar != nil {
		restyClient.SetCookieJar(opts.jar)
	}

	restyClient.
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetLogger(logger.Log)

	return &Client{
		http: logger.WithRestyLogging(restyClient),
	}
}

// GetSession fetches the current session.
func (c *Client) GetSession(ctx context.Context) (models.Session, error) {
	response, err := c.http.R().
		SetContext(ctx).
		Get("/session")
	if err != nil {
		return nil, fmt.Errorf("in internal/client/client.go/GetSession(): error while `Get()` calling: %w: %w", ErrNetwork, err)
	}

	var body models.SessionResponse
	if err := decode(response, &body); err != nil {
		return nil, fmt.Errorf("in internal/client/client.go/GetSession(): %w", err)
	}

	return body.Session, nil
}

// PostSession replaces the session with the given one and returns what the
// server echoes back.
func (c *Client) PostSession(ctx context.Context, session models.Session) (models.Session, error) {
	response, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.SessionRequest{Session: session}).
		Post("/session")
	if err != nil {
		return nil, fmt.Errorf("in internal/client/client.go/PostSession(): error while `Post()` calling: %w: %w", ErrNetwork, err)
	}

	var body models.SessionResponse
	if err := decode(response, &body); err != nil {
		return nil, fmt.Errorf("in internal/client/client.go/PostSession(): %w", err)
	}

	return body.Session, nil
}

// ListLinks returns the links saved for the current session.
func (c *Client) ListLinks(ctx context.Context) ([]models.LinkRecord, error) {
	response, err := c.http.R().
		SetContext(ctx).
		Get("/list")
	if err != nil {
		return nil, fmt.Errorf("in internal/client/client.go/ListLinks(): error while `Get()` calling: %w: %w", ErrNetwork, err)
	}

	var body models.ListResponse
	if err := decode(response, &body); err != nil {
		return nil, fmt.Errorf("in internal/client/client.go/ListLinks(): %w", err)
	}

	return body.Links, nil
}

// Save stores url under token. A nil token is sent as null and lets the
// server pick one.
func (c *Client) Save(ctx context.Context, url string, token *models.Token) (models.Token, error) {
	response, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.SaveRequest{URL: url, Token: token}).
		Post("/save")
	if err != nil {
		return "", fmt.Errorf("in internal/client/client.go/Save(): error while `Post()` calling: %w: %w", ErrNetwork, err)
	}

	var body models.TokenResponse
	if err := decode(response, &body); err != nil {
		return "", fmt.Errorf("in internal/client/client.go/Save(): %w", err)
	}

	return body.Token, nil
}

// Forget removes the link identified by token.
func (c *Client) Forget(ctx context.Context, token models.Token) (models.Token, error) {
	response, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.ForgetRequest{Token: token}).
		Post("/forget")
	if err != nil {
		return "", fmt.Errorf("in internal/client/client.go/Forget(): error while `Post()` calling: %w: %w", ErrNetwork, err)
	}

	var body models.TokenResponse
	if err := decode(response, &body); err != nil {
		return "", fmt.Errorf("in internal/client/client.go/Forget(): %w", err)
	}

	return body.Token, nil
}

// decode treats every status code alike.
func decode(response *resty.Response, target interface{}) error {
	if err := json.Unmarshal(response.Body(), target); err != nil {
		return fmt.Errorf("error while `json.Unmarshal()` calling: %w: %w", ErrParse, err)
	}

	return nil
}
