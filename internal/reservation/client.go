// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package reservation

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/http"
	"time"

	xlog "github.com/ManuGH/hafeeds/internal/log"
	"github.com/ManuGH/hafeeds/internal/resilience"
	"github.com/ManuGH/hafeeds/internal/upstream"
)

const (
	DefaultURL       = "https://api.previo.app/x1/hotel/searchReservations"
	DefaultTimeout   = 30 * time.Second
	DefaultDaysAhead = 30
	DefaultPageSize  = 50

	providerName = "reservations"
	termLayout   = "2006-01-02"
)

// ClientOptions configures the reservation API client.
type ClientOptions struct {
	URL        string
	Login      string
	Password   string
	HotelID    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Breaker    *resilience.CircuitBreaker
}

// Client posts search requests to the reservation API.
type Client struct {
	url      string
	login    string
	password string
	hotelID  string
	breaker  *resilience.CircuitBreaker
	http     *upstream.Client
}

// NewClient creates the client.
func NewClient(opts ClientOptions) *Client {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Breaker == nil {
		opts.Breaker = resilience.NewCircuitBreaker(providerName, 3, 5*time.Minute)
	}
	return &Client{
		url:      opts.URL,
		login:    opts.Login,
		password: opts.Password,
		hotelID:  opts.HotelID,
		breaker:  opts.Breaker,
		http:     upstream.NewClient(providerName, opts.HTTPClient, opts.Timeout),
	}
}

// HotelID returns the configured hotel.
func (c *Client) HotelID() string { return c.hotelID }

type searchRequest struct {
	XMLName  xml.Name `xml:"request"`
	Login    string   `xml:"login"`
	Password string   `xml:"password"`
	HotelID  string   `xml:"hotId"`
	From     string   `xml:"term>from"`
	To       string   `xml:"term>to"`
	Statuses []int    `xml:"statuses>cosId"`
	Offset   int      `xml:"limit>offset"`
	Limit    int      `xml:"limit>limit"`
}

// Envelope renders the search request body for the window [from, to].
func (c *Client) Envelope(from, to time.Time) ([]byte, error) {
	body, err := xml.MarshalIndent(searchRequest{
		Login:    c.login,
		Password: c.password,
		HotelID:  c.hotelID,
		From:     from.Format(termLayout),
		To:       to.Format(termLayout),
		Statuses: StatusIDs,
		Offset:   0,
		Limit:    DefaultPageSize,
	}, "", "    ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// Search fetches the reservations in [from, to]. Transport failures are
// returned as *upstream.FetchError; a body that is not XML as *ParseError.
func (c *Client) Search(ctx context.Context, from, to time.Time) ([]Record, error) {
	payload, err := c.Envelope(from, to)
	if err != nil {
		return nil, err
	}

	var body []byte
	err = c.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return &upstream.FetchError{Sentinel: upstream.ErrUpstreamUnavailable, Operation: "search reservations", Err: err}
		}
		req.Header.Set("Content-Type", "application/xml")
		body, err = c.http.Do(req, "search reservations")
		return err
	})
	if err != nil {
		return nil, err
	}

	logger := xlog.WithComponentFromContext(ctx, "reservation")
	logger.Debug().
		Str(xlog.FieldEvent, "reservation.response").
		Str(xlog.FieldHotelID, c.hotelID).
		Int("bytes", len(body)).
		Msg("reservation response received")

	return ParseResponse(body)
}
