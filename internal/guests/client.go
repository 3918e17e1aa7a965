package guests

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"innbook/pkg/logger"
	"innbook/pkg/model"
)

var ErrInvalidStatusCode = errors.New("invalid status code")

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxFailures int
	Cooldown    time.Duration
}

// Client is the resilient proxy in front of the guest directory service.
// Lookups never fail: any transport error, non-2xx response, or open breaker
// degrades to the unknown-guest sentinel, so callers see exactly one failure
// signal (ID 0) whether the guest is missing or the directory is down.
type Client struct {
	log  *logger.Logger
	cb   *gobreaker.CircuitBreaker
	conn *resty.Client
}

func New(log *logger.Logger, cfg Config) *Client {
	conn := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "guest-directory",
		Timeout: cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.MaxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &Client{
		log:  log,
		cb:   cb,
		conn: conn,
	}
}

// Lookup fetches a guest by ID, degrading to the sentinel record on failure.
func (c *Client) Lookup(ctx context.Context, id int64) model.Guest {
	data, err := c.cb.Execute(func() (any, error) {
		return c.lookup(ctx, id)
	})
	if err != nil {
		c.log.Warn("Guest directory lookup degraded to sentinel",
			"guest_id", id,
			"error", err,
		)
		return model.UnknownGuest()
	}

	guest, ok := data.(model.Guest)
	if !ok {
		return model.UnknownGuest()
	}
	return guest
}

func (c *Client) lookup(ctx context.Context, id int64) (model.Guest, error) {
	resp, err := c.conn.R().
		SetContext(ctx).
		SetResult(&model.Guest{}).
		Get(fmt.Sprintf("/guests/%d", id))
	if err != nil {
		return model.Guest{}, fmt.Errorf("execute http request: %w", err)
	}

	// A genuine not-found is a valid answer, not a directory failure; it
	// must not count against the breaker.
	if resp.StatusCode() == http.StatusNotFound {
		return model.UnknownGuest(), nil
	}

	if resp.StatusCode() != http.StatusOK {
		return model.Guest{}, fmt.Errorf("%d: %w", resp.StatusCode(), ErrInvalidStatusCode)
	}

	guest, ok := resp.Result().(*model.Guest)
	if !ok || guest == nil {
		return model.UnknownGuest(), nil
	}
	return *guest, nil
}
