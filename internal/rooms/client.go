package rooms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
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

// Client is the resilient proxy in front of the room inventory service.
// Lookups degrade to the unknown-room sentinel on any failure. Availability
// mutations are best-effort: the error is returned for the caller to log but
// is expected and non-fatal.
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
		Name:    "room-inventory",
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

// Lookup fetches a room by ID, degrading to the sentinel record on failure.
func (c *Client) Lookup(ctx context.Context, id int64) model.Room {
	return c.resolve(ctx, fmt.Sprintf("/rooms/%d", id), "room_id", strconv.FormatInt(id, 10))
}

// LookupByNumber fetches a room by its display number.
func (c *Client) LookupByNumber(ctx context.Context, number string) model.Room {
	return c.resolve(ctx, "/rooms/number/"+url.PathEscape(number), "room_number", number)
}

func (c *Client) resolve(ctx context.Context, path, idKey, idValue string) model.Room {
	data, err := c.cb.Execute(func() (any, error) {
		return c.get(ctx, path)
	})
	if err != nil {
		c.log.Warn("Room inventory lookup degraded to sentinel",
			idKey, idValue,
			"error", err,
		)
		return model.UnknownRoom()
	}

	room, ok := data.(model.Room)
	if !ok {
		return model.UnknownRoom()
	}
	return room
}

func (c *Client) get(ctx context.Context, path string) (model.Room, error) {
	resp, err := c.conn.R().
		SetContext(ctx).
		SetResult(&model.Room{}).
		Get(path)
	if err != nil {
		return model.Room{}, fmt.Errorf("execute http request: %w", err)
	}

	// Not-found is a valid answer and must not count against the breaker.
	if resp.StatusCode() == http.StatusNotFound {
		return model.UnknownRoom(), nil
	}

	if resp.StatusCode() != http.StatusOK {
		return model.Room{}, fmt.Errorf("%d: %w", resp.StatusCode(), ErrInvalidStatusCode)
	}

	room, ok := resp.Result().(*model.Room)
	if !ok || room == nil {
		return model.UnknownRoom(), nil
	}
	return *room, nil
}

// SetAvailability flips the room's availability flag. On failure the sentinel
// record and the error are returned; callers treat it as a logged, non-fatal
// outcome.
func (c *Client) SetAvailability(ctx context.Context, id int64, available bool) (model.Room, error) {
	data, err := c.cb.Execute(func() (any, error) {
		return c.patchAvailability(ctx, id, available)
	})
	if err != nil {
		return model.UnknownRoom(), err
	}

	room, ok := data.(model.Room)
	if !ok {
		return model.UnknownRoom(), nil
	}
	return room, nil
}

func (c *Client) patchAvailability(ctx context.Context, id int64, available bool) (model.Room, error) {
	resp, err := c.conn.R().
		SetContext(ctx).
		SetQueryParam("available", strconv.FormatBool(available)).
		SetResult(&model.Room{}).
		Patch(fmt.Sprintf("/rooms/%d/availability", id))
	if err != nil {
		return model.Room{}, fmt.Errorf("execute http request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return model.Room{}, fmt.Errorf("%d: %w", resp.StatusCode(), ErrInvalidStatusCode)
	}

	room, ok := resp.Result().(*model.Room)
	if !ok || room == nil {
		return model.UnknownRoom(), nil
	}
	return *room, nil
}
