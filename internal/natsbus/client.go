package natsbus

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

type Client struct {
	nc *nats.Conn
}

// Connect dials NATS with a short handshake timeout. Used only for the
// best-effort audit stream; the server runs fine without it.
func Connect(natsURL string) (*Client, error) {
	if natsURL == "" {
		return nil, fmt.Errorf("NATS_URL is required")
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("membership-backend"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{nc: nc}, nil
}

func (c *Client) NC() *nats.Conn {
	return c.nc
}

func (c *Client) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}
