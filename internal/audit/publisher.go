package audit

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

const subjectPrefix = "membership.audit."

// Publisher records successful mutations on the bus. Publishing is
// fire-and-forget: it never blocks a request, never retries, and a nil
// Publisher (no NATS configured) silently drops everything.
type Publisher struct {
	nc *nats.Conn
}

func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc}
}

func (p *Publisher) Record(event Event) {
	if p == nil || p.nc == nil {
		return
	}

	event.V = 1
	if event.TS == 0 {
		event.TS = time.Now().UnixMilli()
	}

	data, err := msgpack.Marshal(event)
	if err != nil {
		logrus.WithError(err).Warn("audit: encode event")
		return
	}

	if err := p.nc.Publish(subjectPrefix+event.Resource, data); err != nil {
		logrus.WithError(err).Warn("audit: publish event")
	}
}
