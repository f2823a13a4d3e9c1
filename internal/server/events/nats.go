package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix is prepended to the event type to form the NATS subject.
const SubjectPrefix = "goalkeeper."

type natsConn interface {
	Publish(subj string, data []byte) error
	Drain() error
	Close()
}

// NATSPublisher publishes events as JSON on core NATS subjects.
type NATSPublisher struct {
	conn natsConn
}

// NewNATSPublisher connects to the NATS endpoint at url.
func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	opts = append([]nats.Option{nats.Name("goalkeeper-server")}, opts...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if p == nil {
		return errors.New("nil publisher")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectPrefix+e.Type, data)
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
