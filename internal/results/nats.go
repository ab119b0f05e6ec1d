package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fyrsmithlabs/showcase/internal/project"
)

// DefaultSubject is the NATS subject results are published on.
const DefaultSubject = "showcase.results"

// ResultsMessage is the JSON payload published on every run.
type ResultsMessage struct {
	Revision    uint64            `json:"revision"`
	Count       int               `json:"count"`
	Projects    []project.Project `json:"projects"`
	PublishedAt time.Time         `json:"published_at"`
}

// NATSSink publishes result lists to a NATS subject.
type NATSSink struct {
	conn     *nats.Conn
	subject  string
	revision atomic.Uint64
}

// NewNATSSink creates a sink on an established connection.
func NewNATSSink(nc *nats.Conn, subject string) (*NATSSink, error) {
	if nc == nil {
		return nil, errors.New("nats connection cannot be nil")
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSSink{conn: nc, subject: subject}, nil
}

// Subject returns the subject results are published on.
func (s *NATSSink) Subject() string {
	return s.subject
}

// StoreResults publishes results as a ResultsMessage.
func (s *NATSSink) StoreResults(ctx context.Context, results []project.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if results == nil {
		results = []project.Project{}
	}
	msg := ResultsMessage{
		Revision:    s.revision.Add(1),
		Count:       len(results),
		Projects:    results,
		PublishedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish results to %s: %w", s.subject, err)
	}
	return nil
}
