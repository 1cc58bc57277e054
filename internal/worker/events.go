package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/nullforge/queuectl/internal/jobqueue"
)

// RabbitEventPublisher fans job-lifecycle events out to a fanout exchange
// for observability/integration — a side channel, not the job transport:
// the Job Repository stays this system's single source of truth (spec §9
// Open Question 3). Grounded on the teacher's
// internal/store/rabbitmq/publisher.go declare-then-publish shape.
type RabbitEventPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// JobEvent is the payload published after every settle/DLQ move.
type JobEvent struct {
	JobID     string         `json:"job_id"`
	State     jobqueue.State `json:"state"`
	Attempts  int            `json:"attempts"`
	Timestamp string         `json:"timestamp"`
}

// NewRabbitEventPublisher dials url and declares a durable fanout exchange
// named exchange. Returns nil, err if the broker is unreachable — callers
// should treat a publisher as optional and fall back to a no-op.
func NewRabbitEventPublisher(url, exchange string) (*RabbitEventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &RabbitEventPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Close releases the channel and connection.
func (p *RabbitEventPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Publish fires a JobEvent; failures are logged, not propagated, since a
// dropped notification must never affect job settlement.
func (p *RabbitEventPublisher) Publish(ctx context.Context, jobID string, state jobqueue.State, attempts int) {
	body, err := json.Marshal(JobEvent{
		JobID:     jobID,
		State:     state,
		Attempts:  attempts,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("events: marshal job=%s error: %v", jobID, err)
		return
	}

	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(cctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
	if err != nil {
		log.Printf("events: publish job=%s error: %v", jobID, err)
	}
}
