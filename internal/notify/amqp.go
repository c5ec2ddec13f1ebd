package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// AMQPQueue publishes jobs to a durable RabbitMQ queue. A separate consumer
// process drains it with Consume.
type AMQPQueue struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	log          *zap.SugaredLogger

	mu sync.Mutex
}

// NewAMQPQueue connects to the broker and declares the exchange, queue and binding.
func NewAMQPQueue(url, exchangeName, queueName string, log *zap.SugaredLogger) (*AMQPQueue, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q := &AMQPQueue{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		log:          log,
	}
	if err := q.setup(); err != nil {
		q.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return q, nil
}

func (q *AMQPQueue) setup() error {
	err := q.channel.ExchangeDeclare(
		q.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = q.channel.QueueDeclare(
		q.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name on a direct exchange
	if err := q.channel.QueueBind(q.queueName, q.queueName, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Enqueue implements Queue.
func (q *AMQPQueue) Enqueue(ctx context.Context, job Job) error {
	body, err := job.Encode()
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	q.mu.Lock()
	defer q.mu.Unlock()
	err = q.channel.PublishWithContext(
		ctx,
		q.exchangeName, // exchange
		q.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Type:         string(job.Kind),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	q.log.Debugw("published notification job", "kind", job.Kind, "queue", q.queueName)
	return nil
}

// Consume delivers queued jobs to handler until ctx is cancelled. Successful
// jobs are acked. A transient failure is requeued once; any other failure drops
// the message.
func (q *AMQPQueue) Consume(ctx context.Context, handler Handler) error {
	msgs, err := q.channel.Consume(
		q.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	q.log.Infow("consuming notification jobs", "queue", q.queueName)

	for {
		select {
		case <-ctx.Done():
			q.log.Infow("stopping notification consumer", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			q.settle(delivery, handleDelivery(ctx, delivery.Body, delivery.Redelivered, handler, q.log))
		}
	}
}

func (q *AMQPQueue) settle(d amqp091.Delivery, outcome deliveryOutcome) {
	var err error
	switch outcome {
	case outcomeAck:
		err = d.Ack(false)
	case outcomeRequeue:
		err = d.Nack(false, true)
	case outcomeDrop:
		err = d.Nack(false, false)
	}
	if err != nil {
		q.log.Errorw("failed to settle delivery", "error", err)
	}
}

// Close implements Queue.
func (q *AMQPQueue) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

type deliveryOutcome int

const (
	outcomeAck deliveryOutcome = iota
	outcomeRequeue
	outcomeDrop
)

// handleDelivery decides how a delivery is settled. A job is requeued at most
// once: permanent failures and failures of a redelivered job are dropped.
func handleDelivery(ctx context.Context, body []byte, redelivered bool, handler Handler, log *zap.SugaredLogger) (outcome deliveryOutcome) {
	job, err := DecodeJob(body)
	if err != nil {
		log.Errorw("dropping malformed notification job", "error", err)
		return outcomeDrop
	}

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("notification handler panicked", "kind", job.Kind, "panic", r)
			outcome = outcomeDrop
		}
	}()

	if err := handler(ctx, job); err != nil {
		if IsPermanent(err) || redelivered {
			log.Errorw("notification job failed, dropping", "kind", job.Kind, "user_id", job.Recipient.UserID, "redelivered", redelivered, "error", err)
			return outcomeDrop
		}
		log.Warnw("notification job failed, requeueing once", "kind", job.Kind, "user_id", job.Recipient.UserID, "error", err)
		return outcomeRequeue
	}
	return outcomeAck
}
