// Package feed decodes wire-format market updates arriving on a Kafka
// topic and pushes them onto the SPSC ring that feeds the book's
// apply-thread. It is the producer side of the ring: it never touches
// the book directly and never blocks waiting for ring space.
package feed

import (
	"context"
	"log"

	"lobengine/internal/metrics"
	"lobengine/ring"
	"lobengine/update"

	"github.com/IBM/sarama"
	"github.com/cockroachdb/errors"
)

// Consumer wraps a sarama consumer group, decoding each message as a
// update.Wire record and pushing it onto dst.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	dst     *ring.Ring[update.Wire]
	metrics *metrics.Registry
}

// New joins the consumer group for topic using brokers, grounded on the
// producer-side config shape in the teacher's jobs/broadcaster package.
func New(brokers []string, groupID, topic string, dst *ring.Ring[update.Wire], m *metrics.Registry) (*Consumer, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Return.Errors = true
	cfg.Version = sarama.V2_6_0_0

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "feed: join consumer group %s", groupID)
	}
	return &Consumer{group: group, topic: topic, dst: dst, metrics: m}, nil
}

// Run blocks, consuming until ctx is cancelled. It is meant to run on
// its own goroutine, separate from the book's apply-thread.
func (c *Consumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			log.Printf("feed: consumer group error: %v", err)
		}
	}()

	for {
		if err := c.group.Consume(ctx, []string{c.topic}, c); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return errors.Wrap(err, "feed: consume")
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	return c.group.Close()
}

// Setup and Cleanup satisfy sarama.ConsumerGroupHandler with no extra
// per-session state.
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim decodes each message and attempts to push it onto the
// ring. A full ring is reported via the metrics registry and the
// message is left unmarked so sarama redelivers it on the next poll,
// rather than being dropped.
func (c *Consumer) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		w, err := update.DecodeWire(msg.Value)
		if err != nil {
			c.metrics.FeedDecodeErrors.Inc()
			sess.MarkMessage(msg, "")
			continue
		}

		slot, ok := c.dst.NextWriteSlot()
		if !ok {
			c.metrics.RingFullEvents.Inc()
			return errors.Newf("feed: ring full, will retry message at offset %d", msg.Offset)
		}
		*slot = w
		c.dst.CommitWrite()

		c.metrics.RingOccupancy.Set(float64(c.dst.Size()))
		sess.MarkMessage(msg, "")
	}
	return nil
}
