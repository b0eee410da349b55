package outbox

import "github.com/segmentio/kafka-go"

// NewWriter returns a producer that waits for all in-sync replicas. Topic is
// set per message by the Dispatcher.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}
