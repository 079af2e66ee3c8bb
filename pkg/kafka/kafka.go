package kafka

import (
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tiltakhub/participant-api/pkg/config"
)

// NewClient returns a consumer-group client subscribed to the participant
// topics. Offsets are committed manually after each record is applied so a
// failed apply is redelivered.
func NewClient(cfg config.KafkaConfig) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.ConsumerGroup),
		kgo.ConsumeTopics(cfg.ParticipantsTopic),
		kgo.DisableAutoCommit(),
	)
}
