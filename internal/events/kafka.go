// README: Kafka-backed transition emitter; log fallback when no brokers are configured.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaEmitter struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger
}

func NewKafkaEmitter(brokers []string, topic string, log *zap.SugaredLogger) *KafkaEmitter {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &KafkaEmitter{writer: w, log: log}
}

func (k *KafkaEmitter) Emit(e Transition) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	b, _ := json.Marshal(e)
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.ReservationID), Value: b}); err != nil {
		k.log.Warnw("transition emit failed",
			"reservation_id", e.ReservationID,
			"to_state", e.ToState,
			"error", err,
		)
	}
}

func (k *KafkaEmitter) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}

// LogEmitter writes transitions to the log only. Used in development and
// whenever Kafka is not configured.
type LogEmitter struct {
	Log *zap.SugaredLogger
}

func (l *LogEmitter) Emit(e Transition) {
	l.Log.Infow("reservation transition",
		"reservation_id", e.ReservationID,
		"vehicle_id", e.VehicleID,
		"from_state", e.FromState,
		"to_state", e.ToState,
	)
}
