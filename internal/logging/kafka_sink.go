package logging

import (
	"context"
	"crypto/tls"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// KafkaSink publishes every event a Sink logs to a Kafka topic, for
// out-of-process observation of a running simulation. It is the producer
// side of the same kgo.Client the teacher builds as a consumer in
// internal/kafka.StateConsumer — same option set (seed brokers, client id,
// TLS/SASL), opposite direction.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *zap.Logger
}

func NewKafkaSink(brokers []string, topic, clientID string, tlsCfg *tls.Config, saslMech sasl.Mechanism, logger *zap.Logger) (*KafkaSink, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
	}
	if tlsCfg != nil {
		opts = append(opts, kgo.DialTLSConfig(tlsCfg))
	}
	if saslMech != nil {
		opts = append(opts, kgo.SASL(saslMech))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	return &KafkaSink{client: client, topic: topic, logger: logger}, nil
}

func (k *KafkaSink) Close() {
	k.client.Close()
}

// Core returns a zapcore.Core that publishes every encoded log entry as one
// Kafka record, for tee-ing alongside a Sink's primary stderr output via
// zapcore.NewTee.
func (k *KafkaSink) Core(enc zapcore.Encoder, level zapcore.LevelEnabler) zapcore.Core {
	return &kafkaCore{sink: k, enc: enc, level: level}
}

type kafkaCore struct {
	sink  *KafkaSink
	enc   zapcore.Encoder
	level zapcore.LevelEnabler
	fields []zapcore.Field
}

func (c *kafkaCore) Enabled(lvl zapcore.Level) bool { return c.level.Enabled(lvl) }

func (c *kafkaCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &kafkaCore{sink: c.sink, enc: c.enc.Clone(), level: c.level}
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	for _, f := range fields {
		f.AddTo(clone.enc)
	}
	return clone
}

func (c *kafkaCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *kafkaCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	payload := append([]byte(nil), buf.Bytes()...)
	buf.Free()
	c.sink.client.Produce(context.Background(), &kgo.Record{Topic: c.sink.topic, Value: payload}, func(_ *kgo.Record, err error) {
		if err != nil {
			c.sink.logger.Error("kafka sink: produce failed", zap.Error(err))
		}
	})
	return nil
}

func (c *kafkaCore) Sync() error {
	return c.sink.client.Flush(context.Background())
}
