package infrastructure

import (
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	ReportStream        = "BACKTEST"
	ReportSubjectPrefix = "backtest.report."
)

func InitNATS(url string, logger *zap.Logger) (*nats.Conn, nats.JetStreamContext, error) {
	nc, err := nats.Connect(url, nats.Name("range-breakout"))
	if err != nil {
		return nil, nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	cfg := &nats.StreamConfig{
		Name:     ReportStream,
		Subjects: []string{ReportSubjectPrefix + "*"},
	}
	if _, err = js.AddStream(cfg); err != nil {
		// stream may already exist with an older subject list
		if _, err = js.UpdateStream(cfg); err != nil {
			logger.Warn("failed to create or update stream", zap.String("stream", ReportStream), zap.Error(err))
		}
	}

	return nc, js, nil
}
