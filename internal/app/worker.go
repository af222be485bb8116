package app

import (
	"context"
	"encoding/json"
	"time"

	"range-breakout/internal/infrastructure"
	"range-breakout/internal/model"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type streamPublisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// ReportPublisher announces finished runs on backtest.report.<SYMBOL>.
type ReportPublisher struct {
	js     streamPublisher
	logger *zap.Logger
}

func NewReportPublisher(js streamPublisher, logger *zap.Logger) *ReportPublisher {
	return &ReportPublisher{js: js, logger: logger}
}

func (p *ReportPublisher) Publish(report *model.BacktestReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		infrastructure.ReportPublish.WithLabelValues("error").Inc()
		return err
	}

	subject := infrastructure.ReportSubjectPrefix + model.NormalizeSymbol(report.Symbol)
	if _, err := p.js.Publish(subject, data); err != nil {
		infrastructure.ReportPublish.WithLabelValues("error").Inc()
		return err
	}
	infrastructure.ReportPublish.WithLabelValues("ok").Inc()
	p.logger.Debug("report published", zap.String("subject", subject), zap.String("run_id", report.RunID.String()))
	return nil
}

type runStore interface {
	Save(ctx context.Context, report *model.BacktestReport) error
}

// startPersistenceService subscribes to published reports and saves them to the database
func (a *App) startPersistenceService(ctx context.Context, saver runStore) error {
	_, err := a.JS.Subscribe(infrastructure.ReportSubjectPrefix+"*", func(m *nats.Msg) {
		handleReportMessage(ctx, m, saver, a.Logger)
	}, nats.Durable("run_saver"), nats.ManualAck(), nats.AckWait(30*time.Second))
	return err
}

func handleReportMessage(ctx context.Context, m *nats.Msg, saver runStore, logger *zap.Logger) bool {
	var report model.BacktestReport
	if err := json.Unmarshal(m.Data, &report); err != nil {
		logger.Error("failed to unmarshal report", zap.String("subject", m.Subject), zap.Error(err))
		// a poison message is dropped, not redelivered
		m.Term()
		return false
	}

	saveCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := saver.Save(saveCtx, &report); err != nil {
		logger.Error("failed to save report", zap.String("run_id", report.RunID.String()), zap.Error(err))
		m.Nak()
		return false
	}
	m.Ack()
	return true
}
