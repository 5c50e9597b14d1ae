// Package service orchestrates statement parsing: file gating and
// decoding, header resolution, record building, validation and export.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fiscalgo/vatledger/internal/domain/statement/ledger"
	"github.com/fiscalgo/vatledger/internal/domain/statement/reader"
	"github.com/fiscalgo/vatledger/internal/domain/statement/sniffer"
	"github.com/fiscalgo/vatledger/internal/domain/statement/vattext"
	"github.com/fiscalgo/vatledger/pkg/config"
	"github.com/fiscalgo/vatledger/pkg/observability"
)

// Payload is the consumer-facing export for downstream accounting
// systems.
type Payload struct {
	Operations  []ledger.Transaction `json:"operations"`
	Totals      ledger.Totals        `json:"totals"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// StatementService runs one synchronous parse pass per file. Each run is
// independent and produces a fresh transaction set; nothing is retried.
type StatementService struct {
	logger        *slog.Logger
	tracer        trace.Tracer
	extractor     *vattext.Extractor
	limits        ledger.Limits
	preambleDepth int
	now           func() time.Time
}

// New creates a statement service. A nil config selects the engine
// defaults.
func New(logger *slog.Logger, cfg *config.Config) *StatementService {
	if logger == nil {
		logger = slog.Default()
	}
	engine := config.DefaultEngine()
	if cfg != nil {
		engine = cfg.Engine
	}
	return &StatementService{
		logger:    logger,
		tracer:    otel.Tracer("vatledger/statement"),
		extractor: vattext.NewWindowed(engine.TextScanWindow),
		limits: ledger.Limits{
			MinYear:            engine.MinYear,
			AmountCeiling:      engine.AmountCeiling,
			CounterpartyMinLen: engine.CounterpartyMinLen,
			CounterpartyMaxLen: engine.CounterpartyMaxLen,
		},
		preambleDepth: engine.PreambleScanDepth,
		now:           time.Now,
	}
}

// ParseFile gates, decodes and parses an uploaded statement. A rejected
// type, unreadable bytes or an empty sheet surface once as a terminal
// error with no partial output.
func (s *StatementService) ParseFile(ctx context.Context, data []byte, filename string) ([]ledger.Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "StatementService.ParseFile")
	defer span.End()
	span.SetAttributes(
		attribute.String("statement.file", filename),
		attribute.Int("statement.bytes", len(data)),
	)

	kind, err := reader.Kind(filename, data)
	if err != nil {
		observability.FilesParsed.WithLabelValues("unknown", "rejected").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("statement rejected", "file", filename, "error", err)
		return nil, err
	}

	rows, err := reader.Decode(filename, data)
	if err != nil {
		observability.FilesParsed.WithLabelValues(string(kind), "failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("statement decode failed", "file", filename, "kind", kind, "error", err)
		return nil, err
	}

	txs := s.ParseStatement(ctx, rows, filename)
	observability.FilesParsed.WithLabelValues(string(kind), "ok").Inc()
	span.SetStatus(codes.Ok, "ok")
	return txs, nil
}

// ParseStatement normalizes raw rows into canonical transactions. It is
// pure given its inputs: the same rows and source name always yield the
// same set, ids included.
func (s *StatementService) ParseStatement(ctx context.Context, rows []reader.RawRow, sourceName string) []ledger.Transaction {
	_, span := s.tracer.Start(ctx, "StatementService.ParseStatement")
	defer span.End()
	start := time.Now()

	if len(rows) == 0 {
		return nil
	}

	headerIdx := sniffer.FindHeader(rows, s.preambleDepth)
	roles := sniffer.ResolveColumns(rows[headerIdx])
	builder := ledger.NewBuilder(sourceName, roles, s.extractor)
	now := s.now()

	var txs []ledger.Transaction
	var skipped, flagged int
	for i := headerIdx + 1; i < len(rows); i++ {
		tx, ok := builder.Build(i, rows[i])
		if !ok {
			skipped++
			observability.RowsProcessed.WithLabelValues(observability.RowOutcomeSkipped).Inc()
			continue
		}
		tx.Violations = ledger.Validate(&tx, now, s.limits)
		if tx.Valid() {
			observability.RowsProcessed.WithLabelValues(observability.RowOutcomeValid).Inc()
		} else {
			flagged++
			observability.RowsProcessed.WithLabelValues(observability.RowOutcomeFlagged).Inc()
		}
		txs = append(txs, tx)
	}

	observability.ParseDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("statement.rows", len(rows)),
		attribute.Int("statement.transactions", len(txs)),
		attribute.Int("statement.flagged", flagged),
	)
	s.logger.Info("statement parsed",
		"source", sourceName,
		"rows", len(rows),
		"header_row", headerIdx,
		"transactions", len(txs),
		"flagged", flagged,
		"skipped", skipped,
	)
	return txs
}

// Totals recomputes the aggregate VAT figures for a transaction set.
func (s *StatementService) Totals(txs []ledger.Transaction) ledger.Totals {
	return ledger.ComputeTotals(txs)
}

// Monthly recomputes the month-bucketed net VAT series.
func (s *StatementService) Monthly(txs []ledger.Transaction) []ledger.MonthlyBucket {
	return ledger.Monthly(txs)
}

// Export assembles the handoff payload for downstream consumers.
func (s *StatementService) Export(txs []ledger.Transaction) Payload {
	return Payload{
		Operations:  txs,
		Totals:      ledger.ComputeTotals(txs),
		GeneratedAt: s.now(),
	}
}
