package lsp

import (
	"context"

	"github.com/toonlang/toon-ls/async"
	"github.com/toonlang/toon-ls/errors"
	"github.com/toonlang/toon-ls/parser"
)

// Scheduler runs parse and format work on a shared worker pool. The LSP
// front end submits and awaits, so handler goroutines never parse inline and
// one expensive document cannot starve requests for the others.
type Scheduler struct {
	pool *async.Pool
}

// NewScheduler wraps a started pool.
func NewScheduler(pool *async.Pool) *Scheduler {
	return &Scheduler{pool: pool}
}

// Parse builds a snapshot for the given document revision on a worker.
func (s *Scheduler) Parse(ctx context.Context, uri string, version int32, text string, limits parser.Limits) (*Snapshot, error) {
	result, err := s.pool.Run(ctx, func(context.Context) (any, error) {
		return BuildSnapshot(uri, version, text, limits), nil
	})
	if err != nil {
		return nil, err
	}
	snap, ok := result.(*Snapshot)
	if !ok {
		return nil, errors.AssertionFailedf("parse task returned %T", result)
	}
	return snap, nil
}

// Format renders the snapshot's tree back to canonical text on a worker.
func (s *Scheduler) Format(ctx context.Context, snap *Snapshot, opts FormatOptions) (string, error) {
	result, err := s.pool.Run(ctx, func(context.Context) (any, error) {
		return FormatSnapshot(snap, opts), nil
	})
	if err != nil {
		return "", err
	}
	text, ok := result.(string)
	if !ok {
		return "", errors.AssertionFailedf("format task returned %T", result)
	}
	return text, nil
}
