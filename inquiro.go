// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package inquiro assembles the question-answering pipeline: storage,
// model provider, retrieval sources, and the stage graph, behind one
// constructor.
package inquiro

import (
	"context"
	"log/slog"

	"github.com/poiesic/inquiro/ai"
	"github.com/poiesic/inquiro/ai/openai"
	"github.com/poiesic/inquiro/core"
	"github.com/poiesic/inquiro/flow"
	"github.com/poiesic/inquiro/ingestion"
	"github.com/poiesic/inquiro/retrieval"
	"github.com/poiesic/inquiro/retrieval/index"
	"github.com/poiesic/inquiro/retrieval/tavily"
	"github.com/poiesic/inquiro/retrieval/wikipedia"
	"github.com/poiesic/inquiro/storage"
	"github.com/poiesic/inquiro/storage/badger"
)

// Pipeline owns every component of an assembled question-answering system.
type Pipeline struct {
	backend     *badger.Backend
	docRepo     storage.DocumentRepository
	sessionRepo storage.SessionRepository
	provider    ai.Provider
	runner      *flow.Runner
	logger      *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineOptions)

type pipelineOptions struct {
	aiConfig   *ai.Config
	tavilyKey  string
	userAgent  string
	traceSink  flow.TraceSink
	localIndex bool
}

// WithAIConfig sets the model provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) PipelineOption {
	return func(o *pipelineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithTavilyAPIKey enables the web search fallback. Without a key, runs
// that exhaust the authoritative source proceed with no web evidence.
func WithTavilyAPIKey(key string) PipelineOption {
	return func(o *pipelineOptions) {
		o.tavilyKey = key
	}
}

// WithUserAgent sets the user agent sent to Wikipedia.
func WithUserAgent(userAgent string) PipelineOption {
	return func(o *pipelineOptions) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithTraceSink sets the session log sink receiving stage events.
func WithTraceSink(sink flow.TraceSink) PipelineOption {
	return func(o *pipelineOptions) {
		o.traceSink = sink
	}
}

// WithLocalIndex switches the authoritative source from Wikipedia to the
// local document index populated by ingestion.
func WithLocalIndex() PipelineOption {
	return func(o *pipelineOptions) {
		o.localIndex = true
	}
}

// noWebSearcher stands in when no Tavily key is configured.
type noWebSearcher struct{}

func (noWebSearcher) Search(context.Context, string) ([]retrieval.Result, error) {
	return nil, nil
}

// NewPipeline opens storage at dbPath and assembles a ready-to-run pipeline.
func NewPipeline(dbPath string, opts ...PipelineOption) (*Pipeline, error) {
	options := &pipelineOptions{
		aiConfig:  ai.DefaultConfig(),
		userAgent: wikipedia.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := slog.Default()

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, err
	}

	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	sessionRepo, err := badger.NewSessionRepository(backend)
	if err != nil {
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		sessionRepo.Close()
		docRepo.Close()
		backend.Close()
		return nil, err
	}

	closeAll := func() {
		provider.Close()
		sessionRepo.Close()
		docRepo.Close()
		backend.Close()
	}

	var lookup retrieval.Lookup
	primaryLabel := "Wikipedia"
	if options.localIndex {
		lookup, err = index.NewLookup(docRepo, provider.Embedder())
		if err != nil {
			closeAll()
			return nil, err
		}
		primaryLabel = "Local Index"
	} else {
		lookup = wikipedia.NewLookup(options.userAgent)
	}

	var searcher retrieval.WebSearcher
	if options.tavilyKey != "" {
		searcher, err = tavily.NewSearcher(options.tavilyKey)
		if err != nil {
			closeAll()
			return nil, err
		}
	} else {
		logger.Warn("no web search API key configured; fallback retrieval disabled")
		searcher = noWebSearcher{}
	}

	runnerOpts := []flow.Option{flow.WithPrimarySourceLabel(primaryLabel)}
	if options.traceSink != nil {
		runnerOpts = append(runnerOpts, flow.WithTraceSink(options.traceSink))
	}

	runner, err := flow.NewRunner(provider.Completer(), lookup, searcher, runnerOpts...)
	if err != nil {
		closeAll()
		return nil, err
	}

	return &Pipeline{
		backend:     backend,
		docRepo:     docRepo,
		sessionRepo: sessionRepo,
		provider:    provider,
		runner:      runner,
		logger:      logger,
	}, nil
}

// Ask runs one question through the pipeline under the given session,
// persisting both turns to the session history.
func (p *Pipeline) Ask(ctx context.Context, sessionID, question string) (string, error) {
	history, err := p.sessionRepo.GetHistory(ctx, sessionID)
	if err != nil {
		return "", err
	}

	final, err := p.runner.Run(ctx, flow.State{
		SessionID:        sessionID,
		ChatHistory:      history,
		OriginalQuestion: question,
	})
	if err != nil {
		return "", err
	}

	answer := final.Answer()
	if err := p.sessionRepo.AppendTurns(ctx, sessionID,
		core.Turn{Sender: core.SenderUser, Message: question},
		core.Turn{Sender: core.SenderBot, Message: answer},
	); err != nil {
		p.logger.Error("error persisting session turns", "session", sessionID, "err", err)
	}

	return answer, nil
}

// NewIngestionPipeline creates an ingestion pipeline feeding the local
// document index. The caller must Release it when done.
func (p *Pipeline) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(p.docRepo, p.provider.Embedder(), opts...)
}

// Runner returns the assembled stage graph runner.
func (p *Pipeline) Runner() *flow.Runner {
	return p.runner
}

// DocumentRepository returns the local document index.
func (p *Pipeline) DocumentRepository() storage.DocumentRepository {
	return p.docRepo
}

// SessionRepository returns the session history store.
func (p *Pipeline) SessionRepository() storage.SessionRepository {
	return p.sessionRepo
}

// Provider returns the model provider.
func (p *Pipeline) Provider() ai.Provider {
	return p.provider
}

func (p *Pipeline) Close() error {
	// Close AI provider first
	if err := p.provider.Close(); err != nil {
		p.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := p.sessionRepo.Close(); err != nil {
		p.logger.Error("error closing session repository", "err", err)
		return err
	}
	if err := p.docRepo.Close(); err != nil {
		p.logger.Error("error closing document repository", "err", err)
		return err
	}

	// Close backend
	if err := p.backend.Close(); err != nil {
		p.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
