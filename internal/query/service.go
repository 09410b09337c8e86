package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dshills/docquery-mcp/internal/config"
	"github.com/dshills/docquery-mcp/internal/index"
	"github.com/dshills/docquery-mcp/internal/provider"
	"github.com/dshills/docquery-mcp/pkg/types"
)

const (
	// answerCacheSize bounds the answer cache.
	answerCacheSize = 256

	// answerCacheTTL is how long a cached answer stays fresh.
	answerCacheTTL = 5 * time.Minute

	// engineKey is the single-flight key for engine initialization.
	engineKey = "engine"
)

// retriever is the slice of the index handle the service needs.
type retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]types.RetrievedChunk, error)
	Count() int
}

type cachedAnswer struct {
	answer   *types.Answer
	cachedAt time.Time
}

// Service answers questions against the persisted index. The index
// handle is opened lazily on first use; concurrent first queries share
// one initialization, and a failed initialization is retried by the
// next query rather than cached.
type Service struct {
	cfg      *config.Config
	provider provider.Provider
	logger   *zap.Logger

	group singleflight.Group

	mu     sync.RWMutex
	engine retriever

	answers *lru.Cache[string, cachedAnswer]

	// openEngine is replaceable in tests.
	openEngine func() (retriever, error)
}

// New creates a query Service. The provider must already be constructed.
func New(cfg *config.Config, prov provider.Provider, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Service{
		cfg:      cfg,
		provider: prov,
		logger:   logger,
	}
	s.openEngine = func() (retriever, error) {
		return index.Open(index.Config{
			Dir:        cfg.IndexDir(),
			Collection: cfg.Storage.Collection,
			Compress:   cfg.Storage.Compress,
		}, prov)
	}

	if cfg.Query.UseCache {
		cache, err := lru.New[string, cachedAnswer](answerCacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating answer cache: %w", err)
		}
		s.answers = cache
	}

	return s, nil
}

// Query answers a question from the indexed documentation.
//
// The question is validated before any engine work: an empty or
// whitespace-only question returns types.ErrEmptyQuestion without
// touching the index or the provider.
func (s *Service) Query(ctx context.Context, question string) (*types.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, types.ErrEmptyQuestion
	}

	if answer, ok := s.cachedAnswer(question); ok {
		s.logger.Debug("answer cache hit")
		return answer, nil
	}

	engine, err := s.getEngine()
	if err != nil {
		return nil, err
	}

	chunks, err := engine.Retrieve(ctx, question, s.cfg.Query.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieving chunks: %w", err)
	}
	if len(chunks) == 0 {
		return &types.Answer{
			Text: "The indexed documentation contains nothing relevant to this question.",
		}, nil
	}

	text, err := s.provider.Complete(ctx, buildPrompt(question, chunks))
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	answer := &types.Answer{
		Text:    text,
		Sources: sourcePaths(chunks),
	}
	s.storeAnswer(question, answer)
	return answer, nil
}

// getEngine returns the index handle, opening it on first use. The open
// is single-flighted so concurrent first queries do one load between
// them; a failed open is not retained, so the next query retries.
func (s *Service) getEngine() (retriever, error) {
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()
	if engine != nil {
		return engine, nil
	}

	result, err, _ := s.group.Do(engineKey, func() (interface{}, error) {
		s.mu.RLock()
		existing := s.engine
		s.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		opened, err := s.openEngine()
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.engine = opened
		s.mu.Unlock()

		s.logger.Info("index loaded", zap.Int("chunks", opened.Count()))
		return opened, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(retriever), nil
}

// Reset drops the cached engine and answers so the next query reopens
// the index. Called after an ingest run replaces the index on disk.
func (s *Service) Reset() {
	s.mu.Lock()
	s.engine = nil
	s.mu.Unlock()
	if s.answers != nil {
		s.answers.Purge()
	}
}

func (s *Service) cachedAnswer(question string) (*types.Answer, bool) {
	if s.answers == nil {
		return nil, false
	}
	entry, ok := s.answers.Get(cacheKey(question))
	if !ok {
		return nil, false
	}
	if time.Since(entry.cachedAt) > answerCacheTTL {
		s.answers.Remove(cacheKey(question))
		return nil, false
	}
	return entry.answer, true
}

func (s *Service) storeAnswer(question string, answer *types.Answer) {
	if s.answers == nil {
		return
	}
	s.answers.Add(cacheKey(question), cachedAnswer{answer: answer, cachedAt: time.Now()})
}

func cacheKey(question string) string {
	return provider.ComputeHash(strings.ToLower(question))
}

// buildPrompt assembles the grounding prompt: numbered excerpts first,
// then the question, with instructions to answer only from the excerpts.
func buildPrompt(question string, chunks []types.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("You are answering a question using only the documentation excerpts below.\n")
	b.WriteString("If the excerpts do not contain the answer, say so. Cite excerpt numbers.\n\n")

	for _, chunk := range chunks {
		fmt.Fprintf(&b, "[%d] %s", chunk.ID, chunk.Path)
		if chunk.HeadingPath != "" {
			fmt.Fprintf(&b, " (%s)", chunk.HeadingPath)
		}
		b.WriteString("\n")
		b.WriteString(chunk.Content)
		b.WriteString("\n\n")
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}

// sourcePaths returns the distinct file paths behind the chunks, in
// retrieval rank order.
func sourcePaths(chunks []types.RetrievedChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	paths := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if _, ok := seen[chunk.Path]; ok {
			continue
		}
		seen[chunk.Path] = struct{}{}
		paths = append(paths, chunk.Path)
	}
	return paths
}
