package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vkadam-18/LVDI-2D/internal/model"
	"github.com/vkadam-18/LVDI-2D/internal/utils"
)

// ErrUnknownVersion is returned for a data version that is not configured
var ErrUnknownVersion = errors.New("unknown data version")

// TableSource loads every pivot table of a data version
type TableSource interface {
	LoadTables(ctx context.Context, version string) (*model.TableSet, error)
}

// QueryLogStore persists asks and feedback, and finds earlier intents by embedding
type QueryLogStore interface {
	LogQuery(ctx context.Context, entry *model.QueryLog) error
	// FindSimilarIntent returns nil without error when nothing is close enough
	FindSimilarIntent(ctx context.Context, embedding []float32, maxDistance float64, version string) (*model.Intent, error)
	LogFeedback(ctx context.Context, askID string, helpful bool, comment string) error
}

// AssistantOptions tunes the assistant
type AssistantOptions struct {
	DefaultVersion   string
	Versions         []string
	CacheEnabled     bool
	CacheMaxDistance float64
}

// AskEventCallback is called for streaming ask events
type AskEventCallback func(event string, data any) error

// AssistantService routes questions to the chart or text path
type AssistantService struct {
	source   TableSource
	resolver *IntentResolver
	embedder Embedder
	store    QueryLogStore
	metrics  *Metrics
	logger   *zap.Logger
	opts     AssistantOptions

	mu     sync.RWMutex
	tables map[string]*model.TableSet
}

// NewAssistantService creates a new assistant. embedder and store may be nil.
func NewAssistantService(
	source TableSource,
	resolver *IntentResolver,
	embedder Embedder,
	store QueryLogStore,
	metrics *Metrics,
	logger *zap.Logger,
	opts AssistantOptions,
) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{
		source:   source,
		resolver: resolver,
		embedder: embedder,
		store:    store,
		metrics:  metrics,
		logger:   logger,
		opts:     opts,
		tables:   make(map[string]*model.TableSet),
	}
}

// ResolveVersion normalizes a requested version, falling back to the default
func (s *AssistantService) ResolveVersion(version string) (string, error) {
	v := model.NormalizeVersion(version)
	if v == "" {
		v = model.NormalizeVersion(s.opts.DefaultVersion)
	}
	if len(s.opts.Versions) == 0 {
		return v, nil
	}
	for _, allowed := range s.opts.Versions {
		if strings.EqualFold(allowed, v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownVersion, version)
}

// Tables returns the cached table set for a version, loading it on first use
func (s *AssistantService) Tables(ctx context.Context, version string) (*model.TableSet, error) {
	s.mu.RLock()
	set, ok := s.tables[version]
	s.mu.RUnlock()
	if ok {
		return set, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.tables[version]; ok {
		return set, nil
	}

	set, err := s.source.LoadTables(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s tables: %w", version, err)
	}
	s.tables[version] = set

	oneD, twoD := set.Keys()
	s.logger.Info("📦 Loaded pivot tables",
		zap.String("version", version),
		zap.Int("tables_1d", len(oneD)),
		zap.Int("tables_2d", len(twoD)),
	)
	return set, nil
}

// Catalog describes the loaded tables of a version
func (s *AssistantService) Catalog(ctx context.Context, version string) (*model.CatalogResponse, error) {
	v, err := s.ResolveVersion(version)
	if err != nil {
		return nil, err
	}
	set, err := s.Tables(ctx, v)
	if err != nil {
		return nil, err
	}

	oneD, twoD := set.Keys()
	resp := &model.CatalogResponse{
		Version: v,
		OneD:    make([]model.TableInfo, 0, len(oneD)),
		TwoD:    make([]model.TableInfo, 0, len(twoD)),
	}
	for _, k := range oneD {
		t := set.OneD[k]
		resp.OneD = append(resp.OneD, model.TableInfo{Key: k, Columns: t.Columns, Rows: t.Len()})
	}
	for _, k := range twoD {
		t := set.TwoD[k]
		resp.TwoD = append(resp.TwoD, model.TableInfo{Key: k, Columns: t.Columns, Rows: t.Len()})
	}
	return resp, nil
}

// Ask answers a question
func (s *AssistantService) Ask(ctx context.Context, req *model.AskRequest) (*model.AskResponse, error) {
	return s.ask(ctx, req, nil)
}

// AskStream answers a question, reporting progress and model output through callback
func (s *AssistantService) AskStream(ctx context.Context, req *model.AskRequest, callback AskEventCallback) (*model.AskResponse, error) {
	return s.ask(ctx, req, callback)
}

func (s *AssistantService) ask(ctx context.Context, req *model.AskRequest, emit AskEventCallback) (*model.AskResponse, error) {
	startTime := time.Now()
	streaming := emit != nil
	if emit == nil {
		emit = func(string, any) error { return nil }
	}

	version, err := s.ResolveVersion(req.Version)
	if err != nil {
		return nil, err
	}
	tables, err := s.Tables(ctx, version)
	if err != nil {
		return nil, err
	}

	resp := &model.AskResponse{
		ID:      uuid.NewString(),
		Version: version,
	}
	if err := emit("start", map[string]any{"id": resp.ID, "version": version}); err != nil {
		return nil, err
	}

	rule := DetectIntent(req.Query)
	resp.RuleIntent = rule

	var embedding []float32
	if rule.WantsChart() {
		resp.Route = model.RouteChart
		if err := emit("routing", map[string]any{"route": resp.Route, "intent": rule}); err != nil {
			return nil, err
		}
		s.answerChart(tables, rule, version, resp)
	} else {
		resp.Route = model.RouteText
		if err := emit("routing", map[string]any{"route": resp.Route}); err != nil {
			return nil, err
		}

		var intent *model.Intent
		intent, embedding, err = s.resolveIntent(ctx, req.Query, rule, version, resp, streaming, emit)
		if err != nil {
			s.metrics.observeAsk(resp.Route, OutcomeError)
			return nil, err
		}
		resp.Intent = intent
		if err := emit("intent", intent); err != nil {
			return nil, err
		}
		s.answerText(tables, intent, version, resp)
	}

	if resp.Answer != "" {
		html, err := RenderMarkdown(resp.Answer)
		if err != nil {
			s.logger.Warn("Failed to render answer", zap.Error(err))
		}
		resp.AnswerHTML = html
	}

	resp.Took = time.Since(startTime).Milliseconds()

	outcome := OutcomeAnswered
	if resp.Kind == model.KindWarning {
		outcome = OutcomeWarning
	}
	s.metrics.observeAsk(resp.Route, outcome)

	s.logAsk(req.Query, resp, embedding)

	return resp, nil
}

// resolveIntent reads the query through the intent cache or the model
func (s *AssistantService) resolveIntent(ctx context.Context, query string, rule *model.RuleIntent, version string, resp *model.AskResponse, streaming bool, emit AskEventCallback) (*model.Intent, []float32, error) {
	var embedding []float32
	if s.embedder != nil && s.embedder.EmbeddingsEnabled() && s.store != nil {
		emb, err := s.embedder.Embed(ctx, query)
		if err != nil {
			s.logger.Warn("Failed to embed query", zap.Error(err))
		} else {
			embedding = emb
		}
	}

	if s.opts.CacheEnabled && embedding != nil {
		cached, err := s.store.FindSimilarIntent(ctx, embedding, s.opts.CacheMaxDistance, version)
		if err != nil {
			s.logger.Warn("Intent cache lookup failed", zap.Error(err))
		}
		if cached != nil && !cachedIntentFits(query, rule, cached) {
			s.logger.Debug("Cached intent does not fit query", zap.String("query", query), zap.String("year", cached.Year))
			cached = nil
		}
		s.metrics.observeCache(cached != nil)
		if cached != nil {
			resp.Route = model.RouteCache
			return cached, embedding, nil
		}
	}

	if s.resolver == nil {
		return nil, nil, ErrModelDisabled
	}

	var (
		intent *model.Intent
		err    error
	)
	if streaming {
		intent, _, err = s.resolver.ResolveStream(ctx, query, func(thinking, content string) error {
			if thinking != "" {
				return emit("thinking", map[string]any{"content": thinking})
			}
			return emit("content", map[string]any{"content": content})
		})
	} else {
		intent, _, err = s.resolver.Resolve(ctx, query)
	}
	if err != nil {
		return nil, nil, err
	}
	return intent, embedding, nil
}

// cachedIntentFits reports whether an intent logged for a similar query
// also holds for this one: same year when the query names one, and every
// filter value present in the query text
func cachedIntentFits(query string, rule *model.RuleIntent, intent *model.Intent) bool {
	if rule != nil && rule.Year != "" && rule.Year != intent.Year {
		return false
	}
	for _, fv := range intent.FilterValues.Active() {
		if !mentions(query, fv.Value) {
			return false
		}
	}
	return true
}

// mentions fuzzy-matches value against the query text: a normalized
// substring, or a run of query words as long as value (give or take one)
// scoring at least the match threshold
func mentions(query, value string) bool {
	target := utils.NormalizeLabel(value)
	if target == "" {
		return true
	}
	if strings.Contains(utils.NormalizeLabel(query), target) {
		return true
	}

	words := strings.Fields(query)
	n := len(strings.Fields(value))
	for size := max(n-1, 1); size <= n+1; size++ {
		for i := 0; i+size <= len(words); i++ {
			phrase := utils.NormalizeLabel(strings.Join(words[i:i+size], " "))
			if phrase != "" && utils.Similarity(phrase, target) >= utils.MatchThreshold {
				return true
			}
		}
	}
	return false
}

// answerChart runs the chart path; every failure becomes a warning
func (s *AssistantService) answerChart(tables *model.TableSet, rule *model.RuleIntent, version string, resp *model.AskResponse) {
	dims := rule.Dimensions

	var table *model.Table
	switch len(dims) {
	case 1:
		t, ok := tables.Lookup1D(dims[0])
		if !ok {
			setWarning(resp, fmt.Sprintf("⚠️ 1D table `%s` not available.", dims[0]))
			return
		}
		table = t
	case 2:
		t, ok := tables.Lookup2D(dims)
		if !ok {
			setWarning(resp, fmt.Sprintf("⚠️ 2D table `%s` not available.", strings.Join(dims, model.TableKeySeparator)))
			return
		}
		table = t
	default:
		setWarning(resp, fmt.Sprintf("⚠️ Detected %d dimensions. Expected 1 or 2.", len(dims)))
		return
	}

	measureCol := ResolveMeasureColumn(table.Columns, rule.Year, rule.Metric, version)
	if measureCol == "" {
		setWarning(resp, strings.TrimSpace(fmt.Sprintf("⚠️ Measure column not found for %s %s", rule.Year, rule.Metric))+".")
		return
	}

	spec, err := BuildChart(table, measureCol, rule.Chart)
	if err != nil {
		setWarning(resp, fmt.Sprintf("⚠️ Visualization error: %v", err))
		return
	}

	resp.Kind = model.KindChart
	resp.Chart = spec
}

// answerText runs the text path against the intent's table
func (s *AssistantService) answerText(tables *model.TableSet, intent *model.Intent, version string, resp *model.AskResponse) {
	dims := intent.Dimensions

	var answer model.TextAnswer
	switch len(dims) {
	case 1:
		t, ok := tables.Lookup1D(dims[0])
		if !ok {
			setWarning(resp, fmt.Sprintf("⚠️ 1D table `%s` not available.", dims[0]))
			return
		}
		answer = GenerateTextAnswer(t, intent, version)
	case 2:
		t, ok := tables.Lookup2D(dims)
		if !ok {
			setWarning(resp, fmt.Sprintf("⚠️ 2D table for `%s` is not available.", strings.Join(dims, " × ")))
			return
		}
		answer = GenerateTextAnswer2D(t, intent, version)
	default:
		setWarning(resp, fmt.Sprintf("⚠️ Detected %d dimensions. Expected 1 or 2.", len(dims)))
		return
	}

	if answer.Warning {
		setWarning(resp, answer.Text)
		return
	}
	resp.Kind = model.KindText
	resp.Answer = answer.Text
}

func setWarning(resp *model.AskResponse, text string) {
	resp.Kind = model.KindWarning
	resp.Answer = text
}

// logAsk persists the ask in the background
func (s *AssistantService) logAsk(query string, resp *model.AskResponse, embedding []float32) {
	if s.store == nil {
		return
	}

	entry := &model.QueryLog{
		ID:         resp.ID,
		Version:    resp.Version,
		Query:      query,
		Route:      resp.Route,
		Kind:       resp.Kind,
		Intent:     resp.Intent,
		Answer:     resp.Answer,
		Embedding:  embedding,
		ResponseMs: int(resp.Took),
		CreatedAt:  time.Now(),
	}

	go func() {
		if err := s.store.LogQuery(context.Background(), entry); err != nil {
			s.logger.Warn("Failed to log query", zap.String("id", entry.ID), zap.Error(err))
		}
	}()
}

// LogFeedback records whether an answer helped
func (s *AssistantService) LogFeedback(ctx context.Context, req *model.FeedbackRequest) error {
	if s.store == nil {
		return fmt.Errorf("feedback storage is not configured")
	}
	if _, err := uuid.Parse(req.AskID); err != nil {
		return fmt.Errorf("%w: %s", model.ErrAskNotFound, req.AskID)
	}
	helpful := req.Helpful != nil && *req.Helpful
	return s.store.LogFeedback(ctx, req.AskID, helpful, req.Comment)
}
