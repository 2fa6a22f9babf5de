package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mba-counselor/internal/dto"
	"mba-counselor/internal/models"
	"mba-counselor/pkg/config"
	"mba-counselor/pkg/textfmt"

	"go.uber.org/zap"
)

const apologyReply = "I'm sorry, I'm having trouble reaching my knowledge base right now. Please try again in a moment."

// ChatService runs the pipeline for one inbound message: preference
// extraction, query planning, similarity search, ranking, composition.
// Each turn executes as one synchronous unit of work; the embedding and
// store calls are the only suspension points and both are bounded by the
// upstream timeout.
type ChatService struct {
	prefs     *PreferenceService
	planner   *PlannerService
	ranker    *RankingService
	composer  *ComposerService
	store     SimilarityStore
	turns     TurnStore
	generator Generator
	timeout   time.Duration
	logger    *zap.Logger
}

func NewChatService(
	prefs *PreferenceService,
	planner *PlannerService,
	ranker *RankingService,
	composer *ComposerService,
	store SimilarityStore,
	turns TurnStore,
	generator Generator,
	cfg *config.GigaChatConfig,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		prefs:     prefs,
		planner:   planner,
		ranker:    ranker,
		composer:  composer,
		store:     store,
		turns:     turns,
		generator: generator,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

// Chat processes one user message against a session and returns the
// structured response. Turns within a session apply in arrival order:
// the session lock holds for the whole pipeline.
func (s *ChatService) Chat(ctx context.Context, session *Session, message string) (*dto.ChatResponse, error) {
	session.Lock()
	defer session.Unlock()
	session.LastActive = time.Now()

	message = strings.TrimSpace(message)

	if isCasualMessage(message) {
		reply := casualReply(message)
		s.commitTurn(ctx, session, message, reply, false)
		return s.response(session, reply, nil, nil), nil
	}

	// Extract first; the merge only commits after the upstream calls
	// succeed so a failed turn leaves the preference set untouched.
	extracted := s.prefs.Extract(ctx, message, session.History)
	merged := session.Preferences
	merged.Merge(extracted)

	req, err := withRetry(ctx, s.timeout, func(callCtx context.Context) (*models.SimilarityRequest, error) {
		return s.planner.Plan(callCtx, message, merged)
	})
	if err != nil {
		return s.degraded(ctx, session, message, err)
	}

	hits, err := withRetry(ctx, s.timeout, func(callCtx context.Context) ([]models.SearchHit, error) {
		return s.store.SearchSimilar(callCtx, req)
	})
	if err != nil {
		return s.degraded(ctx, session, message, err)
	}

	matches := s.ranker.Rank(hits, merged)
	text, cards := s.composer.Compose(matches, merged, session.History)
	text = s.counselorVoice(ctx, message, merged, matches, text)

	session.Preferences = merged
	s.commitTurn(ctx, session, message, text, false)

	s.logger.Info("Chat turn completed",
		zap.String("session_id", session.ID.String()),
		zap.Int("raw_hits", len(hits)),
		zap.Int("cards", len(cards)),
	)

	// copy, the session can change once the lock is released
	var prefsOut *models.PreferenceSet
	if !session.Preferences.IsEmpty() {
		snapshot := session.Preferences
		prefsOut = &snapshot
	}
	return s.response(session, text, prefsOut, cards), nil
}

// withRetry applies the timeout budget and retries non-timeout upstream
// failures exactly once before surfacing them as unavailable.
func withRetry[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	run := func() (T, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return call(callCtx)
	}

	result, err := run()
	if err == nil {
		return result, nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		var zero T
		return zero, fmt.Errorf("%w: %s", models.ErrUpstreamTimeout, err)
	}

	result, err = run()
	if err == nil {
		return result, nil
	}
	var zero T
	if errors.Is(err, context.DeadlineExceeded) {
		return zero, fmt.Errorf("%w: %s", models.ErrUpstreamTimeout, err)
	}
	return zero, fmt.Errorf("%w: %s", models.ErrUpstreamUnavailable, err)
}

// degraded produces the user-visible reply for upstream failures.
// Session preference state stays unchanged; the failed turn is recorded
// with an error marker for audit only. Unavailability propagates so the
// handler can surface the distinguishable offline status.
func (s *ChatService) degraded(ctx context.Context, session *Session, message string, err error) (*dto.ChatResponse, error) {
	s.logger.Error("Upstream failure during chat turn",
		zap.String("session_id", session.ID.String()),
		zap.Error(err),
	)

	s.commitTurn(ctx, session, message, apologyReply, true)

	if errors.Is(err, models.ErrUpstreamUnavailable) {
		return nil, err
	}
	return s.response(session, apologyReply, nil, nil), nil
}

// counselorVoice asks the LLM to rephrase the composed reply in the
// counselor persona. Best-effort: on any failure the composed text is
// returned unchanged.
func (s *ChatService) counselorVoice(ctx context.Context, message string, prefs models.PreferenceSet, matches []models.RankedMatch, composed string) string {
	var names []string
	for _, m := range matches {
		names = append(names, m.University.Name)
	}

	prompt := fmt.Sprintf(`The student wrote: "%s"

A draft reply has been prepared: "%s"

Rewrite the draft in your own counselor voice. Keep it to two or three sentences, keep every university name exactly as given (%s), do not add universities, fees or ratings, and end by inviting the student to refine their preferences. Return only the rewritten reply.`,
		message, composed, strings.Join(names, ", "))

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	polished, err := s.generator.Generate(callCtx, prompt)
	if err != nil || polished == "" {
		return composed
	}
	return textfmt.Normalize(polished)
}

// commitTurn appends the turn to the in-memory history and persists it
// best-effort for context and audit.
func (s *ChatService) commitTurn(ctx context.Context, session *Session, userMessage, botResponse string, failed bool) {
	turn := models.ConversationTurn{
		SessionID:   session.ID,
		UserMessage: sanitizeUTF8(userMessage),
		BotResponse: sanitizeUTF8(botResponse),
		Failed:      failed,
		CreatedAt:   time.Now(),
	}
	session.History = append(session.History, turn)

	if err := s.turns.SaveTurn(ctx, &turn, session.Preferences); err != nil {
		s.logger.Warn("Failed to persist conversation turn", zap.Error(err))
	}
}

func (s *ChatService) response(session *Session, text string, prefs *models.PreferenceSet, cards []dto.UniversityCard) *dto.ChatResponse {
	if cards == nil {
		cards = []dto.UniversityCard{}
	}
	return &dto.ChatResponse{
		SessionID:          session.ID.String(),
		Response:           text,
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
		Preferences:        prefs,
		UniversityCards:    cards,
		HasRecommendations: len(cards) > 0,
	}
}
