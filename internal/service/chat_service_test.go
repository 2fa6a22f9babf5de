package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mba-counselor/internal/models"
	"mba-counselor/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	hits    []models.SearchHit
	errs    []error // consumed one per call, nil-padded
	calls   int
	pingErr error
}

func (s *fakeStore) SearchSimilar(context.Context, *models.SimilarityRequest) ([]models.SearchHit, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return s.hits, nil
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

type fakeTurnStore struct {
	saved   []models.ConversationTurn
	deleted []uuid.UUID
}

func (s *fakeTurnStore) SaveTurn(_ context.Context, turn *models.ConversationTurn, _ models.PreferenceSet) error {
	s.saved = append(s.saved, *turn)
	return nil
}

func (s *fakeTurnStore) DeleteBySession(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func newTestChatService(embedder Embedder, store SimilarityStore, turns TurnStore, gen Generator) *ChatService {
	cfg := &config.GigaChatConfig{Timeout: 100 * time.Millisecond}
	log := testLogger()
	return NewChatService(
		NewPreferenceService(gen, log),
		NewPlannerService(embedder, testRecommendConfig(), log),
		NewRankingService(testRecommendConfig(), log),
		NewComposerService(),
		store,
		turns,
		gen,
		cfg,
		log,
	)
}

func newTestSession() *Session {
	return &Session{ID: uuid.New(), CreatedAt: time.Now(), LastActive: time.Now()}
}

func TestChatCasualMessageSkipsPipeline(t *testing.T) {
	store := &fakeStore{}
	turns := &fakeTurnStore{}
	svc := newTestChatService(&fakeEmbedder{vector: []float32{1}}, store, turns, &fakeGenerator{err: errors.New("should not matter")})
	session := newTestSession()

	resp, err := svc.Chat(context.Background(), session, "hi!")
	require.NoError(t, err)

	assert.Zero(t, store.calls, "small talk must not hit the similarity store")
	assert.NotEmpty(t, resp.Response)
	assert.False(t, resp.HasRecommendations)
	assert.Len(t, session.History, 1)
	assert.Len(t, turns.saved, 1)
}

func TestChatTurnRefreshesSessionActivity(t *testing.T) {
	svc := newTestChatService(&fakeEmbedder{vector: []float32{1}}, &fakeStore{}, &fakeTurnStore{}, &fakeGenerator{err: errors.New("down")})
	session := newTestSession()
	session.LastActive = time.Now().Add(-time.Hour)

	_, err := svc.Chat(context.Background(), session, "hello")
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now(), session.LastActive, time.Minute, "a turn is what keeps a session alive")
}

func TestChatCasualReplyIsStable(t *testing.T) {
	svc := newTestChatService(&fakeEmbedder{vector: []float32{1}}, &fakeStore{}, &fakeTurnStore{}, &fakeGenerator{err: errors.New("down")})

	a, err := svc.Chat(context.Background(), newTestSession(), "hello")
	require.NoError(t, err)
	b, err := svc.Chat(context.Background(), newTestSession(), "hello")
	require.NoError(t, err)

	assert.Equal(t, a.Response, b.Response)
}

func TestChatHappyPath(t *testing.T) {
	store := &fakeStore{hits: []models.SearchHit{
		{University: models.University{ID: 1, Name: "Amity University", Specialization: "Finance", FeesPerSemester: 30000}, ContentType: models.ContentTypeWebpage, Similarity: 0.9},
		{University: models.University{ID: 1, Name: "Amity University", Specialization: "Finance", FeesPerSemester: 30000}, ContentType: models.ContentTypeInfo, Similarity: 0.85},
		{University: models.University{ID: 2, Name: "Manipal University", FeesPerSemester: 55000}, ContentType: models.ContentTypeWebpage, Similarity: 0.8},
	}}
	turns := &fakeTurnStore{}
	svc := newTestChatService(&fakeEmbedder{vector: []float32{1}}, store, turns, &fakeGenerator{err: errors.New("llm down")})
	session := newTestSession()

	resp, err := svc.Chat(context.Background(), session, "I want an affordable finance MBA")
	require.NoError(t, err)

	require.Len(t, resp.UniversityCards, 2, "duplicate university hits collapse into one card")
	assert.Equal(t, "Amity University", resp.UniversityCards[0].Name)
	assert.True(t, resp.HasRecommendations)
	assert.Contains(t, resp.Response, "Amity University")

	require.NotNil(t, resp.Preferences)
	assert.Equal(t, "finance", resp.Preferences.Specialization)
	assert.Equal(t, "finance", session.Preferences.Specialization, "merged preferences commit to the session")

	require.Len(t, session.History, 1)
	assert.False(t, session.History[0].Failed)
	assert.Len(t, turns.saved, 1)
}

func TestChatTimeoutDegradesGracefully(t *testing.T) {
	turns := &fakeTurnStore{}
	embedder := &fakeEmbedder{err: context.DeadlineExceeded}
	store := &fakeStore{}
	svc := newTestChatService(embedder, store, turns, &fakeGenerator{err: errors.New("down")})
	session := newTestSession()

	resp, err := svc.Chat(context.Background(), session, "finance mba under 40000")
	require.NoError(t, err, "a timeout is answered in-band, not surfaced as a transport error")

	assert.Equal(t, apologyReply, resp.Response)
	assert.False(t, resp.HasRecommendations)
	assert.Empty(t, resp.UniversityCards)
	assert.Nil(t, resp.Preferences)

	assert.True(t, session.Preferences.IsEmpty(), "a failed turn must not mutate the preference set")
	require.Len(t, session.History, 1)
	assert.True(t, session.History[0].Failed)
	require.Len(t, turns.saved, 1)
	assert.True(t, turns.saved[0].Failed)
}

func TestChatRetriesOnceThenUnavailable(t *testing.T) {
	store := &fakeStore{errs: []error{errors.New("conn refused"), errors.New("conn refused")}}
	svc := newTestChatService(&fakeEmbedder{vector: []float32{1}}, store, &fakeTurnStore{}, &fakeGenerator{err: errors.New("down")})
	session := newTestSession()

	_, err := svc.Chat(context.Background(), session, "finance mba")

	assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
	assert.Equal(t, 2, store.calls, "non-timeout failures get exactly one retry")
	assert.True(t, session.Preferences.IsEmpty())
}

func TestChatRetrySucceeds(t *testing.T) {
	store := &fakeStore{
		errs: []error{errors.New("transient"), nil},
		hits: []models.SearchHit{
			{University: models.University{ID: 1, Name: "Jain University"}, ContentType: models.ContentTypeWebpage, Similarity: 0.8},
		},
	}
	svc := newTestChatService(&fakeEmbedder{vector: []float32{1}}, store, &fakeTurnStore{}, &fakeGenerator{err: errors.New("down")})

	resp, err := svc.Chat(context.Background(), newTestSession(), "mba programs")
	require.NoError(t, err)

	assert.Equal(t, 2, store.calls)
	assert.True(t, resp.HasRecommendations)
}

func TestChatNoMatchesAsksForMore(t *testing.T) {
	svc := newTestChatService(&fakeEmbedder{vector: []float32{1}}, &fakeStore{}, &fakeTurnStore{}, &fakeGenerator{err: errors.New("down")})

	resp, err := svc.Chat(context.Background(), newTestSession(), "something unrelated entirely")
	require.NoError(t, err)

	assert.False(t, resp.HasRecommendations)
	assert.Empty(t, resp.UniversityCards)
	assert.NotEmpty(t, resp.Response)
}

func TestChatCounselorVoicePolish(t *testing.T) {
	store := &fakeStore{hits: []models.SearchHit{
		{University: models.University{ID: 1, Name: "Jain University"}, ContentType: models.ContentTypeWebpage, Similarity: 0.8},
	}}
	gen := &fakeGenerator{response: "Jain University looks like a **strong fit** for you. Want to refine further?"}
	svc := newTestChatService(&fakeEmbedder{vector: []float32{1}}, store, &fakeTurnStore{}, gen)

	resp, err := svc.Chat(context.Background(), newTestSession(), "mba programs please")
	require.NoError(t, err)

	assert.Contains(t, resp.Response, "Jain University")
	assert.NotContains(t, resp.Response, "**", "markdown from the model is normalized away")
}
