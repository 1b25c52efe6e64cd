package reading

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory Store for pipeline tests.
type memStore struct {
	mu      sync.Mutex
	records map[string]CachedRecord
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]CachedRecord)}
}

func (s *memStore) Put(_ context.Context, id string, result ProcessingResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.records[id] = CachedRecord{ID: id, Timestamp: time.Now(), Data: result}
	return nil
}

func (s *memStore) Get(_ context.Context, id string) (CachedRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	return record, ok, nil
}

func (s *memStore) ListAll(_ context.Context) ([]CachedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CachedRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// fakeGateway counts calls and returns canned stage results.
type fakeGateway struct {
	mu sync.Mutex

	transcribeCalls int
	solveCalls      int
	suggestCalls    int
	speechCalls     int

	transcript    Transcript
	transcribeErr error
	solutions     []SolutionItem
	solveErr      error
	topics        []RelatedTopic
	suggestErr    error
	audio         Audio
	speechErr     error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		transcript: Transcript{
			DisplayScript: "# Homework\n\nBalance: 2H2 + O2 -> 2H2O",
			ReadingScript: "Homework. Balance: two H two plus O two yields two H two O.",
		},
		solutions: []SolutionItem{{
			Question:        "Balance 2H2 + O2 -> 2H2O",
			QuestionReading: "Balance two H two plus O two",
			Solution:        "Already balanced.",
			SolutionReading: "The equation is already balanced.",
		}},
		topics: []RelatedTopic{
			{Title: "Stoichiometry", SearchQuery: "stoichiometry for beginners"},
		},
		audio: Audio{MIMEType: "audio/wav", Data: []byte("RIFF....")},
	}
}

func (g *fakeGateway) Transcribe(_ context.Context, _ Input) (Transcript, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transcribeCalls++
	return g.transcript, g.transcribeErr
}

func (g *fakeGateway) Solve(_ context.Context, _ string, _ Input) ([]SolutionItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.solveCalls++
	return g.solutions, g.solveErr
}

func (g *fakeGateway) SuggestRelatedTopics(_ context.Context, _ string) ([]RelatedTopic, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.suggestCalls++
	return g.topics, g.suggestErr
}

func (g *fakeGateway) SynthesizeSpeech(_ context.Context, _ string) (Audio, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.speechCalls++
	return g.audio, g.speechErr
}

func (g *fakeGateway) totalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.transcribeCalls + g.solveCalls + g.suggestCalls + g.speechCalls
}

func newTestOrchestrator(store Store, gw Gateway) *Orchestrator {
	return NewOrchestrator(store, gw, Options{RelatedTopicLimit: 3}, zap.NewNop())
}

func TestProcessRejectsEmptySubmission(t *testing.T) {
	gw := newFakeGateway()
	orch := newTestOrchestrator(newMemStore(), gw)

	_, err := orch.Process(context.Background(), Input{})
	require.ErrorIs(t, err, ErrInputRejected)
	assert.Zero(t, gw.totalCalls(), "an empty submission never reaches the gateway")
}

func TestProcessGeneratesAndPersists(t *testing.T) {
	gw := newFakeGateway()
	store := newMemStore()
	orch := newTestOrchestrator(store, gw)

	input := Input{Text: "2H2 + O2 -> 2H2O"}
	outcome, err := orch.Process(context.Background(), input)
	require.NoError(t, err)

	assert.False(t, outcome.WasCacheHit)
	assert.True(t, outcome.Persisted)
	assert.Equal(t, Fingerprint(input.ContentBytes()), outcome.Record.ID)
	assert.Equal(t, gw.transcript.DisplayScript, outcome.Record.Data.Script)
	assert.Equal(t, gw.transcript.ReadingScript, outcome.Record.Data.ReadingScript)
	assert.Equal(t, gw.audio, outcome.Record.Data.Audio)
	assert.Equal(t, gw.solutions, outcome.Record.Data.Solutions)
	assert.Equal(t, gw.topics, outcome.Record.Data.RelatedTopics)

	_, ok, err := store.Get(context.Background(), outcome.Record.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProcessCacheHitSkipsGeneration(t *testing.T) {
	gw := newFakeGateway()
	orch := newTestOrchestrator(newMemStore(), gw)
	input := Input{Text: "same document"}

	first, err := orch.Process(context.Background(), input)
	require.NoError(t, err)
	callsAfterFirst := gw.totalCalls()

	second, err := orch.Process(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, second.WasCacheHit)
	assert.Equal(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, first.Record.Data, second.Record.Data)
	assert.Equal(t, callsAfterFirst, gw.totalCalls(), "a cache hit makes zero gateway calls")
}

func TestProcessTranscriptionFailureIsFatal(t *testing.T) {
	gw := newFakeGateway()
	gw.transcribeErr = errors.New("model unavailable")
	store := newMemStore()
	orch := newTestOrchestrator(store, gw)

	_, err := orch.Process(context.Background(), Input{Text: "doc"})
	require.ErrorIs(t, err, ErrTranscriptionFailed)

	assert.Zero(t, gw.solveCalls)
	assert.Zero(t, gw.speechCalls)
	assert.Empty(t, store.records, "nothing is persisted for a failed run")
}

func TestProcessSolveFailureDegradesToEmpty(t *testing.T) {
	gw := newFakeGateway()
	gw.solveErr = errors.New("solve model overloaded")
	orch := newTestOrchestrator(newMemStore(), gw)

	outcome, err := orch.Process(context.Background(), Input{Text: "doc"})
	require.NoError(t, err)

	assert.NotNil(t, outcome.Record.Data.Solutions)
	assert.Empty(t, outcome.Record.Data.Solutions)
	assert.NotEmpty(t, outcome.Record.Data.RelatedTopics, "the suggest stage is unaffected")
}

func TestProcessSuggestFailureDegradesToEmpty(t *testing.T) {
	gw := newFakeGateway()
	gw.suggestErr = errors.New("suggest model overloaded")
	orch := newTestOrchestrator(newMemStore(), gw)

	outcome, err := orch.Process(context.Background(), Input{Text: "doc"})
	require.NoError(t, err)

	assert.NotNil(t, outcome.Record.Data.RelatedTopics)
	assert.Empty(t, outcome.Record.Data.RelatedTopics)
	assert.NotEmpty(t, outcome.Record.Data.Solutions, "the solve stage is unaffected")
}

func TestProcessTruncatesRelatedTopics(t *testing.T) {
	gw := newFakeGateway()
	gw.topics = []RelatedTopic{
		{Title: "a", SearchQuery: "a"},
		{Title: "b", SearchQuery: "b"},
		{Title: "c", SearchQuery: "c"},
		{Title: "d", SearchQuery: "d"},
	}
	orch := NewOrchestrator(newMemStore(), gw, Options{RelatedTopicLimit: 2}, zap.NewNop())

	outcome, err := orch.Process(context.Background(), Input{Text: "doc"})
	require.NoError(t, err)
	assert.Len(t, outcome.Record.Data.RelatedTopics, 2)
}

func TestProcessSynthesisFailureIsFatal(t *testing.T) {
	gw := newFakeGateway()
	gw.speechErr = errors.New("tts unavailable")
	store := newMemStore()
	orch := newTestOrchestrator(store, gw)

	_, err := orch.Process(context.Background(), Input{Text: "doc"})
	require.ErrorIs(t, err, ErrSynthesisFailed)
	assert.Empty(t, store.records)
}

func TestProcessPersistFailureStillReturnsResult(t *testing.T) {
	gw := newFakeGateway()
	store := newMemStore()
	store.putErr = errors.New("disk full")
	orch := newTestOrchestrator(store, gw)

	outcome, err := orch.Process(context.Background(), Input{Text: "doc"})
	require.NoError(t, err, "a persistence failure does not fail the run")
	assert.False(t, outcome.Persisted)
	assert.Equal(t, gw.transcript.DisplayScript, outcome.Record.Data.Script)
}

func TestProcessConcurrentIdenticalSubmissionsGenerateOnce(t *testing.T) {
	gw := newFakeGateway()
	orch := newTestOrchestrator(newMemStore(), gw)
	input := Input{Text: "shared document"}

	const runners = 8
	var wg sync.WaitGroup
	outcomes := make([]Outcome, runners)
	wg.Add(runners)
	for i := 0; i < runners; i++ {
		go func(i int) {
			defer wg.Done()
			outcome, err := orch.Process(context.Background(), input)
			require.NoError(t, err)
			outcomes[i] = outcome
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, gw.transcribeCalls, "identical concurrent submissions generate once")
	hits := 0
	for _, outcome := range outcomes {
		assert.Equal(t, outcomes[0].Record.ID, outcome.Record.ID)
		if outcome.WasCacheHit {
			hits++
		}
	}
	assert.Equal(t, runners-1, hits)
}
