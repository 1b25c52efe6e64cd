package reading

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Options parameterize a pipeline run. The illustration toggle replaces the
// original pair of near-identical flows with one configured state machine.
type Options struct {
	RelatedTopicLimit int
}

// Orchestrator runs the processing pipeline: fingerprint, cache probe, and on
// a miss the generation stages in fixed dependency order, assembling one
// immutable result that is persisted and returned.
//
// Stage order: Transcribe strictly precedes everything else; Solve and
// SuggestRelatedTopics run concurrently (both depend only on the transcript);
// SynthesizeSpeech follows the transcript; persistence follows assembly.
// Transcription and synthesis failures are fatal; solve and suggest degrade
// to empty sequences.
type Orchestrator struct {
	store Store
	gw    Gateway
	log   *zap.Logger
	opts  Options

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewOrchestrator(store Store, gw Gateway, opts Options, log *zap.Logger) *Orchestrator {
	if opts.RelatedTopicLimit <= 0 {
		opts.RelatedTopicLimit = 3
	}
	return &Orchestrator{
		store: store,
		gw:    gw,
		log:   log,
		opts:  opts,
		locks: make(map[string]*sync.Mutex),
	}
}

// Process handles one submission end to end. Identical content is never
// regenerated: a cache hit returns the stored result unchanged, with zero
// gateway calls.
func (o *Orchestrator) Process(ctx context.Context, input Input) (Outcome, error) {
	if input.IsEmpty() {
		return Outcome{}, fmt.Errorf("%w: submission has no content", ErrInputRejected)
	}

	fp := Fingerprint(input.ContentBytes())

	// Concurrent identical submissions serialize here, so the second runner
	// observes the first one's record as a cache hit instead of paying for a
	// duplicate generation.
	lock := o.fingerprintLock(fp)
	lock.Lock()
	defer lock.Unlock()

	if record, ok := o.probeCache(ctx, fp); ok {
		o.log.Info("cache hit", zap.String("fingerprint", shortID(fp)))
		return Outcome{Record: record, WasCacheHit: true, Persisted: true}, nil
	}

	result, err := o.generate(ctx, input)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		Record: CachedRecord{
			ID:        fp,
			Timestamp: time.Now(),
			Data:      result,
		},
		Persisted: true,
	}

	// Persistence failure does not roll back the computed result; the run is
	// only marked not-cached so an identical resubmission regenerates.
	if err := o.store.Put(ctx, fp, result); err != nil {
		o.log.Error("failed to persist result", zap.String("fingerprint", shortID(fp)), zap.Error(err))
		outcome.Persisted = false
	}

	return outcome, nil
}

// probeCache treats store failures as a miss.
func (o *Orchestrator) probeCache(ctx context.Context, fp string) (CachedRecord, bool) {
	record, ok, err := o.store.Get(ctx, fp)
	if err != nil {
		o.log.Warn("cache probe failed, treating as miss", zap.String("fingerprint", shortID(fp)), zap.Error(err))
		return CachedRecord{}, false
	}
	return record, ok
}

func (o *Orchestrator) generate(ctx context.Context, input Input) (ProcessingResult, error) {
	transcript, err := o.gw.Transcribe(ctx, input)
	if err != nil {
		if errors.Is(err, ErrTranscriptionFailed) {
			return ProcessingResult{}, err
		}
		return ProcessingResult{}, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	// Solve and suggest depend only on the transcript, so their latencies
	// overlap instead of summing.
	var (
		wg        sync.WaitGroup
		solutions []SolutionItem
		topics    []RelatedTopic
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		items, err := o.gw.Solve(ctx, transcript.DisplayScript, input)
		if err != nil {
			o.log.Warn("solve stage degraded to empty", zap.Error(err))
			return
		}
		solutions = items
	}()
	go func() {
		defer wg.Done()
		suggested, err := o.gw.SuggestRelatedTopics(ctx, transcript.DisplayScript)
		if err != nil {
			o.log.Warn("suggest stage degraded to empty", zap.Error(err))
			return
		}
		if len(suggested) > o.opts.RelatedTopicLimit {
			suggested = suggested[:o.opts.RelatedTopicLimit]
		}
		topics = suggested
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return ProcessingResult{}, err
	}

	audio, err := o.gw.SynthesizeSpeech(ctx, transcript.ReadingScript)
	if err != nil {
		if errors.Is(err, ErrSynthesisFailed) {
			return ProcessingResult{}, err
		}
		return ProcessingResult{}, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	if solutions == nil {
		solutions = []SolutionItem{}
	}
	if topics == nil {
		topics = []RelatedTopic{}
	}

	return ProcessingResult{
		Script:        transcript.DisplayScript,
		ReadingScript: transcript.ReadingScript,
		Audio:         audio,
		RelatedTopics: topics,
		Solutions:     solutions,
	}, nil
}

func (o *Orchestrator) fingerprintLock(fp string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[fp]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[fp] = lock
	}
	return lock
}
