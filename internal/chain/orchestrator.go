package chain

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"site-assistant/internal/domain"
)

const defaultAttemptTimeout = 10 * time.Second

// State describes how a reply was obtained. Only diagnostics see it.
type State string

const (
	StateAnswered    State = "answered"
	StateNoProviders State = "no_providers_configured"
	StateAllFailed   State = "all_providers_failed"
)

// SourceLocalKnowledge is the Resolution source when no provider answered.
const SourceLocalKnowledge = "local"

// Adapter translates a conversation into one provider's wire contract.
// Attempt must report every failure as Unavailable.
type Adapter interface {
	Name() string
	// Configured reports whether the provider has a credential.
	Configured() bool
	Attempt(ctx context.Context, conv domain.Conversation) Outcome
}

// Responder is the local answer of last resort. It cannot fail.
type Responder interface {
	Respond(conv domain.Conversation) string
}

// Link places an Adapter in the chain. Lower Priority is tried first.
type Link struct {
	Adapter  Adapter
	Priority int
}

// Attempt records one tried provider.
type Attempt struct {
	Provider string
	Reason   string
	Duration time.Duration
}

// Resolution is the reply plus how it was obtained.
type Resolution struct {
	Text     string
	Source   string
	State    State
	Skipped  []string
	Attempts []Attempt
}

// Orchestrator runs the provider chain sequentially. It holds no per-request
// state and is safe for concurrent use.
type Orchestrator struct {
	links   []Link
	local   Responder
	timeout time.Duration
}

type Option func(*Orchestrator)

// WithAttemptTimeout bounds each provider attempt.
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func New(local Responder, links []Link, opts ...Option) (*Orchestrator, error) {
	if local == nil {
		return nil, errors.New("chain: local responder must not be nil")
	}
	sorted := make([]Link, 0, len(links))
	for i, l := range links {
		if l.Adapter == nil {
			return nil, fmt.Errorf("chain: link %d has nil adapter", i)
		}
		sorted = append(sorted, l)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	o := &Orchestrator{
		links:   sorted,
		local:   local,
		timeout: defaultAttemptTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Resolve returns a non-empty reply for conv. The first provider that answers
// wins; when none does, the local responder answers.
func (o *Orchestrator) Resolve(ctx context.Context, conv domain.Conversation) Resolution {
	var res Resolution
	for _, l := range o.links {
		name := l.Adapter.Name()
		if !l.Adapter.Configured() {
			res.Skipped = append(res.Skipped, name)
			continue
		}

		start := time.Now()
		outcome := o.attempt(ctx, l.Adapter, conv)
		if text, ok := outcome.Text(); ok {
			res.Text = text
			res.Source = name
			res.State = StateAnswered
			return res
		}
		res.Attempts = append(res.Attempts, Attempt{
			Provider: name,
			Reason:   outcome.Reason(),
			Duration: time.Since(start),
		})
	}

	res.Text = o.local.Respond(conv)
	res.Source = SourceLocalKnowledge
	res.State = StateAllFailed
	if len(res.Attempts) == 0 {
		res.State = StateNoProviders
	}
	return res
}

// attempt runs one adapter under the per-attempt timeout. Cancellation of the
// caller's context does not abort it. A panicking or hung adapter yields
// Unavailable.
func (o *Orchestrator) attempt(ctx context.Context, a Adapter, conv domain.Conversation) Outcome {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	done := make(chan Outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Unavailable(ReasonPanic)
			}
		}()
		done <- a.Attempt(ctx, slices.Clone(conv))
	}()

	select {
	case out := <-done:
		return out
	case <-ctx.Done():
		return Unavailable(ReasonTimeout)
	}
}
