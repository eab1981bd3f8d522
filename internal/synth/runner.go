package synth

import (
	"context"
	"errors"
	"sync"
	"time"

	"scriptsmith/internal/logging"
)

// ErrRunnerStopped is returned by Runner methods once Run has returned.
var ErrRunnerStopped = errors.New("synthesis runner stopped")

// instantTicks is always ready; it drives reveals with a non-positive interval.
var instantTicks = func() <-chan time.Time {
	ch := make(chan time.Time)
	close(ch)
	return ch
}()

// Runner drives a Controller from a single goroutine. Generator calls run on their
// own goroutines and report back through the loop; commands from other goroutines
// are posted to an inbox. Only the loop goroutine touches the controller.
type Runner struct {
	ctrl  *Controller
	gen   Generator
	creds CredentialSource

	inbox   chan func()
	results chan Result
	done    chan struct{}

	mu      sync.Mutex
	running bool
	baseCtx context.Context
	wg      sync.WaitGroup
}

// NewRunner creates a Runner. Call Run to start the loop.
func NewRunner(ctrl *Controller, gen Generator, creds CredentialSource) *Runner {
	return &Runner{
		ctrl:    ctrl,
		gen:     gen,
		creds:   creds,
		inbox:   make(chan func(), 16),
		results: make(chan Result),
		done:    make(chan struct{}),
	}
}

// Run processes commands, generator results and reveal ticks until ctx is done.
// An in-flight synthesis is cancelled on exit and its goroutine awaited.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("runner already started")
	}
	r.running = true
	r.baseCtx = ctx
	r.mu.Unlock()

	logging.SynthDebug("runner started (interval=%s)", r.ctrl.Interval())
	defer func() {
		r.ctrl.Cancel()
		close(r.done)
		r.wg.Wait()
		logging.SynthDebug("runner stopped")
	}()

	var (
		ticker  *time.Ticker
		tickC   <-chan time.Time
		tickGen uint64
	)
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
		}
		tickC = nil
		tickGen = 0
	}
	defer stopTicker()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-r.inbox:
			fn()
		case res := <-r.results:
			r.ctrl.Resolve(res)
		case <-tickC:
			r.ctrl.Advance(Tick{Generation: tickGen})
		}

		// One ticker per reveal, stamped with the generation it was started for.
		switch {
		case r.ctrl.State() != Revealing:
			if tickC != nil {
				stopTicker()
			}
		case tickGen != r.ctrl.Generation():
			stopTicker()
			tickGen = r.ctrl.Generation()
			if d := r.ctrl.Interval(); d > 0 {
				ticker = time.NewTicker(d)
				tickC = ticker.C
			} else {
				tickC = instantTicks
			}
		}
	}
}

// Submit starts a synthesis, superseding any in flight. It returns once the
// controller accepted or rejected the instruction, not when synthesis finishes.
func (r *Runner) Submit(ctx context.Context, instruction string) error {
	errc := make(chan error, 1)
	err := r.post(ctx, func() {
		req, err := r.ctrl.Submit(r.baseCtx, instruction)
		if err == nil {
			r.dispatch(req)
		}
		errc <- err
	})
	if err != nil {
		return err
	}
	return r.await(ctx, errc)
}

// Edit applies a direct user edit.
func (r *Runner) Edit(ctx context.Context, text string) error {
	errc := make(chan error, 1)
	if err := r.post(ctx, func() {
		r.ctrl.Edit(text)
		errc <- nil
	}); err != nil {
		return err
	}
	return r.await(ctx, errc)
}

// Cancel aborts the in-flight synthesis, if any.
func (r *Runner) Cancel(ctx context.Context) (bool, error) {
	okc := make(chan bool, 1)
	if err := r.post(ctx, func() { okc <- r.ctrl.Cancel() }); err != nil {
		return false, err
	}
	select {
	case ok := <-okc:
		return ok, nil
	case <-r.done:
		return false, ErrRunnerStopped
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Snapshot returns the controller view as seen from the loop.
func (r *Runner) Snapshot(ctx context.Context) (Snapshot, error) {
	sc := make(chan Snapshot, 1)
	if err := r.post(ctx, func() { sc <- r.ctrl.Snapshot() }); err != nil {
		return Snapshot{}, err
	}
	select {
	case s := <-sc:
		return s, nil
	case <-r.done:
		return Snapshot{}, ErrRunnerStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (r *Runner) dispatch(req Request) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		res := Dispatch(req, r.gen, r.creds)
		select {
		case r.results <- res:
		case <-r.done:
		}
	}()
}

func (r *Runner) post(ctx context.Context, fn func()) error {
	select {
	case <-r.done:
		return ErrRunnerStopped
	default:
	}
	select {
	case r.inbox <- fn:
		return nil
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) await(ctx context.Context, errc <-chan error) error {
	select {
	case err := <-errc:
		return err
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
