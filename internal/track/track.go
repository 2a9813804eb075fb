// Package track implements the per-track worker: one instrument, one
// effect chain, a dedicated goroutine, and the two-phase
// RenderAsync/Join contract the DSP loop drives every block.
//
// The teacher is a VST3 plugin and is driven by a single host callback
// thread, so it has no worker-goroutine pattern of its own to adapt;
// this package grounds its concurrency idiom in Go's standard
// channel-based substitute for a condition variable (a buffered
// work-request channel plus a done channel) rather than sync.Cond,
// matching how Go code in the wider retrieval pack structures
// producer/worker handoffs.
package track

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/fx"
	"github.com/kestrelaudio/corelx/internal/instrument"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/param"
	"github.com/kestrelaudio/corelx/internal/tick"
	"github.com/kestrelaudio/corelx/pkg/dspkernel"
	"github.com/kestrelaudio/corelx/pkg/dspkernel/pan"
)

// Settings is the static, caller-supplied configuration for a track.
type Settings struct {
	Name           string
	InstrumentKind string
	Muted          bool
	Volume         param.Parameter
	Pan            param.Parameter
	Extra          string
	FxNames        []string
}

// workRequest is one block's render job, published by RenderAsync.
type workRequest struct {
	tick   tick.Sample
	events []midi.EventAt
}

// Track owns one instrument and one effect chain behind a dedicated
// worker goroutine.
type Track struct {
	id         string
	settings   Settings
	instrument instrument.Instrument
	fxChain    *fx.Chain

	scratch audio.Buffer
	meter   Meter

	workCh chan workRequest
	doneCh chan struct{}
	stopCh chan struct{}

	stopOnce sync.Once
}

// Meter tracks a track's RMS/peak level across renders.
type Meter struct {
	RMS, Peak float32
}

func (m *Meter) observe(buf *audio.Buffer) {
	m.RMS = (dspkernel.RMS(buf.Left) + dspkernel.RMS(buf.Right)) / 2
	peak := dspkernel.Peak(buf.Left)
	if r := dspkernel.Peak(buf.Right); r > peak {
		peak = r
	}
	m.Peak = peak
}

// New builds a track, allocates its scratch buffer, and starts its
// worker goroutine. Callers are expected to call Init on slow
// resources (sample loading, plugin activation) before New.
func New(settings Settings, inst instrument.Instrument, chain *fx.Chain) *Track {
	t := &Track{
		id:         uuid.NewString(),
		settings:   settings,
		instrument: inst,
		fxChain:    chain,
		scratch:    audio.New(audio.BlockSize),
		workCh:     make(chan workRequest, 1),
		doneCh:     make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
	}
	go t.run()
	return t
}

// ID returns the track's process-unique instance identifier, stable
// for the track's lifetime and distinct across every structural
// replacement (a fast update keeps the same Track, and so the same
// ID; a structural swap produces a new one). Used purely for log
// correlation across a track's init/fast-update/stop lifecycle.
func (t *Track) ID() string { return t.id }

// Settings returns the track's current static configuration.
func (t *Track) Settings() Settings { return t.settings }

// Instrument returns the track's current instrument (used by
// CanFastUpdate comparisons at the engine layer).
func (t *Track) Instrument() instrument.Instrument { return t.instrument }

// FxChain returns the track's effect chain.
func (t *Track) FxChain() *fx.Chain { return t.fxChain }

// MeterSnapshot returns the track's current level snapshot.
func (t *Track) MeterSnapshot() Meter { return t.meter }

func (t *Track) run() {
	for {
		select {
		case req := <-t.workCh:
			t.scratch.Reset()
			t.instrument.Render(req.tick, req.events, &t.scratch)
			t.fxChain.Render(req.tick, &t.scratch, req.events)
			t.meter.observe(&t.scratch)
			t.doneCh <- struct{}{}
		case <-t.stopCh:
			return
		}
	}
}

// RenderAsync publishes this block's work and returns immediately; the
// worker goroutine picks it up and signals completion on doneCh, which
// Join waits for.
func (t *Track) RenderAsync(startTick tick.Sample, events []midi.EventAt) {
	t.workCh <- workRequest{tick: startTick, events: events}
}

// Join waits for the worker to finish this block — every track
// renders regardless of mute state, so its meter stays live — then
// additively mixes the track's contribution into out at its current
// volume/pan, per sample. A muted track's contribution is skipped
// entirely at the mix step.
func (t *Track) Join(startTick tick.Sample, into *audio.Buffer) {
	<-t.doneCh
	if t.settings.Muted {
		return
	}

	for i := range into.Left {
		sampleTick := startTick + tick.Sample(i)
		vol := t.settings.Volume.GetValue(sampleTick)
		panPos := t.settings.Pan.GetValue(sampleTick)
		leftGain := float32(vol * pan.LeftPan(panPos))
		rightGain := float32(vol * pan.RightPan(panPos))
		into.Left[i] += t.scratch.Left[i] * leftGain
		into.Right[i] += t.scratch.Right[i] * rightGain
	}
}

// CanFastUpdate reports whether this track can absorb newSettings in
// place: the instrument kind must be unchanged and the requested
// effect chain must be a fast-updatable match of the current one.
func (t *Track) CanFastUpdate(newSettings Settings, newInst instrument.Instrument, newFx []fx.Effect) bool {
	if t.settings.InstrumentKind != newSettings.InstrumentKind {
		return false
	}
	if !t.instrument.CanFastUpdate(newInst) {
		return false
	}
	return t.fxChain.CanFastUpdate(newFx)
}

// FastUpdate applies newSettings/newInst/newFx in place, without
// reinitializing the instrument, effect chain, or worker goroutine.
// Callers must have already confirmed CanFastUpdate.
func (t *Track) FastUpdate(newSettings Settings, newInst instrument.Instrument, newFx []fx.Effect) {
	t.settings = newSettings
	t.instrument.FastUpdate(newInst)
	t.fxChain.FastUpdate(newFx)
}

// Stop signals the worker goroutine to exit and releases the
// instrument's resources. Idempotent: calls after the first do nothing.
func (t *Track) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
		t.instrument.Stop()
	})
}
