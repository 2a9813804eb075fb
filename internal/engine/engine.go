// Package engine implements the block-driven DSP loop: the core's
// central orchestrator producing a continuous stereo stream at
// deterministic wall-clock intervals, integrating MIDI events and
// publishing finished blocks to consumers.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/audioio"
	"github.com/kestrelaudio/corelx/internal/config"
	"github.com/kestrelaudio/corelx/internal/fx"
	"github.com/kestrelaudio/corelx/internal/instrument"
	"github.com/kestrelaudio/corelx/internal/logging"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/param"
	"github.com/kestrelaudio/corelx/internal/tick"
	"github.com/kestrelaudio/corelx/internal/track"
	"github.com/kestrelaudio/corelx/pkg/dspkernel"
)

// maxConcurrentTrackInit bounds how many instruments SetupTracks
// initializes in parallel during its slow, unlocked phase: sample
// loading and plugin instantiation for the to_add set may run
// concurrently, but unboundedly so would spike memory on a large
// SetupTracks call.
const maxConcurrentTrackInit = 4

// atomicTick is the DSP thread's sole-writer, many-reader clock
// current_tick is written only by the DSP thread, read by everything
// else.
type atomicTick struct {
	v atomic.Int64
}

func (a *atomicTick) load() tick.Sample { return tick.Sample(a.v.Load()) }
func (a *atomicTick) add(delta tick.Sample) { a.v.Add(int64(delta)) }

// Consumer accepts finished audio blocks; implementations must not
// block the DSP thread for long or allocate in steady state: the audio
// device callback thread pulls from a ring the DSP thread fills, and
// push errors are logged, never fatal.
type Consumer interface {
	Push(buf *audio.Buffer) error
}

// TrackSettings is the caller-facing request shape for SetupTracks:
// a track's static fields, minus runtime-only state.
type TrackSettings struct {
	Name           string
	InstrumentKind string
	Muted          bool
	Volume         param.Parameter
	Pan            param.Parameter
	Extra          string
	FxNames        []string

	// Instrument and Effects are the already-constructed runtime
	// objects for this track request; callers build them from
	// InstrumentKind/Extra/FxNames before calling SetupTracks (in this
	// module only the tests call SetupTracks); the "slow part" — load
	// samples, instantiate plugin — happens outside the tracks mutex.
	Instrument instrument.Instrument
	Effects    []fx.Effect
}

// TrackSnapshot is a read-only view of one track, returned by
// GetTracks.
type TrackSnapshot struct {
	Name           string
	InstrumentKind string
	Muted          bool
	Volume         float64
	Pan            float64
	Meter          track.Meter
}

// Engine owns the global clock, the track map, the controls registry,
// the master meter, and the consumer list.
type Engine struct {
	logger *logging.Logger

	currentTick atomicTick

	setupMu sync.Mutex

	tracksMu sync.RWMutex
	tracks   map[string]*track.Track

	msgsMu      sync.Mutex
	msgsByTrack map[string][]midi.EventAt

	consumersMu sync.Mutex
	consumers   []Consumer

	controls *param.Controls
	master   track.Meter
	masterMu sync.Mutex

	cfg      *config.Config
	output   *audioio.OtoOutput
	recorder *audioio.WavRecorder

	stopCh chan struct{}
	doneCh chan struct{}
	now    func() time.Time
}

// New builds an Engine with its own controls registry. now defaults to
// time.Now; tests may override it for deterministic block scheduling.
func New(logger *logging.Logger) *Engine {
	return &Engine{
		logger:      logger,
		tracks:      make(map[string]*track.Track),
		msgsByTrack: make(map[string][]midi.EventAt),
		controls:    param.NewControls(logger),
		now:         time.Now,
	}
}

// Init applies cfg's ambient settings: if dsp.enable_output is set, it
// opens the real audio device via audioio.OtoOutput and registers it as
// a consumer. A device-open failure is a resource error, surfaced to
// the caller rather than the real-time path.
func (e *Engine) Init(cfg *config.Config) error {
	e.cfg = cfg
	if cfg == nil || !cfg.DSP.EnableOutput {
		return nil
	}
	out, err := audioio.NewOtoOutput()
	if err != nil {
		return fmt.Errorf("engine: init audio output: %w", err)
	}
	e.output = out
	e.AddConsumer(out)
	return nil
}

// StartRecording begins writing finished blocks to a timestamped WAV
// file under the configured recording directory (or dir, if non-empty)
// and registers the recorder as a consumer.
func (e *Engine) StartRecording(dir string) error {
	if dir == "" {
		dir = "./recordings"
		if e.cfg != nil && e.cfg.Recording.Directory != "" {
			dir = e.cfg.Recording.Directory
		}
	}
	rec := audioio.NewWavRecorder(dir)
	if err := rec.Start(); err != nil {
		return fmt.Errorf("engine: start recording: %w", err)
	}
	e.recorder = rec
	e.AddConsumer(rec)
	return nil
}

// StopRecording flushes and closes the active recording, if any
// a graceful exit must flush the WAV file.
func (e *Engine) StopRecording() error {
	if e.recorder == nil {
		return nil
	}
	e.RemoveConsumer(e.recorder)
	err := e.recorder.Stop()
	e.recorder = nil
	return err
}

// Controls returns the engine's shared control registry (for wiring
// Parameters at track-construction time).
func (e *Engine) Controls() *param.Controls { return e.controls }

// PushMidiEvent appends e into its destination track's inbox, O(1),
// under the msgs mutex. Safe to call from any thread.
func (e *Engine) PushMidiEvent(evt midi.EventAt) {
	e.msgsMu.Lock()
	e.msgsByTrack[evt.Track] = append(e.msgsByTrack[evt.Track], evt)
	e.msgsMu.Unlock()
}

func (e *Engine) drainMsgs() map[string][]midi.EventAt {
	e.msgsMu.Lock()
	drained := e.msgsByTrack
	e.msgsByTrack = make(map[string][]midi.EventAt)
	e.msgsMu.Unlock()
	return drained
}

// Start spawns the DSP thread. The DSP thread keeps running even if a
// consumer later fails; consumer push errors are logged, never fatal
// across the process's lifetime.
func (e *Engine) Start() {
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	go e.runDSPLoop()
}

// Stop signals the DSP thread, waits for it to exit, then stops and
// drops every track.
func (e *Engine) Stop() {
	if e.stopCh != nil {
		close(e.stopCh)
		<-e.doneCh
	}

	e.tracksMu.Lock()
	for _, t := range e.tracks {
		t.Stop()
	}
	e.tracks = make(map[string]*track.Track)
	e.tracksMu.Unlock()

	_ = e.StopRecording()
	if e.output != nil {
		_ = e.output.Close()
		e.output = nil
	}
}

func (e *Engine) runDSPLoop() {
	defer close(e.doneCh)

	t0 := e.now()
	blockDuration := time.Duration(audio.BlockDurationNanos)
	var block int64
	out := audio.New(audio.BlockSize)

	for {
		target := t0.Add(time.Duration(block) * blockDuration)
		timer := time.NewTimer(time.Until(target))
		select {
		case <-e.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		eventsByTrack := e.drainMsgs()

		controlEvents := eventsByTrack[midi.ControlsTrack]
		current := e.currentTick.load()
		stampAll(controlEvents, current, e.now())
		e.controls.Ingest(controlEvents)
		e.controls.AdvanceTo(current)

		e.tracksMu.RLock()
		for name, t := range e.tracks {
			events := eventsByTrack[name]
			stampAll(events, current, e.now())
			t.RenderAsync(current, events)
		}
		out.Reset()
		for _, t := range e.tracks {
			t.Join(current, out)
		}
		e.tracksMu.RUnlock()

		e.masterMu.Lock()
		e.master.RMS = (dspkernel.RMS(out.Left) + dspkernel.RMS(out.Right)) / 2
		peak := dspkernel.Peak(out.Left)
		if r := dspkernel.Peak(out.Right); r > peak {
			peak = r
		}
		e.master.Peak = peak
		e.masterMu.Unlock()

		e.currentTick.add(tick.Sample(audio.BlockSize))

		e.consumersMu.Lock()
		for _, c := range e.consumers {
			if err := c.Push(out); err != nil && e.logger != nil {
				e.logger.Warnf("consumer push failed: %v", err)
			}
		}
		e.consumersMu.Unlock()

		block++
	}
}

func stampAll(events []midi.EventAt, current tick.Sample, now time.Time) {
	for i := range events {
		events[i].Stamp(current, now)
	}
}

// AddConsumer registers c to receive every finished block.
func (e *Engine) AddConsumer(c Consumer) {
	e.consumersMu.Lock()
	e.consumers = append(e.consumers, c)
	e.consumersMu.Unlock()
}

// RemoveConsumer unregisters c.
func (e *Engine) RemoveConsumer(c Consumer) {
	e.consumersMu.Lock()
	defer e.consumersMu.Unlock()
	kept := e.consumers[:0]
	for _, existing := range e.consumers {
		if existing != c {
			kept = append(kept, existing)
		}
	}
	e.consumers = kept
}

// SetupTracks atomically reconfigures the track map: decide
// fast-updatable vs new-or-changed tracks
// under the lock, do the slow initialization work outside it, then
// swap in the new map under the lock. Failure during the slow phase
// aborts the whole call without touching the live map.
func (e *Engine) SetupTracks(requests []TrackSettings) error {
	e.setupMu.Lock()
	defer e.setupMu.Unlock()

	type decision struct {
		req       TrackSettings
		existing  *track.Track
		fastUpdate bool
	}

	e.tracksMu.RLock()
	decisions := make([]decision, len(requests))
	for i, req := range requests {
		existing, ok := e.tracks[req.Name]
		d := decision{req: req}
		if ok && existing.Settings().InstrumentKind == req.InstrumentKind &&
			existing.CanFastUpdate(toTrackSettings(req), req.Instrument, req.Effects) {
			d.existing = existing
			d.fastUpdate = true
		}
		decisions[i] = d
	}
	e.tracksMu.RUnlock()

	newMap := make(map[string]*track.Track, len(decisions))
	var newMapMu sync.Mutex

	sem := semaphore.NewWeighted(maxConcurrentTrackInit)
	group, ctx := errgroup.WithContext(context.Background())
	for _, d := range decisions {
		if d.fastUpdate {
			continue
		}
		d := d
		if d.req.Instrument == nil {
			return fmt.Errorf("engine: track %q: no instrument supplied", d.req.Name)
		}
		group.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			if err := d.req.Instrument.Init(); err != nil {
				return fmt.Errorf("engine: track %q: instrument init: %w", d.req.Name, err)
			}
			chain := fx.NewChain()
			chain.Set(d.req.Effects)
			t := track.New(toTrackSettings(d.req), d.req.Instrument, chain)
			if e.logger != nil {
				e.logger.Debugf("track %q: new instance %s (%s)", d.req.Name, t.ID(), d.req.InstrumentKind)
			}

			newMapMu.Lock()
			newMap[d.req.Name] = t
			newMapMu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		for _, t := range newMap {
			t.Stop()
		}
		return err
	}

	e.tracksMu.Lock()
	oldTracks := e.tracks
	for _, d := range decisions {
		if d.fastUpdate {
			d.existing.FastUpdate(toTrackSettings(d.req), d.req.Instrument, d.req.Effects)
			newMap[d.req.Name] = d.existing
		}
	}
	e.tracks = newMap
	e.tracksMu.Unlock()

	for name, t := range oldTracks {
		if newMap[name] != t {
			t.Stop()
		}
	}
	return nil
}

func toTrackSettings(req TrackSettings) track.Settings {
	return track.Settings{
		Name:           req.Name,
		InstrumentKind: req.InstrumentKind,
		Muted:          req.Muted,
		Volume:         req.Volume,
		Pan:            req.Pan,
		Extra:          req.Extra,
		FxNames:        req.FxNames,
	}
}

// GetTracks returns a read-only snapshot of every track.
func (e *Engine) GetTracks() []TrackSnapshot {
	e.tracksMu.RLock()
	defer e.tracksMu.RUnlock()
	out := make([]TrackSnapshot, 0, len(e.tracks))
	current := e.currentTick.load()
	for _, t := range e.tracks {
		s := t.Settings()
		out = append(out, TrackSnapshot{
			Name:           s.Name,
			InstrumentKind: s.InstrumentKind,
			Muted:          s.Muted,
			Volume:         s.Volume.GetValue(current),
			Pan:            s.Pan.GetValue(current),
			Meter:          t.MeterSnapshot(),
		})
	}
	return out
}

// GetMasterLevels returns the master bus's current RMS/peak.
func (e *Engine) GetMasterLevels() track.Meter {
	e.masterMu.Lock()
	defer e.masterMu.Unlock()
	return e.master
}

// GetTrackLevels returns one track's current RMS/peak, or the zero
// value if the track does not exist.
func (e *Engine) GetTrackLevels(name string) track.Meter {
	e.tracksMu.RLock()
	defer e.tracksMu.RUnlock()
	if t, ok := e.tracks[name]; ok {
		return t.MeterSnapshot()
	}
	return track.Meter{}
}

// CurrentTick returns the engine's current sample tick.
func (e *Engine) CurrentTick() tick.Sample {
	return e.currentTick.load()
}
