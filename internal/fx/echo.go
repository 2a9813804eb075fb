package fx

import (
	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/param"
	"github.com/kestrelaudio/corelx/internal/tick"
	"github.com/kestrelaudio/corelx/pkg/dspkernel/delay"
)

const (
	echoMinDelaySeconds = 0.01
	echoMaxDelaySeconds = 30.0
)

// Echo is a stereo feedback delay: per sample, read the delayed L/R,
// write input+delayed*feedback back into the line, and output
// input*dry + delayed*wet.
type Echo struct {
	delaySeconds param.Parameter
	feedback     param.Parameter
	dry, wet     param.Parameter

	lineL, lineR *delay.Line
}

// NewEcho builds an Echo effect from its four Parameters.
func NewEcho(delaySeconds, feedback, dry, wet param.Parameter) *Echo {
	return &Echo{
		delaySeconds: delaySeconds.WithRange(echoMinDelaySeconds, echoMaxDelaySeconds),
		feedback:     feedback.WithRange(0, 0.99),
		dry:          dry,
		wet:          wet,
		lineL:        delay.New(echoMaxDelaySeconds, float64(audio.SampleRate)),
		lineR:        delay.New(echoMaxDelaySeconds, float64(audio.SampleRate)),
	}
}

func (e *Echo) Name() string { return "echo" }

func (e *Echo) Init() {
	e.lineL.Reset()
	e.lineR.Reset()
}

func (e *Echo) CanFastUpdate(other Effect) bool {
	_, ok := other.(*Echo)
	return ok
}

func (e *Echo) FastUpdate(other Effect) {
	o := other.(*Echo)
	e.delaySeconds, e.feedback, e.dry, e.wet = o.delaySeconds, o.feedback, o.dry, o.wet
}

func (e *Echo) Render(startTick tick.Sample, buf *audio.Buffer, _ []midi.EventAt) {
	delaySec := e.delaySeconds.GetValue(startTick)
	feedback := float32(e.feedback.GetValue(startTick))
	dry := float32(e.dry.GetValue(startTick))
	wet := float32(e.wet.GetValue(startTick))
	delaySamples := delaySec * float64(audio.SampleRate)

	for i := range buf.Left {
		inL, inR := buf.Left[i], buf.Right[i]

		delayedL := e.lineL.Read(delaySamples)
		delayedR := e.lineR.Read(delaySamples)

		e.lineL.Write(inL + delayedL*feedback)
		e.lineR.Write(inR + delayedR*feedback)

		buf.Left[i] = inL*dry + delayedL*wet
		buf.Right[i] = inR*dry + delayedR*wet
	}
}
