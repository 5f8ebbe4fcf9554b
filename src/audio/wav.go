package audio

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// ----- WAV Export ----- //

// Streamer renders a Context as a beep stream. Both channels carry the bus.
func (c *Context) Streamer() beep.Streamer {
	var buf []float64
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if cap(buf) < len(samples) {
			buf = make([]float64, len(samples))
		}
		buf = buf[:len(samples)]
		c.Render(buf)
		for i, value := range buf {
			samples[i][0] = value
			samples[i][1] = value
		}
		return len(samples), true
	})
}

// RenderWAV plays p on a fresh Context and writes it as 16-bit mono WAV
// until every voice has stopped.
func RenderWAV(w io.WriteSeeker, p Params, sampleRate int) error {
	ctx, err := NewContext(sampleRate)
	if err != nil {
		return err
	}
	defer ctx.Close()
	voices, err := NewEngine(ctx).PlayCustom(p)
	if err != nil {
		return err
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 1,
		Precision:   2,
	}
	length := format.SampleRate.N(secondsToDuration(lastStop(voices)))
	if err := wav.Encode(w, beep.Take(length, ctx.Streamer()), format); err != nil {
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	return nil
}

func lastStop(voices []*Voice) float64 {
	stop := 0.0
	for _, v := range voices {
		stop = math.Max(stop, v.Stop)
	}
	return stop
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(math.Ceil(sec * float64(time.Second)))
}
