package audio

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/hajimehoshi/oto"
)

// ----- Player ----- //

// Player streams a Context to the sound device.
type Player struct {
	ctx        context.Context
	otoContext *oto.Context
	source     *Context
}

var _ io.Reader = (*Player)(nil)

// NewPlayer opens the device at the source's sample rate.
func NewPlayer(source *Context) (*Player, error) {
	otoContext, err := oto.NewContext(source.SampleRate(), channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputUnavailable, err)
	}
	return &Player{
		ctx:        context.Background(),
		otoContext: otoContext,
		source:     source,
	}, nil
}

func (p *Player) Read(buf []byte) (int, error) {
	select {
	case <-p.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
		return p.source.Read(buf)
	}
}

// Close closes the device and the source.
func (p *Player) Close() error {
	log.Println("Closing Player...")
	if err := p.source.Close(); err != nil {
		return err
	}
	return p.otoContext.Close()
}

// Start blocks until ctx is cancelled.
func (p *Player) Start(ctx context.Context) error {
	player := p.otoContext.NewPlayer()
	defer func() {
		if err := player.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	p.ctx = ctx

	// block until cancel() called
	if _, err := io.CopyBuffer(player, p, make([]byte, bufferSizeInBytes)); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}
