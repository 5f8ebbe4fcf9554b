package audio

import (
	"context"
	"log"

	"gitlab.com/gomidi/rtmididrv"
)

// ListenToMidiIn sends the note of every note-on from the first MIDI input
// until ctx is done. The channel is closed when listening ends.
func ListenToMidiIn(ctx context.Context) <-chan int {
	ch := make(chan int, 1024)
	go func() {
		defer close(ch)
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			err := drv.Close()
			if err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)

		if len(ins) == 0 {
			log.Println("WARN: MIDI IN not found")
			return
		}
		in := ins[0]
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			err := in.Close()
			if err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		done := ctx.Done()
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			note, ok := ParseNoteOn(data)
			if !ok {
				return
			}
			select {
			case ch <- note:
			case <-done:
			default:
				log.Printf("dropped note-on: %v\n", note)
			}
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
			return
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			err := in.StopListening()
			if err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		<-done
	}()
	return ch
}

// ParseNoteOn returns the note of a note-on message. A note-on with zero
// velocity is a note-off.
func ParseNoteOn(data []byte) (int, bool) {
	if len(data) < 3 || data[0]>>4 != 9 || data[2] == 0 {
		return 0, false
	}
	return int(data[1]), true
}

// PresetForNote maps a MIDI note onto the catalog, wrapping around.
func PresetForNote(note int) string {
	keys := PresetKeys()
	return keys[positiveModInt(note, len(keys))]
}

func positiveModInt(a int, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
