package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/jinjor/snes-sfx/src/audio"
	"golang.org/x/sync/errgroup"
)

var (
	sockFileName = flag.String("sock", "/tmp/snes-sfx.sock", "unix socket to listen on")
	sampleRate   = flag.Int("rate", audio.DefaultSampleRate, "output sample rate")
	useMidi      = flag.Bool("midi", false, "trigger presets from the first MIDI input")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	output, err := audio.NewContext(*sampleRate)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	player, err := audio.NewPlayer(output)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer player.Close()
	s := newSession(output)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()
	err = withIPCConnection(ctx, func(conn net.Conn) error {
		w := &lineWriter{w: conn}
		commandCh := make(chan []string, 256)
		g, ctx := errgroup.WithContext(ctx)
		go func() {
			<-ctx.Done()
			conn.SetReadDeadline(time.Now())
		}()
		g.Go(func() error {
			return player.Start(ctx)
		})
		g.Go(func() error {
			defer close(commandCh)
			return receiveCommands(ctx, conn, commandCh)
		})
		g.Go(func() error {
			processCommands(s, commandCh, w)
			return nil
		})
		g.Go(func() error {
			return sendReports(ctx, w, output)
		})
		if *useMidi {
			g.Go(func() error {
				for note := range audio.ListenToMidiIn(ctx) {
					key := audio.PresetForNote(note)
					if _, err := s.engine.PlayPreset(key, nil); err != nil {
						log.Printf("failed to play %s: %v\n", key, err)
					}
				}
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func withIPCConnection(ctx context.Context, f func(net.Conn) error) error {
	os.Remove(*sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", *sockFileName)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closing IPC...")
		err := listener.Close()
		if err != nil {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(*sockFileName)
	}()
	log.Printf("start listening on %s...\n", *sockFileName)
	conn, err := listener.Accept()
	if err != nil {
		return err
	}
	defer func() {
		err := conn.Close()
		if err != nil {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	return f(conn)
}

// ----- Line Writer ----- //

type lineWriter struct {
	sync.Mutex
	w io.Writer
}

func (l *lineWriter) writeLine(s string) {
	l.Lock()
	defer l.Unlock()
	if _, err := l.w.Write([]byte(s + "\n")); err != nil {
		log.Printf("failed to write: %v\n", err)
	}
}

// ----- Commands ----- //

func receiveCommands(ctx context.Context, conn net.Conn, commandCh chan<- []string) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("Connection interrupted")
			break loop
		default:
		}
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF || ctx.Err() != nil {
			break loop
		}
		if err != nil {
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		command, err := parseCommand(string(line))
		if err != nil {
			log.Printf("invalid command %q: %v\n", string(line), err)
			line = []byte{}
			continue
		}
		commandCh <- command
		log.Printf("received: %s\n", string(line))
		line = []byte{}
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func parseCommand(line string) ([]string, error) {
	lineStr := strings.Split(line, " ")
	for i, item := range lineStr {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		lineStr[i] = escaped
	}
	return lineStr, nil
}

func processCommands(s *session, commandCh <-chan []string, w *lineWriter) {
	for command := range commandCh {
		reply, err := s.update(command)
		if err != nil {
			log.Printf("command %v failed: %v\n", command, err)
			w.writeLine("error " + url.QueryEscape(err.Error()))
			continue
		}
		if reply != "" {
			w.writeLine(reply)
		}
	}
	log.Println("processCommands() ended.")
}

// ----- Session ----- //

type session struct {
	output *audio.Context
	engine *audio.Engine
	custom audio.Params
	rand   *rand.Rand
}

func newSession(output *audio.Context) *session {
	return &session{
		output: output,
		engine: audio.NewEngine(output),
		custom: audio.DefaultParams(),
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *session) update(command []string) (string, error) {
	switch command[0] {
	case "play":
		if len(command) < 2 {
			return "", fmt.Errorf("preset is not passed")
		}
		o, err := parseOverrides(command[2:])
		if err != nil {
			return "", err
		}
		voices, err := s.engine.PlayPreset(command[1], o)
		if err != nil {
			return "", err
		}
		return "playing " + command[1] + " " + strconv.Itoa(len(voices)), nil
	case "custom":
		o, err := parseOverrides(command[1:])
		if err != nil {
			return "", err
		}
		return s.playCustom(audio.Merge(s.custom, o))
	case "random":
		return s.playCustom(audio.Randomize(s.rand))
	case "set":
		if len(command) != 3 {
			return "", fmt.Errorf("invalid key-value pair %v", command[1:])
		}
		o := &audio.Overrides{}
		if err := o.Set(command[1], command[2]); err != nil {
			return "", err
		}
		custom := audio.Merge(s.custom, o)
		reply, err := paramsReply(custom)
		if err != nil {
			return "", err
		}
		s.custom = custom
		return reply, nil
	case "gain":
		if len(command) != 2 {
			return "", fmt.Errorf("gain is not passed")
		}
		gain, err := strconv.ParseFloat(command[1], 64)
		if err != nil {
			return "", err
		}
		return "", s.output.SetMasterGain(gain)
	case "suspend":
		return "state " + audio.StateSuspended.String(), s.output.Suspend()
	case "resume":
		return "state " + audio.StateRunning.String(), s.output.Resume()
	case "list":
		presets := audio.Presets()
		if len(command) > 1 {
			presets = audio.PresetsByCategory(command[1])
		}
		keys := make([]string, len(presets))
		for i, p := range presets {
			keys[i] = p.Key
		}
		return "presets " + strings.Join(keys, " "), nil
	}
	return "", fmt.Errorf("unknown command %v", command[0])
}

func (s *session) playCustom(p audio.Params) (string, error) {
	if _, err := s.engine.PlayCustom(p); err != nil {
		return "", err
	}
	s.custom = p
	return paramsReply(p)
}

func paramsReply(p audio.Params) (string, error) {
	data, err := p.ToJSON()
	if err != nil {
		return "", err
	}
	return "params " + string(data), nil
}

func parseOverrides(args []string) (*audio.Overrides, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return audio.ParseOverrides([]byte(strings.Join(args, " ")))
}

// ----- Reports ----- //

func sendReports(ctx context.Context, w *lineWriter, output *audio.Context) error {
	t := time.NewTicker(time.Second / 60)
	defer t.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			break loop
		case <-t.C:
			if output.State() != audio.StateRunning {
				continue
			}
			var sb strings.Builder
			sb.WriteString("wave")
			for _, value := range output.Snapshot() {
				sb.WriteByte(' ')
				sb.WriteString(strconv.Itoa(int(value)))
			}
			w.writeLine(sb.String())
		}
	}
	log.Println("sendReports() ended.")
	return nil
}
