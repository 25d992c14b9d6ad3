// Package feed receives update batches over UDP. Each datagram carries one
// JSON batch envelope; the dispatch summary is sent back to the producer
// once the scheduler has applied the batch.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stabrig/rigview/internal/dispatch"
)

const (
	// maxDatagram bounds a single batch envelope. Producers chunk larger
	// updates into several batches.
	maxDatagram = 64 * 1024

	readPollInterval = 100 * time.Millisecond
)

// Sink accepts batches for deferred application. Satisfied by engine.Engine.
type Sink interface {
	Enqueue(batch any, ack func(dispatch.Summary))
}

// Config holds the listener settings.
type Config struct {
	ListenAddr string
	ReadBuffer int
}

// Listener reads batch datagrams and feeds them to the sink.
type Listener struct {
	cfg  Config
	sink Sink
	log  zerolog.Logger

	mu   sync.Mutex
	conn *net.UDPConn
}

// NewListener creates a feed listener. Serve must be called to start it.
func NewListener(cfg Config, sink Sink, log zerolog.Logger) *Listener {
	return &Listener{cfg: cfg, sink: sink, log: log}
}

// Addr returns the bound address, or nil before Serve.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr()
}

// Serve binds the socket and processes datagrams until ctx is cancelled.
func (l *Listener) Serve(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", l.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("resolve feed address %q: %w", l.cfg.ListenAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("listen on %q: %w", l.cfg.ListenAddr, err)
	}
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
	defer conn.Close()

	if l.cfg.ReadBuffer > 0 {
		if err := conn.SetReadBuffer(l.cfg.ReadBuffer); err != nil {
			l.log.Warn().Err(err).Int("bytes", l.cfg.ReadBuffer).Msg("could not set receive buffer")
		}
	}
	l.log.Info().Stringer("addr", conn.LocalAddr()).Msg("feed listening")

	buffer := make([]byte, maxDatagram)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Short deadline so cancellation is noticed between datagrams.
		_ = conn.SetReadDeadline(time.Now().Add(readPollInterval))

		n, sender, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.log.Error().Err(err).Msg("feed read failed")
			continue
		}

		datagram := make([]byte, n)
		copy(datagram, buffer[:n])
		l.handle(datagram, sender)
	}
}

// handle decodes one datagram and enqueues it. Malformed JSON is rejected
// immediately with an error reply; well formed batches are acknowledged
// after the scheduler applies them.
func (l *Listener) handle(datagram []byte, sender *net.UDPAddr) {
	var batch any
	if err := json.Unmarshal(datagram, &batch); err != nil {
		l.log.Debug().Err(err).Stringer("sender", sender).Msg("discarding malformed datagram")
		l.reply(sender, errorReply{Error: "malformed batch: not valid JSON"})
		return
	}

	l.sink.Enqueue(batch, func(s dispatch.Summary) {
		l.reply(sender, s)
	})
}

type errorReply struct {
	Error string `json:"error"`
}

func (l *Listener) reply(sender *net.UDPAddr, payload any) {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	if conn == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		l.log.Error().Err(err).Msg("could not encode reply")
		return
	}
	if _, err := conn.WriteToUDP(body, sender); err != nil {
		l.log.Debug().Err(err).Stringer("sender", sender).Msg("could not send reply")
	}
}
