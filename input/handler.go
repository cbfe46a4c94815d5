// Package input turns terminal events into driver commands
package input

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/tliron/commonlog"

	"github.com/lixenwraith/vi-danmaku/sim"
)

var log = commonlog.GetLogger("danmaku.input")

// EventSource blocks until the next terminal event, nil once the screen is finalized
type EventSource interface {
	PollEvent() tcell.Event
}

// Submitter enqueues a command for the simulation goroutine
type Submitter interface {
	Submit(cmd any) bool
}

// Handler maps terminal events through a key table
type Handler struct {
	table *KeyTable
}

// NewHandler creates a handler, nil table selects the default bindings
func NewHandler(table *KeyTable) *Handler {
	if table == nil {
		table = DefaultKeyTable()
	}
	return &Handler{table: table}
}

// Translate returns the command for ev, nil when the event is ignored
func (h *Handler) Translate(ev tcell.Event) any {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return h.table.Lookup(ev).Command()
	case *tcell.EventResize:
		w, hgt := ev.Size()
		return sim.Resize{Width: w, Height: hgt}
	}
	return nil
}

// Run forwards events until the source closes, ctx ends, the driver stops or a quit key is seen
// A blocked PollEvent is woken by posting an interrupt event after cancelling ctx
func (h *Handler) Run(ctx context.Context, src EventSource, sink Submitter) error {
	for {
		ev := src.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return nil
		}

		cmd := h.Translate(ev)
		if cmd == nil {
			continue
		}
		if !sink.Submit(cmd) {
			log.Debugf("driver stopped, input loop exiting")
			return nil
		}
		if _, quit := cmd.(sim.Quit); quit {
			return nil
		}
	}
}
