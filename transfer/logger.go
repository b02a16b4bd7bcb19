package transfer

import (
	"log"

	"github.com/sarchlab/conveyor/hooking"
	"github.com/sarchlab/conveyor/resource"
)

// Logger is a hook that logs units as they enter, leave and stall in links.
type Logger struct {
	hooking.LogHookBase
}

// NewLogger returns a new Logger which will write into the logger.
func NewLogger(logger *log.Logger) *Logger {
	h := new(Logger)
	h.Logger = logger

	return h
}

// Func writes the transfer into the logger.
func (h *Logger) Func(ctx hooking.HookCtx) {
	link, ok := ctx.Domain.(*Link)
	if !ok {
		return
	}

	id, ok := ctx.Item.(resource.ID)
	if !ok {
		return
	}

	if ctx.Detail != nil {
		h.Logger.Printf("%d,%s,%s,%s,%v\n",
			ctx.Now, link.Name(), ctx.Pos.Name, id, ctx.Detail)

		return
	}

	h.Logger.Printf("%d,%s,%s,%s\n", ctx.Now, link.Name(), ctx.Pos.Name, id)
}
