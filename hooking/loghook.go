package hooking

import "log"

// LogHook is a hook that writes into a logger.
type LogHook interface {
	Hook
}

// LogHookBase provides the common logic for all LogHooks.
type LogHookBase struct {
	*log.Logger
}
