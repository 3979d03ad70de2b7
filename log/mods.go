package log

import "log/slog"

// HandlerMod is a log-handler wrapping function.
type HandlerMod func(slog.Handler) slog.Handler

// Handler is a slog.Handler you can unwrap, to access inner handler functionality.
type Handler interface {
	slog.Handler
	Unwrap() slog.Handler
}

// FindHandler finds a handler with a particular handler type, or returns ok=false if not found.
func FindHandler[H slog.Handler](h slog.Handler) (out H, ok bool) {
	for h != nil {
		if found, isH := h.(H); isH {
			return found, true
		}
		unwrappable, canUnwrap := h.(Handler)
		if !canUnwrap {
			break
		}
		h = unwrappable.Unwrap()
	}
	return out, false
}
