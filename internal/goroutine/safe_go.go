package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/mzhuravlev/supplyhub-backend/internal/logger"
)

// SafeGo запускает горутину с перехватом panic, чтобы фоновая задача
// (например, доставка уведомления) не уронила процесс.
func SafeGo(fn func()) {
	go func() {
		defer logPanic()
		fn()
	}()
}

// SafeGoWithContext — вариант SafeGo с передачей контекста.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer logPanic()
		fn(ctx)
	}()
}

func logPanic() {
	if r := recover(); r != nil {
		if logger.Log != nil {
			logger.Log.WithField("panic", r).Errorf("goroutine: panic\n%s", debug.Stack())
		}
	}
}
