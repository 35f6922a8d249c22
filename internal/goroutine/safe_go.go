// Package goroutine запускает фоновые задачи так, чтобы паника не роняла процесс.
package goroutine

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/turismo/internal/logger"
)

// Group отслеживает запущенные фоновые задачи, чтобы дождаться их при остановке.
type Group struct {
	wg sync.WaitGroup
}

// Go запускает fn в горутине. Паника логируется со стеком и не распространяется.
func (g *Group) Go(ctx context.Context, name string, fn func(context.Context)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer recoverPanic(ctx, name)
		fn(ctx)
	}()
}

// Wait ждёт завершения всех задач группы.
func (g *Group) Wait() {
	g.wg.Wait()
}

var background Group

// SafeGo запускает задачу в глобальной группе.
func SafeGo(ctx context.Context, name string, fn func(context.Context)) {
	background.Go(ctx, name, fn)
}

// Wait ждёт задачи, запущенные через SafeGo.
func Wait() {
	background.Wait()
}

func recoverPanic(ctx context.Context, name string) {
	if r := recover(); r != nil {
		logger.WithContext(ctx).WithFields(logrus.Fields{
			"task":  name,
			"panic": fmt.Sprint(r),
			"stack": string(debug.Stack()),
		}).Error("goroutine: паника в фоновой задаче")
	}
}
