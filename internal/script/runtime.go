// Package script loads JavaScript timer definitions into goja runtimes
// and adapts them to scheduler timers. Each script gets its own isolated
// runtime, so scripts cannot observe each other's globals.
package script

import (
	"errors"
	"fmt"
	"log"

	"github.com/dop251/goja"
	requirePkg "github.com/dop251/goja_nodejs/require"
)

var (
	ErrNoTimerObject = errors.New("script does not define a 'timer' object")
	ErrNoOnTick      = errors.New("script does not define an 'onTick' function")
)

type Runtime struct {
	*requirePkg.RequireModule
	*goja.Runtime
	l *log.Logger
}

// NewRuntime creates an isolated js runtime with require() resolving
// relative to wd.
func NewRuntime(l *log.Logger, wd string) (*Runtime, error) {
	registry := requirePkg.NewRegistry(requirePkg.WithGlobalFolders(wd))
	runtime := goja.New()
	reqM := registry.Enable(runtime)
	if err := runtime.Set("print", print); err != nil {
		return nil, err
	}
	cRuntime := Runtime{
		Runtime:       runtime,
		RequireModule: reqM,
		l:             l,
	}
	if err := runtime.Set("log", cRuntime.logValue); err != nil {
		return nil, err
	}
	return &cRuntime, nil
}

func print(call goja.FunctionCall) goja.Value {
	for _, v := range call.Arguments {
		fmt.Print(v.Export())
		fmt.Print(" ")
	}
	fmt.Print("\n")
	return nil
}

func (r *Runtime) logValue(call goja.FunctionCall) goja.Value {
	if r.l == nil {
		return nil
	}
	for _, v := range call.Arguments {
		r.l.Println(v.Export())
	}
	return nil
}
