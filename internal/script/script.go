package script

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/loomui/loom/pkg/loomlib"
)

// scriptTypeID tags the opaque value a script timer carries. Scripts keep
// their state inside the js runtime, so the payload is an empty marker.
const scriptTypeID uint64 = 0x6c6f6f6d

// TimerSpec is the schedule a script declares through its global
// 'timer' object. Durations are js strings in time.ParseDuration form.
type TimerSpec struct {
	Delay    time.Duration
	Interval time.Duration
	Timeout  time.Duration
	Cron     string
}

// Script is one loaded timer definition bound to its own runtime.
type Script struct {
	Name    string
	Spec    TimerSpec
	runtime *Runtime
	onTick  goja.Callable
}

// Load reads and evaluates a timer script. The script must define a
// global 'timer' object and a global 'onTick(info)' function.
func Load(l *log.Logger, path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	runtime, err := NewRuntime(l, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if _, err := runtime.RunScript(filepath.Base(path), string(src)); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	spec, err := readSpec(runtime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	fn, ok := goja.AssertFunction(runtime.Get("onTick"))
	if !ok {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNoOnTick)
	}

	name := strings.TrimSuffix(filepath.Base(path), ".js")
	return &Script{
		Name:    name,
		Spec:    spec,
		runtime: runtime,
		onTick:  fn,
	}, nil
}

// LoadDir loads every *.js file in dir, sorted by name.
// A directory that does not exist yields no scripts.
func LoadDir(l *log.Logger, dir string) ([]*Script, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.js"))
	if err != nil {
		return nil, err
	}
	var scripts []*Script
	for _, path := range entries {
		s, err := Load(l, path)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}

// Timer builds a scheduler timer for the script.
// The scheduler invokes all timer callbacks on the tick goroutine, which
// keeps access to the script's runtime single-threaded.
func (s *Script) Timer(now time.Time) (*loomlib.Timer, error) {
	data, err := loomlib.Wrap(struct{}{}, scriptTypeID, "script:"+s.Name, func(any) {})
	if err != nil {
		return nil, err
	}
	t := loomlib.NewTimer(data, s.callback, now).
		WithDelay(s.Spec.Delay).
		WithInterval(s.Spec.Interval).
		WithTimeout(s.Spec.Timeout)
	if s.Spec.Cron != "" {
		return t.WithCron(s.Spec.Cron)
	}
	return t, nil
}

func (s *Script) callback(_ *loomlib.Value, info loomlib.TimerInfo) loomlib.TimerAction {
	arg := s.runtime.NewObject()
	_ = arg.Set("now", info.Now.UnixMilli())
	_ = arg.Set("created", info.Created.UnixMilli())
	_ = arg.Set("lastRun", info.LastRun.UnixMilli())
	_ = arg.Set("runCount", info.RunCount)
	_ = arg.Set("nodeId", info.NodeID)
	_ = arg.Set("aboutToFinish", info.AboutToFinish)

	res, err := s.onTick(goja.Undefined(), arg)
	if err != nil {
		// A throwing script stops its timer rather than throwing again
		// every tick.
		if s.runtime.l != nil {
			s.runtime.l.Printf("script %s: onTick failed: %v", s.Name, err)
		}
		return loomlib.TimerStop
	}
	if res != nil && res.String() == "stop" {
		return loomlib.TimerStop
	}
	return loomlib.TimerContinue
}

func readSpec(runtime *Runtime) (TimerSpec, error) {
	var spec TimerSpec
	v := runtime.Get("timer")
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return spec, ErrNoTimerObject
	}
	obj := v.ToObject(runtime.Runtime)

	var err error
	if spec.Delay, err = durationField(obj, "delay"); err != nil {
		return spec, err
	}
	if spec.Interval, err = durationField(obj, "interval"); err != nil {
		return spec, err
	}
	if spec.Timeout, err = durationField(obj, "timeout"); err != nil {
		return spec, err
	}
	if c := obj.Get("cron"); c != nil && !goja.IsUndefined(c) && !goja.IsNull(c) {
		spec.Cron = c.String()
	}
	return spec, nil
}

func durationField(obj *goja.Object, key string) (time.Duration, error) {
	v := obj.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0, nil
	}
	d, err := time.ParseDuration(v.String())
	if err != nil {
		return 0, fmt.Errorf("timer.%s: %w", key, err)
	}
	return d, nil
}
