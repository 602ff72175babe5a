package cmd

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/loomui/loom/pkg/loomlib"
)

const (
	demoProgressType uint64 = 0x64656d6f01
	demoChunkType    uint64 = 0x64656d6f02

	demoWorkers   = 3
	demoTotal     = int64(48 << 20)
	demoChunkSize = int64(2 << 20)
)

type demoProgress struct {
	bar  *mpb.Bar
	last time.Time
}

func demo(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	l := log.New(io.Discard, "", 0)
	sched := loomlib.NewScheduler(l, nil)
	defer sched.Close()
	p := mpb.New()

	for i := 1; i <= demoWorkers; i++ {
		bar := initDemoBar(p, fmt.Sprintf("Worker %d", i), demoTotal)
		writeback, err := loomlib.Wrap(
			&demoProgress{bar: bar, last: time.Now()},
			demoProgressType, "demo.progress", func(any) {},
		)
		if err != nil {
			printRuntimeErr(ctx, "demo", "wrap_progress", err)
			return nil
		}
		initial, err := loomlib.Wrap(demoTotal, demoChunkType, "demo.budget", func(any) {})
		if err != nil {
			printRuntimeErr(ctx, "demo", "wrap_budget", err)
			return nil
		}
		if _, err := sched.SpawnTask(initial, writeback, demoWorker); err != nil {
			printRuntimeErr(ctx, "demo", "spawn_task", err)
			return nil
		}
	}

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		sched.Tick(time.Now())
		if sched.Stats().Tasks == 0 {
			break
		}
	}
	p.Wait()
	fmt.Println("loom: demo complete")
	return nil
}

func initDemoBar(p *mpb.Progress, name string, total int64) *mpb.Bar {
	barStyle := mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")
	bar := p.New(0,
		barStyle,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.OnComplete(
				decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WC{W: 4}), "Complete",
			),
		),
		mpb.AppendDecorators(
			decor.EwmaSpeed(decor.SizeB1024(0), "% .2f", 30),
		),
	)
	bar.SetTotal(total, false)
	bar.EnableTriggerComplete()
	return bar
}

// demoWorker simulates a chunked transfer, reporting progress through
// writeback messages until its byte budget is spent.
func demoWorker(ctx *loomlib.TaskContext) {
	defer ctx.Data.Drop()

	ref, err := ctx.Data.Borrow(demoChunkType)
	if err != nil {
		return
	}
	budget := ref.Data().(int64)
	ref.Release()

	for done := int64(0); done < budget; {
		if ctx.ShouldStop() {
			return
		}
		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
		n := demoChunkSize
		if rem := budget - done; n > rem {
			n = rem
		}
		done += n
		chunk, err := loomlib.Wrap(n, demoChunkType, "demo.chunk", func(any) {})
		if err != nil {
			return
		}
		ctx.Sender.Send(loomlib.TaskMsg{
			Kind:      loomlib.TaskMsgWriteBack,
			Data:      chunk,
			WriteBack: applyDemoProgress,
		})
	}
}

// applyDemoProgress runs on the ticking goroutine and advances the
// worker's bar by the reported chunk size.
func applyDemoProgress(target, data *loomlib.Value) loomlib.Repaint {
	chunk, err := data.Borrow(demoChunkType)
	if err != nil {
		return loomlib.RepaintNone
	}
	n := chunk.Data().(int64)
	chunk.Release()

	ref, err := target.BorrowMut(demoProgressType)
	if err != nil {
		return loomlib.RepaintNone
	}
	defer ref.Release()
	prog := ref.Data().(*demoProgress)
	prog.bar.EwmaIncrBy(int(n), time.Since(prog.last))
	prog.last = time.Now()
	return loomlib.RepaintDom
}
