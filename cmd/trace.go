package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/loomui/loom/pkg/loomcli"
)

var (
	traceLimit int

	traceFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "limit, n",
			Usage:       "maximum number of ticks to show (default: 32)",
			Destination: &traceLimit,
		},
	}
)

func traceRecent(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := loomcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "trace", "new_client", err)
		return nil
	}
	defer client.Close()
	res, err := client.TraceRecent(traceLimit)
	if err != nil {
		printRuntimeErr(ctx, "trace", "trace_recent", err)
		return nil
	}
	if len(res.Ticks) == 0 {
		fmt.Println("loom: no ticks recorded")
		return nil
	}
	txt := "Recent ticks (newest first):"
	txt += "\n\n----------------------------------------------------------------"
	txt += "\n|     At       | Fired | Removed | Drained | Done |  Repaint  |"
	txt += "\n|--------------|-------|---------|---------|------|-----------|"
	for _, row := range res.Ticks {
		txt += fmt.Sprintf("\n|%s|%s|%s|%s|%s|%s|",
			beaut(row.At.Format("15:04:05.000"), 14),
			beaut(fmt.Sprint(row.TimersFired), 7),
			beaut(fmt.Sprint(row.TimersRemoved), 9),
			beaut(fmt.Sprint(row.MessagesDrained), 9),
			beaut(fmt.Sprint(row.TasksFinished), 6),
			beaut(row.Repaint, 11),
		)
	}
	txt += "\n----------------------------------------------------------------"
	fmt.Println(txt)
	return nil
}
