package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/loomui/loom/common"
	"github.com/loomui/loom/pkg/loomcli"
)

func timers(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := loomcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "timers", "new_client", err)
		return nil
	}
	defer client.Close()
	l, err := client.ListTimers()
	if err != nil {
		printRuntimeErr(ctx, "timers", "list_timers", err)
		return nil
	}
	if len(l.Timers) == 0 {
		fmt.Println("loom: no timers registered")
		return nil
	}
	txt := "Here are your timers:"
	txt += "\n\n-----------------------------------------------"
	txt += "\n|  Id  | Node |   Schedule   | Runs |  Last Run |"
	txt += "\n|------|------|--------------|------|-----------|"
	for _, t := range l.Timers {
		lastRun := "never"
		if !t.LastRun.IsZero() {
			lastRun = t.LastRun.Format("15:04:05")
		}
		txt += fmt.Sprintf("\n|%s|%s|%s|%s|%s|",
			beaut(fmt.Sprint(t.Id), 6),
			beaut(fmt.Sprint(t.NodeId), 6),
			beaut(scheduleLabel(t), 14),
			beaut(fmt.Sprint(t.RunCount), 6),
			beaut(lastRun, 11),
		)
	}
	txt += "\n-----------------------------------------------"
	fmt.Println(txt)
	return nil
}

func scheduleLabel(t common.TimerRow) string {
	switch {
	case t.Cron != "":
		s := t.Cron
		if len(s) > 12 {
			s = s[:9] + "..."
		}
		return s
	case t.Recurring:
		return "interval"
	default:
		return "one-shot"
	}
}
