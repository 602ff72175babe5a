package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/loomui/loom/pkg/loomcli"
)

func status(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := loomcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "status", "new_client", err)
		return nil
	}
	defer client.Close()
	v, err := client.Version()
	if err != nil {
		printRuntimeErr(ctx, "status", "get_version", err)
		return nil
	}
	st, err := client.Stats()
	if err != nil {
		printRuntimeErr(ctx, "status", "get_stats", err)
		return nil
	}
	fmt.Printf("loomd %s (%s, go %s)\n", v.Version, v.Platform, v.GoVersion)
	fmt.Printf("timers:\t%d\ntasks:\t%d\nticks:\t%d\n", st.Timers, st.Tasks, st.Ticks)
	if !st.LastTick.IsZero() {
		fmt.Printf("last tick:\t%s\n", st.LastTick.Format("15:04:05.000"))
	}
	return nil
}
