package cmd

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli"

	"github.com/loomui/loom/pkg/loomcli"
)

func stopTimer(ctx *cli.Context) error {
	return stopById(ctx, "stop-timer", func(c *loomcli.Client, id int64) (bool, error) {
		return c.StopTimer(id)
	})
}

func stopTask(ctx *cli.Context) error {
	return stopById(ctx, "stop-task", func(c *loomcli.Client, id int64) (bool, error) {
		return c.StopTask(id)
	})
}

func stopById(ctx *cli.Context, cmd string, stop func(*loomcli.Client, int64) (bool, error)) error {
	arg := ctx.Args().First()
	if arg == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if arg == "" {
		return printErrWithCmdHelp(ctx, fmt.Errorf("no id provided"))
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return printErrWithCmdHelp(ctx, fmt.Errorf("invalid id %q", arg))
	}
	client, err := loomcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, cmd, "new_client", err)
		return nil
	}
	defer client.Close()
	if _, err := stop(client, id); err != nil {
		printRuntimeErr(ctx, cmd, "stop", err)
		return nil
	}
	fmt.Printf("loom: stopped %d\n", id)
	return nil
}
