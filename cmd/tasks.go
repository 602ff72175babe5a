package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/loomui/loom/pkg/loomcli"
)

func tasks(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := loomcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "tasks", "new_client", err)
		return nil
	}
	defer client.Close()
	l, err := client.ListTasks()
	if err != nil {
		printRuntimeErr(ctx, "tasks", "list_tasks", err)
		return nil
	}
	if len(l.Tasks) == 0 {
		fmt.Println("loom: no tasks registered")
		return nil
	}
	txt := "Here are your tasks:"
	txt += "\n\n--------------------------------"
	txt += "\n|  Id  |  State   |  Pending  |"
	txt += "\n|------|----------|-----------|"
	for _, t := range l.Tasks {
		state := "running"
		if t.Finished {
			state = "finished"
		}
		txt += fmt.Sprintf("\n|%s|%s|%s|",
			beaut(fmt.Sprint(t.Id), 6),
			beaut(state, 10),
			beaut(fmt.Sprint(t.Pending), 11),
		)
	}
	txt += "\n--------------------------------"
	fmt.Println(txt)
	return nil
}
