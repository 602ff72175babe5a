package cmd

import (
	"fmt"

	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

func Execute(args []string, bArgs BuildArgs) error {
	date = bArgs.Date
	commit = bArgs.Commit
	app := cli.App{
		Name:                  "Loom",
		HelpName:              "loom",
		Usage:                 "A cooperative timer and task runtime.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "loom <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          usageErrorCallback,
		Commands: []cli.Command{
			{
				Name:               "daemon",
				Usage:              "run the scheduler daemon in the foreground",
				Action:             daemon,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        DaemonDescription,
				Flags:              daemonFlags,
			},
			{
				Name:               "status",
				Aliases:            []string{"s"},
				Usage:              "show daemon build and scheduler stats",
				Action:             status,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StatusDescription,
			},
			{
				Name:               "timers",
				Aliases:            []string{"t"},
				Usage:              "list registered timers",
				Action:             timers,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        TimersDescription,
			},
			{
				Name:               "tasks",
				Usage:              "list registered background tasks",
				Action:             tasks,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        TasksDescription,
			},
			{
				Name:               "stop-timer",
				Usage:              "remove a timer by id",
				Action:             stopTimer,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StopTimerDescription,
			},
			{
				Name:               "stop-task",
				Usage:              "request cooperative stop of a task by id",
				Action:             stopTask,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StopTaskDescription,
			},
			{
				Name:                   "trace",
				Usage:                  "show recently recorded scheduler ticks",
				Action:                 traceRecent,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            TraceDescription,
				UseShortOptionHandling: true,
				Flags:                  traceFlags,
			},
			{
				Name:               "demo",
				Usage:              "run an in-process scheduler demo",
				Action:             demo,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        DemoDescription,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of loom",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             getVersion,
			},
		},
		Action:      status,
		HideHelp:    true,
		HideVersion: true,
	}
	return app.Run(args)
}
