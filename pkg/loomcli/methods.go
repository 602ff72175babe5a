package loomcli

import (
	"context"

	"github.com/loomui/loom/common"
)

func invoke[T any](c *Client, method string, params any) (*T, error) {
	var res T
	if err := c.rpc.CallResult(context.Background(), method, params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Version reports the daemon build.
func (c *Client) Version() (*common.VersionResult, error) {
	return invoke[common.VersionResult](c, common.MethodVersion, nil)
}

// Stats reports scheduler registry sizes and tick progress.
func (c *Client) Stats() (*common.StatsResult, error) {
	return invoke[common.StatsResult](c, common.MethodStats, nil)
}

// ListTimers returns all registered timers.
func (c *Client) ListTimers() (*common.ListTimersResult, error) {
	return invoke[common.ListTimersResult](c, common.MethodListTimers, nil)
}

// ListTasks returns all registered background tasks.
func (c *Client) ListTasks() (*common.ListTasksResult, error) {
	return invoke[common.ListTasksResult](c, common.MethodListTasks, nil)
}

// StopTimer removes the timer with the given id.
func (c *Client) StopTimer(id int64) (bool, error) {
	res, err := invoke[common.StopResult](c, common.MethodStopTimer, common.StopParams{Id: id})
	if err != nil {
		return false, err
	}
	return res.Stopped, nil
}

// StopTask requests cooperative termination of the task with the given id.
func (c *Client) StopTask(id int64) (bool, error) {
	res, err := invoke[common.StopResult](c, common.MethodStopTask, common.StopParams{Id: id})
	if err != nil {
		return false, err
	}
	return res.Stopped, nil
}

// TraceRecent returns up to limit recorded ticks, newest first.
func (c *Client) TraceRecent(limit int) (*common.TraceResult, error) {
	return invoke[common.TraceResult](c, common.MethodTraceRecent, common.TraceParams{Limit: limit})
}
