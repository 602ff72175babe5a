// Package loomcli is the client library for the loom daemon's JSON-RPC
// surface. It connects over the platform socket (Unix socket or Windows
// named pipe) with TCP fallback.
package loomcli

import (
	"fmt"
	"net"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
)

// dialFunc points to the network dialer. Tests replace it to observe or
// fake transports.
var dialFunc = net.Dial

type Client struct {
	conn net.Conn
	rpc  *jrpc2.Client
}

// NewClient connects to the daemon over the platform socket.
func NewClient() (*Client, error) {
	conn, err := dial()
	if err != nil {
		return nil, fmt.Errorf("error connecting to daemon: %s", err.Error())
	}
	return &Client{
		conn: conn,
		rpc:  jrpc2.NewClient(channel.Line(conn, conn), nil),
	}, nil
}

// Close shuts down the RPC session and the underlying connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}
