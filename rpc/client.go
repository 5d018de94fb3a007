// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"errors"
	"net"

	"github.com/kortschak/jsonrpc2"

	"github.com/kortschak/ice/platform"
)

var clientUID = UID{Module: "ice", Service: "client"}

// Client is a connection to a Server.
type Client struct {
	conn *jsonrpc2.Connection
}

// Dial returns a new Client connected to the server at addr on network.
func Dial(ctx context.Context, network, addr string) (*Client, error) {
	conn, err := jsonrpc2.Dial(ctx, jsonrpc2.NetDialer(network, addr, net.Dialer{}), jsonrpc2.ConnectionOptions{})
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func call[R, T any](ctx context.Context, c *Client, method string, body T) (R, error) {
	var resp Message[R]
	err := c.conn.Call(ctx, method, NewMessage(clientUID, body)).Await(ctx, &resp)
	return resp.Body, err
}

// Who returns the server's version.
func (c *Client) Who(ctx context.Context) (string, error) {
	return call[string](ctx, c, Who, None{})
}

// Probe returns the server host's capability report.
func (c *Client) Probe(ctx context.Context) (platform.Report, error) {
	return call[platform.Report](ctx, c, Probe, None{})
}

// Status returns the server's status.
func (c *Client) Status(ctx context.Context) (ServerStatus, error) {
	return call[ServerStatus](ctx, c, Status, None{})
}

// Get returns the server's clipboard content.
func (c *Client) Get(ctx context.Context) (string, error) {
	return call[string](ctx, c, ClipboardGet, None{})
}

// Set sets the server's clipboard content.
func (c *Client) Set(ctx context.Context, text string) error {
	_, err := call[string](ctx, c, ClipboardSet, text)
	return err
}

// Clear clears the server's clipboard.
func (c *Client) Clear(ctx context.Context) error {
	_, err := call[string](ctx, c, ClipboardClear, None{})
	return err
}

// Matches returns whether the server's clipboard content is equal to text.
func (c *Client) Matches(ctx context.Context, text string) (bool, error) {
	return call[bool](ctx, c, ClipboardMatches, text)
}

// Stop asks the server to stop.
func (c *Client) Stop(ctx context.Context) error {
	return c.conn.Notify(ctx, Stop, NewMessage(clientUID, None{}))
}

// Close closes the client's connection.
func (c *Client) Close() error {
	err := c.conn.Close()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
