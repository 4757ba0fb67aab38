// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bitmark-inc/accessd/access"
	"github.com/bitmark-inc/accessd/fault"
	"github.com/bitmark-inc/logger"
)

// tool names
const (
	CheckAccess    = "check_access"
	RequestAccess  = "request_access"
	ConfirmPayment = "confirm_payment"
)

const (
	// longest a confirm_payment call may block
	maximumTimeout = 15 * time.Minute

	// longest window confirm_payment may grant
	maximumDuration = 366 * 24 * time.Hour
)

// Orchestrator - the operations behind the tools
type Orchestrator interface {
	CheckAccess(ctx context.Context, handle string) access.Result
	RequestAccess(ctx context.Context, handle string, resource string) access.Result
	ConfirmAndGrant(ctx context.Context, handle string, resource string, duration time.Duration, timeout time.Duration) access.Result
}

type arguments struct {
	Account  string `json:"account"`
	Resource string `json:"resource"`
	Duration uint64 `json:"duration"`
	Timeout  uint64 `json:"timeout"`
}

type tools struct {
	log          *logger.L
	orchestrator Orchestrator
}

// NewServer - an MCP server with the access tools registered
func NewServer(log *logger.L, version string, orchestrator Orchestrator) *mcp.Server {
	t := &tools{
		log:          log,
		orchestrator: orchestrator,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "accessd",
		Version: version,
	}, nil)

	server.AddTool(&mcp.Tool{
		Name:        CheckAccess,
		Description: "Report whether an account currently holds a valid access window.",
		InputSchema: schema(map[string]interface{}{
			"account": property("string", "account handle, e.g. @alice"),
		}),
	}, t.check)

	server.AddTool(&mcp.Tool{
		Name:        RequestAccess,
		Description: "Send a payment request to the account's payer unless one is already outstanding. Does not wait for payment.",
		InputSchema: schema(map[string]interface{}{
			"account":  property("string", "account handle"),
			"resource": property("string", "resource being paid for"),
		}),
	}, t.request)

	server.AddTool(&mcp.Tool{
		Name:        ConfirmPayment,
		Description: "Wait for the account's payment to settle and grant an access window.",
		InputSchema: schema(map[string]interface{}{
			"account":  property("string", "account handle"),
			"resource": property("string", "resource being paid for, prices a new request"),
			"duration": property("integer", "access window in seconds, 0 for the default"),
			"timeout":  property("integer", "seconds to wait for payment, 0 for the default"),
		}),
	}, t.confirm)

	return server
}

func schema(properties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   []string{"account"},
	}
}

func property(kind string, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        kind,
		"description": description,
	}
}

func (t *tools) check(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode(req)
	if nil != err {
		return failure(err), nil
	}
	t.log.Debugf("%s: %q", CheckAccess, args.Account)
	return reply(t.orchestrator.CheckAccess(ctx, args.Account)), nil
}

func (t *tools) request(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode(req)
	if nil != err {
		return failure(err), nil
	}
	t.log.Debugf("%s: %q  resource: %q", RequestAccess, args.Account, args.Resource)
	return reply(t.orchestrator.RequestAccess(ctx, args.Account, args.Resource)), nil
}

func (t *tools) confirm(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode(req)
	if nil != err {
		return failure(err), nil
	}
	timeout := time.Duration(args.Timeout) * time.Second
	if args.Timeout > uint64(maximumTimeout/time.Second) {
		timeout = maximumTimeout
	}
	if args.Duration > uint64(maximumDuration/time.Second) {
		return failure(fault.InvalidDuration), nil
	}
	duration := time.Duration(args.Duration) * time.Second

	t.log.Debugf("%s: %q  resource: %q  duration: %s  timeout: %s", ConfirmPayment, args.Account, args.Resource, duration, timeout)
	return reply(t.orchestrator.ConfirmAndGrant(ctx, args.Account, args.Resource, duration, timeout)), nil
}

func decode(req *mcp.CallToolRequest) (arguments, error) {
	var args arguments
	if nil == req.Params || 0 == len(req.Params.Arguments) {
		return args, nil
	}
	err := json.Unmarshal(req.Params.Arguments, &args)
	return args, err
}

// JSON text for display plus the same value as structured content
func reply(result access.Result) *mcp.CallToolResult {
	text, err := json.Marshal(result)
	if nil != err {
		return failure(err)
	}
	structured := make(map[string]interface{})
	_ = json.Unmarshal(text, &structured)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(text)},
		},
		StructuredContent: structured,
	}
}

func failure(err error) *mcp.CallToolResult {
	text, _ := json.Marshal(access.Result{
		Status:  access.InvalidRequest,
		Message: err.Error(),
	})
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(text)},
		},
	}
}
