// Package session provides a scoped, initialized connection to an MCP
// server. A session is opened for a single invocation: construction spawns
// or connects the transport and performs the initialize handshake, the
// caller performs sequential operations, and Close tears the channel down.
// The transport variant is selected once from the service config and never
// re-inspected.
package session

import (
	"context"
	"encoding/json"
	"sync/atomic"

	// Packages
	client "github.com/mutablelogic/go-client"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	skill "github.com/mutablelogic/go-skill"
	config "github.com/mutablelogic/go-skill/pkg/config"
	mcp "github.com/mutablelogic/go-skill/pkg/mcp"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Session is a live, initialized connection to an MCP server.
type Session interface {
	// ListTools returns the tools declared by the server, in the order
	// the server returns them.
	ListTools(ctx context.Context) ([]*mcp.Tool, error)

	// DescribeTool returns the full descriptor for a named tool, or nil
	// (without error) when the server does not declare it.
	DescribeTool(ctx context.Context, name string) (*mcp.Tool, error)

	// CallTool executes a named tool with the given arguments.
	CallTool(ctx context.Context, name string, args map[string]any) (*mcp.ResponseToolCall, error)

	// Close tears down the underlying channel. It is idempotent.
	Close() error
}

// transport carries JSON-RPC messages over one channel kind. Do sends a
// request and returns its response; Notify sends a message with no reply.
type transport interface {
	Do(ctx context.Context, req mcp.Request) (*mcp.Response, error)
	Notify(ctx context.Context, req mcp.Request) error
	Close() error
}

type session struct {
	service *config.Service
	tp      transport
	tracer  trace.Tracer
	info    mcp.ClientInfo
	server  mcp.ResponseInitialize
	id      atomic.Int64
}

// Opt is a session construction option
type Opt func(*opts)

type opts struct {
	info       mcp.ClientInfo
	tracer     trace.Tracer
	clientOpts []client.ClientOpt
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New opens a transport to the service and performs the initialize
// handshake. On any failure the channel is torn down before returning;
// there is no retry or reconnect.
func New(ctx context.Context, service *config.Service, opt ...Opt) (Session, error) {
	if service == nil {
		return nil, skill.ErrBadParameter.With("missing service")
	}
	if err := service.Validate(); err != nil {
		return nil, err
	}

	o := opts{
		info: mcp.ClientInfo{Name: "go-skill", Version: "1.0.0"},
	}
	for _, fn := range opt {
		fn(&o)
	}

	var tp transport
	var err error
	switch service.Kind() {
	case config.TransportHTTP:
		tp, err = newHTTPTransport(service, o.clientOpts...)
	default:
		tp, err = newStdioTransport(ctx, service)
	}
	if err != nil {
		return nil, err
	}

	s := &session{
		service: service,
		tp:      tp,
		tracer:  o.tracer,
		info:    o.info,
	}
	if err := s.init(ctx); err != nil {
		tp.Close()
		return nil, err
	}
	return s, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithClientInfo sets the client name and version sent in the handshake.
func WithClientInfo(name, version string) Opt {
	return func(o *opts) {
		o.info = mcp.ClientInfo{Name: name, Version: version}
	}
}

// WithTracer sets an OpenTelemetry tracer for session operations.
func WithTracer(tracer trace.Tracer) Opt {
	return func(o *opts) {
		o.tracer = tracer
	}
}

// WithClientOpts appends options for the underlying HTTP client. Ignored
// by the stdio transport.
func WithClientOpts(clientOpts ...client.ClientOpt) Opt {
	return func(o *opts) {
		o.clientOpts = append(o.clientOpts, clientOpts...)
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (s *session) ListTools(ctx context.Context) (result []*mcp.Tool, err error) {
	ctx, endSpan := otel.StartSpan(s.tracer, ctx, "ListTools",
		attribute.String("server", s.service.Name),
	)
	defer func() { endSpan(err) }()

	var cursor string
	for {
		var params json.RawMessage
		if cursor != "" {
			data, err := json.Marshal(mcp.RequestList{Cursor: cursor})
			if err != nil {
				return nil, err
			}
			params = data
		}

		resp, err := s.tp.Do(ctx, mcp.Request{
			Version: mcp.RPCVersion,
			Method:  mcp.MessageTypeListTools,
			ID:      s.nextId(),
			Payload: params,
		})
		if err != nil {
			return nil, skill.ErrTransport.With(err)
		}
		if resp.Err != nil {
			return nil, resp.Err
		}

		var listResp mcp.ResponseListTools
		if err := json.Unmarshal(resp.Result, &listResp); err != nil {
			return nil, skill.ErrTransport.With(err)
		}
		result = append(result, listResp.Tools...)

		if listResp.NextCursor == "" {
			break
		}
		cursor = listResp.NextCursor
	}
	return result, nil
}

// DescribeTool lists the declared tools and returns the matching one. The
// MCP protocol has no per-tool fetch, so this pays one list round-trip. An
// unknown name is a nil result, not an error.
func (s *session) DescribeTool(ctx context.Context, name string) (result *mcp.Tool, err error) {
	ctx, endSpan := otel.StartSpan(s.tracer, ctx, "DescribeTool",
		attribute.String("server", s.service.Name),
		attribute.String("tool", name),
	)
	defer func() { endSpan(err) }()

	tools, err := s.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	for _, tool := range tools {
		if tool.Name == name {
			return tool, nil
		}
	}
	return nil, nil
}

func (s *session) CallTool(ctx context.Context, name string, args map[string]any) (result *mcp.ResponseToolCall, err error) {
	ctx, endSpan := otel.StartSpan(s.tracer, ctx, "CallTool",
		attribute.String("server", s.service.Name),
		attribute.String("tool", name),
	)
	defer func() { endSpan(err) }()

	params, err := json.Marshal(mcp.RequestToolCall{Name: name, Arguments: args})
	if err != nil {
		return nil, err
	}

	resp, err := s.tp.Do(ctx, mcp.Request{
		Version: mcp.RPCVersion,
		Method:  mcp.MessageTypeCallTool,
		ID:      s.nextId(),
		Payload: params,
	})
	if err != nil {
		return nil, skill.ErrTransport.With(err)
	}

	// An unknown tool is reported by the server as method not found; any
	// other server-reported error passes through verbatim.
	if resp.Err != nil {
		if resp.Err.Code == mcp.ErrorCodeMethodNotFound {
			return nil, skill.ErrToolNotFound.Withf("%q", name)
		}
		return nil, skill.ErrCall.With(resp.Err.Message)
	}

	var out mcp.ResponseToolCall
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		return nil, skill.ErrTransport.With(err)
	}
	if out.Error {
		return nil, skill.ErrCall.With(out.Text())
	}
	return &out, nil
}

func (s *session) Close() error {
	return s.tp.Close()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// init performs the MCP initialize handshake followed by the initialized
// notification. Any failure is fatal for the session.
func (s *session) init(ctx context.Context) error {
	params, err := json.Marshal(mcp.RequestInitialize{
		ProtocolVersion: mcp.ProtocolVersion,
		Capabilities:    map[string]any{},
		ClientInfo:      s.info,
	})
	if err != nil {
		return err
	}

	resp, err := s.tp.Do(ctx, mcp.Request{
		Version: mcp.RPCVersion,
		Method:  mcp.MessageTypeInitialize,
		ID:      s.nextId(),
		Payload: params,
	})
	if err != nil {
		return skill.ErrTransport.With(err)
	}
	if resp.Err != nil {
		return skill.ErrTransport.With(resp.Err)
	}
	if resp.Result != nil {
		if err := json.Unmarshal(resp.Result, &s.server); err != nil {
			return skill.ErrTransport.With(err)
		}
	}

	// Initialized notification (no ID, no response)
	if err := s.tp.Notify(ctx, mcp.Request{
		Version: mcp.RPCVersion,
		Method:  mcp.NotificationTypeInitialize,
	}); err != nil {
		return skill.ErrTransport.With(err)
	}
	return nil
}

func (s *session) nextId() int64 {
	return s.id.Add(1)
}
