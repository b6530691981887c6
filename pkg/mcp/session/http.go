package session

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"

	// Packages
	client "github.com/mutablelogic/go-client"
	skill "github.com/mutablelogic/go-skill"
	config "github.com/mutablelogic/go-skill/pkg/config"
	mcp "github.com/mutablelogic/go-skill/pkg/mcp"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// httpTransport speaks MCP Streamable HTTP: each JSON-RPC request is a POST
// which the server may answer with plain JSON or a short SSE stream. The
// session identifier issued by the server is echoed on subsequent requests
// and used to terminate the session on Close.
type httpTransport struct {
	*client.Client
	sessionId string
}

// response wraps a JSON-RPC response and captures the Mcp-Session-Id header.
type response struct {
	mcp.Response
	sessionId *string
}

// Ensure response implements client.Unmarshaler
var _ client.Unmarshaler = (*response)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// MCP Streamable HTTP requires both JSON and SSE in Accept header
	mcpAccept = "application/json, text/event-stream"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func newHTTPTransport(service *config.Service, opts ...client.ClientOpt) (*httpTransport, error) {
	// The only channel this transport can open is http or https
	if u, err := url.Parse(service.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, skill.ErrDependencyMissing.Withf("unsupported url %q", service.URL)
	}

	t := new(httpTransport)
	defaults := []client.ClientOpt{
		client.OptEndpoint(service.URL),
	}
	if httpClient, err := client.New(append(defaults, opts...)...); err != nil {
		return nil, skill.ErrTransport.With(err)
	} else {
		t.Client = httpClient
	}
	return t, nil
}

// Close sends a DELETE with the session ID to terminate the session. It is
// a no-op when the server never issued one.
func (t *httpTransport) Close() error {
	if t.sessionId == "" {
		return nil
	}
	sessionId := t.sessionId
	t.sessionId = ""
	return t.DoWithContext(
		context.Background(),
		client.MethodDelete,
		nil,
		client.OptReqHeader("Mcp-Session-Id", sessionId),
	)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (t *httpTransport) Do(ctx context.Context, req mcp.Request) (*mcp.Response, error) {
	payload, err := client.NewJSONRequestEx(http.MethodPost, req, mcpAccept)
	if err != nil {
		return nil, err
	}

	var resp response
	resp.sessionId = &t.sessionId
	opts := t.reqOpts(
		client.OptNoTimeout(),
		client.OptTextStreamCallback(resp.eventCallback()),
	)
	if err := t.DoWithContext(ctx, payload, &resp, opts...); err != nil {
		return nil, err
	}
	return &resp.Response, nil
}

func (t *httpTransport) Notify(ctx context.Context, req mcp.Request) error {
	payload, err := client.NewJSONRequestEx(http.MethodPost, req, mcpAccept)
	if err != nil {
		return err
	}
	// Notifications return no content, pass nil for out
	return t.DoWithContext(ctx, payload, nil, t.reqOpts()...)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// reqOpts returns request options including the session ID header.
func (t *httpTransport) reqOpts(extra ...client.RequestOpt) []client.RequestOpt {
	opts := make([]client.RequestOpt, 0, len(extra)+1)
	if t.sessionId != "" {
		opts = append(opts, client.OptReqHeader("Mcp-Session-Id", t.sessionId))
	}
	return append(opts, extra...)
}

///////////////////////////////////////////////////////////////////////////////
// UNMARSHALER

func (r *response) Unmarshal(header http.Header, body io.Reader) error {
	// Capture session ID from response header
	if id := header.Get("Mcp-Session-Id"); id != "" && r.sessionId != nil {
		*r.sessionId = id
	}

	// Check content type - if SSE, fall through to go-client's native handler
	if ct := header.Get("Content-Type"); ct != "" {
		if mimetype, _, err := mime.ParseMediaType(ct); err == nil && mimetype == client.ContentTypeTextStream {
			return httpresponse.ErrNotImplemented
		}
	}

	// Decode the JSON-RPC response
	return json.NewDecoder(body).Decode(&r.Response)
}

// eventCallback returns a TextStreamCallback that decodes SSE events
// containing JSON-RPC messages into this response. Server notifications
// (messages without an ID) are skipped.
func (r *response) eventCallback() client.TextStreamCallback {
	return func(event client.TextStreamEvent) error {
		// MCP sends JSON-RPC responses as "message" events (or default unnamed events)
		if event.Event != "message" && event.Event != "" {
			return nil
		}

		// Peek at the message to check if it's a notification (no ID)
		var msg mcp.Request
		if err := event.Json(&msg); err != nil {
			return err
		}
		if msg.ID == nil && msg.Method != "" {
			return nil // keep streaming
		}

		// It's a response — decode into our response struct
		if err := event.Json(&r.Response); err != nil {
			return err
		}
		return io.EOF // got our response, stop streaming
	}
}
