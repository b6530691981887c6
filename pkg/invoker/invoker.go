// Package invoker performs exactly one operation - list, describe or call -
// against one freshly opened session, then tears it down. Results are
// normalized before being written: text content is written as text, any
// other content as an indented JSON document, so callers never need to know
// which shape the server returned.
package invoker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	// Packages
	skill "github.com/mutablelogic/go-skill"
	config "github.com/mutablelogic/go-skill/pkg/config"
	session "github.com/mutablelogic/go-skill/pkg/mcp/session"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Request selects the single operation to perform. Exactly one field may
// be set.
type Request struct {
	List     bool   // enumerate tool names and descriptions
	Describe string // tool name to fetch the full descriptor for
	Call     string // raw JSON of the form {"tool": name, "arguments": {...}}
}

// toolCall is the wire shape accepted by the Call operation.
type toolCall struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Run opens a session to the service, performs the requested operation and
// writes the normalized result to w. The session is torn down on every
// exit path, and nothing is retried.
func Run(ctx context.Context, service *config.Service, req Request, w io.Writer, opts ...session.Opt) error {
	var n int
	if req.List {
		n++
	}
	if req.Describe != "" {
		n++
	}
	if req.Call != "" {
		n++
	}
	if n != 1 {
		return skill.ErrBadParameter.With("exactly one of list, describe or call is required")
	}

	sess, err := session.New(ctx, service, opts...)
	if err != nil {
		return err
	}
	defer sess.Close()

	switch {
	case req.List:
		return list(ctx, sess, w)
	case req.Describe != "":
		return describe(ctx, sess, req.Describe, w)
	default:
		return call(ctx, sess, req.Call, w)
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// list writes the tool names and descriptions as a JSON array, in the
// order the server returned them.
func list(ctx context.Context, sess session.Session, w io.Writer) error {
	tools, err := sess.ListTools(ctx)
	if err != nil {
		return err
	}

	type summary struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	result := make([]summary, 0, len(tools))
	for _, tool := range tools {
		result = append(result, summary{Name: tool.Name, Description: tool.Description})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// describe writes the full descriptor for one tool. An unknown name is an
// error here at the invocation boundary, although the session reports it
// as a nil descriptor.
func describe(ctx context.Context, sess session.Session, name string, w io.Writer) error {
	tool, err := sess.DescribeTool(ctx, name)
	if err != nil {
		return err
	}
	if tool == nil {
		return skill.ErrToolNotFound.Withf("%q", name)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tool)
}

// call parses the tool call JSON, executes it, and writes each content
// item of the result.
func call(ctx context.Context, sess session.Session, data string, w io.Writer) error {
	var req toolCall
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return skill.ErrBadParameter.Withf("invalid call JSON: %v", err)
	}
	if req.Tool == "" {
		return skill.ErrBadParameter.With("missing tool name in call JSON")
	}

	result, err := sess.CallTool(ctx, req.Tool, req.Arguments)
	if err != nil {
		return err
	}

	for _, content := range result.Content {
		if content.Type == "text" {
			if _, err := fmt.Fprintln(w, content.Text); err != nil {
				return err
			}
			continue
		}
		data, err := json.MarshalIndent(content, "", "  ")
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return err
		}
	}
	return nil
}
