// Package config normalizes MCP server definitions into service records,
// and persists a single record alongside a generated skill for later use
// by the executor.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"net/url"
	"os"

	// Packages
	skill "github.com/mutablelogic/go-skill"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Transport identifies the channel kind used to reach an MCP server.
type Transport string

// Service describes one MCP server connection. Exactly one of the stdio
// fields (command, args, env) or the http field (url) is used, selected
// by the transport kind.
type Service struct {
	Name    string            `json:"name,omitempty"`
	Type    Transport         `json:"type,omitempty"`
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	URL     string            `json:"url,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// DefaultFilename is the name of the persisted service config within a
// generated skill directory.
const DefaultFilename = "mcp-config.json"

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Parse normalizes an MCP config document into service records. Two shapes
// are accepted: the standard {"mcpServers": {name: body, ...}} map, where
// each key becomes the service name and file order is preserved, and a
// single body carrying "command" or "url" directly. When name is not empty,
// the returned set is restricted to that entry (map shape only).
func Parse(data []byte, name string) ([]*Service, error) {
	var doc struct {
		Servers json.RawMessage `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, skill.ErrConfigFormat.With(err)
	}

	// Standard mcpServers shape
	if doc.Servers != nil {
		return parseServers(doc.Servers, name)
	}

	// Single-server shape
	var service Service
	if err := json.Unmarshal(data, &service); err != nil {
		return nil, skill.ErrConfigFormat.With(err)
	}
	if service.Command == "" && service.URL == "" {
		return nil, skill.ErrConfigFormat.With("expected mcpServers or a single server config")
	}
	return []*Service{&service}, nil
}

// Load reads a persisted service config from a file.
func Load(path string) (*Service, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, skill.ErrConfigNotFound.With(path)
	} else if err != nil {
		return nil, err
	}

	var service Service
	if err := json.Unmarshal(data, &service); err != nil {
		return nil, skill.ErrConfigFormat.With(err)
	}
	if err := service.Validate(); err != nil {
		return nil, err
	}
	return &service, nil
}

// Save writes the service config to a file, pretty-printed.
func (s *Service) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Kind returns the transport kind for the service. An explicit type tag
// wins; otherwise a service with a URL is http and anything else is stdio.
func (s *Service) Kind() Transport {
	switch s.Type {
	case TransportStdio, TransportHTTP:
		return s.Type
	}
	if s.URL != "" {
		return TransportHTTP
	}
	return TransportStdio
}

// Validate checks that the fields required by the transport kind are present.
func (s *Service) Validate() error {
	switch s.Kind() {
	case TransportHTTP:
		if s.URL == "" {
			return skill.ErrBadParameter.With("missing url for http transport")
		}
		if u, err := url.Parse(s.URL); err != nil || !u.IsAbs() {
			return skill.ErrBadParameter.Withf("invalid url %q", s.URL)
		}
	default:
		if s.Command == "" {
			return skill.ErrBadParameter.With("missing command for stdio transport")
		}
	}
	return nil
}

func (s *Service) String() string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// parseServers decodes the mcpServers object preserving key order, which
// encoding/json's map decoding would lose.
func parseServers(data []byte, name string) ([]*Service, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	// Opening brace
	if tok, err := dec.Token(); err != nil {
		return nil, skill.ErrConfigFormat.With(err)
	} else if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, skill.ErrConfigFormat.With("mcpServers is not an object")
	}

	result := make([]*Service, 0, 4)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, skill.ErrConfigFormat.With(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, skill.ErrConfigFormat.With("invalid mcpServers key")
		}

		var service Service
		if err := dec.Decode(&service); err != nil {
			return nil, skill.ErrConfigFormat.Withf("server %q: %v", key, err)
		}

		// The map key is authoritative for the service name
		service.Name = key
		if name == "" || name == key {
			result = append(result, &service)
		}
	}

	return result, nil
}
