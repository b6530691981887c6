package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	// Packages
	skill "github.com/mutablelogic/go-skill"
	assert "github.com/stretchr/testify/assert"
)

func Test_config_001(t *testing.T) {
	assert := assert.New(t)

	// Standard mcpServers shape
	services, err := Parse([]byte(`{"mcpServers":{"weather":{"command":"wx-server","args":["--mode","json"]}}}`), "")
	assert.NoError(err)
	assert.Len(services, 1)
	assert.Equal("weather", services[0].Name)
	assert.Equal("wx-server", services[0].Command)
	assert.Equal([]string{"--mode", "json"}, services[0].Args)
	assert.Equal(TransportStdio, services[0].Kind())
}

func Test_config_002(t *testing.T) {
	assert := assert.New(t)

	// Key order of the mcpServers object is preserved
	services, err := Parse([]byte(`{"mcpServers":{
		"zulu":{"command":"z"},
		"alpha":{"command":"a"},
		"mike":{"url":"https://example.com/mcp"}
	}}`), "")
	assert.NoError(err)
	assert.Len(services, 3)
	assert.Equal("zulu", services[0].Name)
	assert.Equal("alpha", services[1].Name)
	assert.Equal("mike", services[2].Name)
	assert.Equal(TransportHTTP, services[2].Kind())
}

func Test_config_003(t *testing.T) {
	assert := assert.New(t)

	// Filter restricts to one named entry
	data := []byte(`{"mcpServers":{"one":{"command":"a"},"two":{"command":"b"}}}`)

	services, err := Parse(data, "two")
	assert.NoError(err)
	assert.Len(services, 1)
	assert.Equal("two", services[0].Name)

	// Filter with no match yields an empty set, not an error
	services, err = Parse(data, "three")
	assert.NoError(err)
	assert.Len(services, 0)
}

func Test_config_004(t *testing.T) {
	assert := assert.New(t)

	// Single-server shape with command
	services, err := Parse([]byte(`{"name":"files","command":"file-server","env":{"ROOT":"/tmp"}}`), "")
	assert.NoError(err)
	assert.Len(services, 1)
	assert.Equal("files", services[0].Name)
	assert.Equal("file-server", services[0].Command)
	assert.Equal("/tmp", services[0].Env["ROOT"])

	// Single-server shape with url
	services, err = Parse([]byte(`{"name":"remote","url":"https://example.com/mcp"}`), "")
	assert.NoError(err)
	assert.Len(services, 1)
	assert.Equal(TransportHTTP, services[0].Kind())
}

func Test_config_005(t *testing.T) {
	assert := assert.New(t)

	// Neither shape matches
	_, err := Parse([]byte(`{"name":"x"}`), "")
	assert.Error(err)
	assert.True(errors.Is(err, skill.ErrConfigFormat))

	_, err = Parse([]byte(`not json`), "")
	assert.Error(err)
	assert.True(errors.Is(err, skill.ErrConfigFormat))

	_, err = Parse([]byte(`{"mcpServers":["a"]}`), "")
	assert.Error(err)
	assert.True(errors.Is(err, skill.ErrConfigFormat))
}

func Test_config_006(t *testing.T) {
	assert := assert.New(t)

	// Explicit type tag wins over field inference
	services, err := Parse([]byte(`{"type":"http","url":"https://example.com/mcp","command":"ignored"}`), "")
	assert.NoError(err)
	assert.Equal(TransportHTTP, services[0].Kind())
}

func Test_config_007(t *testing.T) {
	assert := assert.New(t)

	// Save then Load yields a value equal in every field
	service := &Service{
		Name:    "weather",
		Command: "wx-server",
		Args:    []string{"--mode", "json"},
		Env:     map[string]string{"WX_KEY": "secret"},
	}
	path := filepath.Join(t.TempDir(), DefaultFilename)
	assert.NoError(service.Save(path))

	loaded, err := Load(path)
	assert.NoError(err)
	assert.Equal(service, loaded)
}

func Test_config_008(t *testing.T) {
	assert := assert.New(t)

	// Missing persisted config
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Error(err)
	assert.True(errors.Is(err, skill.ErrConfigNotFound))

	// Corrupt persisted config
	path := filepath.Join(t.TempDir(), DefaultFilename)
	assert.NoError(os.WriteFile(path, []byte("{"), 0644))
	_, err = Load(path)
	assert.Error(err)
	assert.True(errors.Is(err, skill.ErrConfigFormat))
}

func Test_config_009(t *testing.T) {
	assert := assert.New(t)

	// Validation of transport fields
	assert.NoError((&Service{Command: "server"}).Validate())
	assert.NoError((&Service{URL: "https://example.com/mcp"}).Validate())
	assert.Error((&Service{}).Validate())
	assert.Error((&Service{Type: TransportHTTP}).Validate())
	assert.Error((&Service{Type: TransportHTTP, URL: "not a url"}).Validate())
	assert.Error((&Service{Type: TransportStdio, URL: "https://example.com"}).Validate())
}
