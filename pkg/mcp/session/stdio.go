package session

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	// Packages
	skill "github.com/mutablelogic/go-skill"
	config "github.com/mutablelogic/go-skill/pkg/config"
	mcp "github.com/mutablelogic/go-skill/pkg/mcp"
	errgroup "golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// stdioTransport spawns the server as a child process and exchanges
// newline-delimited JSON-RPC messages over its standard streams. The child's
// stderr passes through to this process. Messages are strictly sequential:
// one request is in flight at a time.
type stdioTransport struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan json.RawMessage
	group *errgroup.Group

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// Grace period for the child to exit after stdin closes
	stdioCloseTimeout = 5 * time.Second

	// Maximum size of a single JSON-RPC message on the wire
	stdioMaxLine = 16 << 20
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// newStdioTransport checks the command is available, then spawns it with
// the configured arguments and environment. The environment mapping is
// appended to the parent environment.
func newStdioTransport(ctx context.Context, service *config.Service) (*stdioTransport, error) {
	path, err := exec.LookPath(service.Command)
	if err != nil {
		return nil, skill.ErrDependencyMissing.Withf("command %q: %v", service.Command, err)
	}

	cmd := exec.CommandContext(ctx, path, service.Args...)
	cmd.Env = os.Environ()
	for k, v := range service.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, skill.ErrTransport.With(err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, skill.ErrTransport.With(err)
	}
	if err := cmd.Start(); err != nil {
		return nil, skill.ErrTransport.With(err)
	}

	t := &stdioTransport{
		cmd:   cmd,
		stdin: stdin,
		lines: make(chan json.RawMessage),
	}
	t.group, _ = errgroup.WithContext(ctx)
	t.group.Go(func() error {
		return t.read(stdout)
	})
	return t, nil
}

// Close closes the child's stdin, waits for it to exit, and kills it if it
// does not exit within the grace period.
func (t *stdioTransport) Close() error {
	t.closeOnce.Do(func() {
		t.stdin.Close()

		// Discard remaining output so the reader goroutine can exit
		go func() {
			for range t.lines {
			}
		}()

		timer := time.AfterFunc(stdioCloseTimeout, func() {
			t.cmd.Process.Kill()
		})
		err := t.cmd.Wait()
		timer.Stop()

		// A non-zero exit on teardown is expected when the child is
		// terminated, so only I/O errors are reported
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = nil
		}
		if rerr := t.group.Wait(); rerr != nil && err == nil {
			err = rerr
		}
		t.closeErr = err
	})
	return t.closeErr
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Do writes one request and reads messages until the matching response
// arrives. Server-initiated requests and notifications are skipped.
func (t *stdioTransport) Do(ctx context.Context, req mcp.Request) (*mcp.Response, error) {
	if err := t.send(req); err != nil {
		return nil, err
	}
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case line, ok := <-t.lines:
			if !ok {
				return nil, skill.ErrTransport.With("connection closed by server")
			}
			var msg struct {
				mcp.Response
				Method string `json:"method"`
			}
			if err := json.Unmarshal(line, &msg); err != nil {
				continue // skip malformed messages
			}
			if msg.Method != "" || !matchId(req.ID, msg.ID) {
				continue
			}
			return &msg.Response, nil
		}
	}
}

func (t *stdioTransport) Notify(_ context.Context, req mcp.Request) error {
	return t.send(req)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (t *stdioTransport) send(req mcp.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := t.stdin.Write(append(data, '\n')); err != nil {
		return skill.ErrTransport.With(err)
	}
	return nil
}

// read delivers each non-empty line from the child's stdout to the lines
// channel, closing it on EOF.
func (t *stdioTransport) read(r io.Reader) error {
	defer close(t.lines)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), stdioMaxLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		data := make(json.RawMessage, len(line))
		copy(data, line)
		t.lines <- data
	}
	return scanner.Err()
}

// matchId reports whether a decoded response ID corresponds to the request
// ID. Requests use int64 identifiers; JSON decoding yields float64 or string.
func matchId(want, got any) bool {
	id, ok := want.(int64)
	if !ok {
		return false
	}
	switch v := got.(type) {
	case float64:
		return int64(v) == id
	case string:
		return v == strconv.FormatInt(id, 10)
	case json.Number:
		return v.String() == strconv.FormatInt(id, 10)
	}
	return false
}
