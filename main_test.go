package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/cartsim/game/engine"
	"github.com/wricardo/mcp-training/cartsim/internal/logging"
	"github.com/wricardo/mcp-training/cartsim/transport/mcp"
)

const lastCartMap = `/>-<\  
|   |  
| /<+-\
| | | v
\>+</ |
  |   ^
  \<->/
`

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.Writer = &out
	cmd.ErrWriter = &out
	cmd.Reader = strings.NewReader(stdin)
	err := cmd.Run(context.Background(), append([]string{"cartsim"}, args...))
	return out.String(), err
}

func writeMap(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "Mine Cart Madness", AppName)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "Mine Cart Madness v1.0.0\n", out)
}

func TestSolveCommand(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		out, err := runCommand(t, "", "solve", writeMap(t, lastCartMap))
		require.NoError(t, err)
		assert.Equal(t, "first collision: 2,0\nlast cart: 6,4\n", out)
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := runCommand(t, "|\nv\n|\n|\n|\n^\n|\n", "solve", "-")
		require.NoError(t, err)
		assert.Equal(t, "first collision: 0,3\nlast cart: no survivor\n", out)
	})

	t.Run("ragged rows", func(t *testing.T) {
		ragged := writeMap(t, "/>-<\\\n|   |\n\\---/\n ->-<-\n")
		for _, args := range [][]string{{"solve", ragged}, {"solve", "--pad", ragged}} {
			out, err := runCommand(t, "", args...)
			require.NoError(t, err)
			assert.Equal(t, "first collision: 2,0\nlast cart: no survivor\n", out)
		}
	})

	t.Run("tick limit", func(t *testing.T) {
		_, err := runCommand(t, "", "solve", "--max-ticks", "10", writeMap(t, "/>\\/<\\\n\\-/\\-/\n"))
		assert.ErrorIs(t, err, engine.ErrTickLimit)
	})

	t.Run("invalid map", func(t *testing.T) {
		_, err := runCommand(t, "", "solve", writeMap(t, "->#<-\n"))
		assert.ErrorIs(t, err, engine.ErrInvalidTrack)
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := runCommand(t, "", "solve")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := runCommand(t, "", "solve", filepath.Join(t.TempDir(), "nope.txt"))
		assert.Error(t, err)
	})
}

func TestInitializeServices(t *testing.T) {
	dir := t.TempDir()
	track := `{"name": "Line", "description": "d", "layout": ["->-<-"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classic.json"), []byte(track), 0644))

	app, err := initializeServices(dir, logging.NewNop())
	require.NoError(t, err)
	require.NotNil(t, app.service)
	require.NotNil(t, app.api)

	info, err := app.service.CreateSession(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "classic", info.ConfigName)
	require.NotNil(t, info.TrackConfig)
	assert.Equal(t, "Line", info.TrackConfig.Name)
	assert.Equal(t, 1, app.sessions.Count())
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	_, err := initializeServices("/non/existent/path", logging.NewNop())
	assert.Error(t, err)
}

func TestMCPHandler(t *testing.T) {
	app, err := initializeServices(t.TempDir(), logging.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(app.api)
	defer ts.Close()
	app.api.Router().HandleFunc("/mcp", mcpHandler(mcp.NewClient(ts.URL)))

	t.Run("rejects GET", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/mcp")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("lists tools", func(t *testing.T) {
		body := `{"jsonrpc": "2.0", "id": 1, "method": "tools/list"}`
		resp, err := http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		var rpc struct {
			Result struct {
				Tools []struct {
					Name string `json:"name"`
				} `json:"tools"`
			} `json:"result"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpc))

		names := make([]string, 0, len(rpc.Result.Tools))
		for _, tool := range rpc.Result.Tools {
			names = append(names, tool.Name)
		}
		assert.Contains(t, names, "tick")
		assert.Contains(t, names, "solve_layout")
		assert.Len(t, names, 12)
	})

	t.Run("solve through the api", func(t *testing.T) {
		body := `{"jsonrpc": "2.0", "id": 2, "method": "tools/call", "params": {"name": "solve_layout", "arguments": {"layout": ["->-<-"]}}}`
		resp, err := http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		var rpc struct {
			Result struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"result"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpc))
		require.NotEmpty(t, rpc.Result.Content)
		assert.Contains(t, rpc.Result.Content[0].Text, "First collision: 2,0")
	})

	t.Run("describe cell through the api", func(t *testing.T) {
		info, err := app.service.CreateSession(context.Background(), "")
		require.NoError(t, err)

		body := fmt.Sprintf(`{"jsonrpc": "2.0", "id": 3, "method": "tools/call", "params": {"name": "describe_cell", "arguments": {"session_id": %q, "x": 2, "y": 0}}}`, info.ID)
		resp, err := http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		var rpc struct {
			Result struct {
				IsError bool `json:"isError"`
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"result"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpc))
		require.NotEmpty(t, rpc.Result.Content)
		assert.False(t, rpc.Result.IsError, rpc.Result.Content[0].Text)
		assert.Contains(t, rpc.Result.Content[0].Text, "Cell 2,0:")
		assert.Contains(t, rpc.Result.Content[0].Text, "Cart #0 facing")
	})
}

func TestAPIReachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	assert.True(t, apiReachable(context.Background(), ts.URL))
	assert.False(t, apiReachable(context.Background(), "http://127.0.0.1:1"))
}
