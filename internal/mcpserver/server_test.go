package mcpserver

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"ninja-mcp/internal/build"
	"ninja-mcp/internal/logger"
	"ninja-mcp/internal/runner"
	"ninja-mcp/internal/tools"
	"ninja-mcp/internal/tools/handlers"
)

type countingRunner struct {
	mu    sync.Mutex
	calls int
}

func (c *countingRunner) Run(context.Context, runner.Spec) runner.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	code := 0
	return runner.Result{Stdout: "ok\n", Success: true, ExitCode: &code}
}

func (c *countingRunner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestServer(r *countingRunner) *Server {
	compiler := build.NewCompiler(build.Options{Runner: r, Log: logger.Discard()})
	reg := tools.NewRegistry(handlers.NewCompileHandler(compiler, true))
	return New(reg, logger.Discard())
}

func startClient(t *testing.T, s *Server) *client.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := client.NewInProcessClient(s.MCP())
	if err != nil {
		t.Fatalf("NewInProcessClient: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	init := mcp.InitializeRequest{}
	init.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "0"}
	if _, err := c.Initialize(ctx, init); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return c
}

func TestListTools_ExactlyCompile(t *testing.T) {
	c := startClient(t, newTestServer(&countingRunner{}))

	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(res.Tools) != 1 {
		t.Fatalf("tools = %d, want 1", len(res.Tools))
	}
	tool := res.Tools[0]
	if tool.Name != "compile" {
		t.Fatalf("tool name = %q", tool.Name)
	}
	if got := strings.Join(tool.InputSchema.Required, ","); got != "workDir,buildPath,target" {
		t.Fatalf("required = %q", got)
	}
	target, _ := tool.InputSchema.Properties["target"].(map[string]any)
	enum, _ := target["enum"].([]any)
	if len(enum) != 2 {
		t.Fatalf("target enum = %#v", target["enum"])
	}
}

func TestCallTool_UnknownToolIsProtocolError(t *testing.T) {
	r := &countingRunner{}
	c := startClient(t, newTestServer(r))

	req := mcp.CallToolRequest{}
	req.Params.Name = "link"
	req.Params.Arguments = map[string]any{"workDir": "/src"}
	if _, err := c.CallTool(context.Background(), req); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
	if r.count() != 0 {
		t.Fatalf("runner invoked %d times", r.count())
	}
}

func TestCallTool_Compile(t *testing.T) {
	r := &countingRunner{}
	c := startClient(t, newTestServer(r))

	req := mcp.CallToolRequest{}
	req.Params.Name = "compile"
	req.Params.Arguments = map[string]any{"workDir": "/src", "buildPath": "out/release_x64", "target": "chrome"}
	res, err := c.CallTool(context.Background(), req)
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError || len(res.Content) == 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	text, ok := mcp.AsTextContent(res.Content[0])
	if !ok || !strings.Contains(text.Text, "Status: Success") {
		t.Fatalf("unexpected content: %#v", res.Content[0])
	}
	if r.count() != 2 {
		t.Fatalf("runner calls = %d, want 2", r.count())
	}
}

func TestServe_ReturnsOnCancel(t *testing.T) {
	s := newTestServer(&countingRunner{})
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, pr, io.Discard) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after cancel")
	}
}
