package mcpclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ninja-mcp/internal/build"
	"ninja-mcp/internal/logger"
)

const (
	clientName    = "ninja-mcp-client"
	clientVersion = "0.1.0"

	// NoOutputText 结果中没有文本块时的替代输出。
	NoOutputText = "Build completed, but no output was returned"
)

// Client 是对 MCP 会话的薄封装，只暴露 compile 所需的操作。
type Client struct {
	c   *client.Client
	log *logger.LogEntry
}

// DialOptions 描述如何启动 host 进程。
type DialOptions struct {
	// Command 为 host 可执行文件及参数，例如 ["/usr/local/bin/ninja-mcp", "serve"]。
	Command []string
	// Env 追加到继承环境之后。
	Env []string
	Log *logger.LogEntry
}

// Dial 通过 stdio 启动 host 并完成 initialize 握手。
// host 的 stderr 逐行转入日志。ctx 取消时子进程被终止。
func Dial(ctx context.Context, opts DialOptions) (*Client, error) {
	if len(opts.Command) == 0 {
		return nil, errors.New("server command is empty")
	}
	log := opts.Log
	if log == nil {
		log = logger.Named("mcpclient")
	}

	// transport 自身的读写错误也走 logrus，不落到标准库 log。
	tr := transport.NewStdioWithOptions(opts.Command[0], opts.Env, opts.Command[1:],
		transport.WithCommandLogger(log),
	)
	if err := tr.Start(ctx); err != nil {
		return nil, fmt.Errorf("start %s: %w", opts.Command[0], err)
	}
	go drainStderr(tr.Stderr(), log)

	cl := &Client{c: client.NewClient(tr), log: log}
	if err := cl.initialize(ctx); err != nil {
		_ = cl.Close()
		return nil, err
	}
	return cl, nil
}

// NewInProcess 直接连接同进程内的 server，供测试与诊断使用。
func NewInProcess(ctx context.Context, s *server.MCPServer, log *logger.LogEntry) (*Client, error) {
	if log == nil {
		log = logger.Named("mcpclient")
	}
	c, err := client.NewInProcessClient(s)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("start in-process client: %w", err)
	}
	cl := &Client{c: c, log: log}
	if err := cl.initialize(ctx); err != nil {
		_ = cl.Close()
		return nil, err
	}
	return cl, nil
}

func (cl *Client) initialize(ctx context.Context) error {
	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: clientVersion}
	res, err := cl.c.Initialize(ctx, req)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	cl.log.Infof("connected to %s %s", res.ServerInfo.Name, res.ServerInfo.Version)
	return nil
}

// Tools 列出 host 暴露的工具。
func (cl *Client) Tools(ctx context.Context) ([]mcp.Tool, error) {
	res, err := cl.c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return res.Tools, nil
}

// Call 调用任意工具。协议层错误（如未知工具）以 error 返回。
func (cl *Client) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := cl.c.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}
	return res, nil
}

// Compile 调用 compile 工具。
func (cl *Client) Compile(ctx context.Context, req build.Request) (*mcp.CallToolResult, error) {
	return cl.Call(ctx, "compile", map[string]any{
		"workDir":   req.WorkDir,
		"buildPath": req.BuildPath,
		"target":    string(req.Target),
	})
}

func (cl *Client) Close() error {
	return cl.c.Close()
}

// FirstText 返回第一个文本块。
func FirstText(res *mcp.CallToolResult) (string, bool) {
	if res == nil {
		return "", false
	}
	for _, c := range res.Content {
		if tc, ok := mcp.AsTextContent(c); ok {
			return tc.Text, true
		}
	}
	return "", false
}

// ReportText 返回第一个文本块，缺失时返回 NoOutputText。
func ReportText(res *mcp.CallToolResult) string {
	if text, ok := FirstText(res); ok {
		return text
	}
	return NoOutputText
}

// StructuredReport 解析 structuredContent 中的报告。
func StructuredReport(res *mcp.CallToolResult) (build.Report, bool) {
	var rep build.Report
	if res == nil || res.StructuredContent == nil {
		return rep, false
	}
	raw, err := json.Marshal(res.StructuredContent)
	if err != nil {
		return rep, false
	}
	if err := json.Unmarshal(raw, &rep); err != nil || rep.Status == "" {
		return rep, false
	}
	return rep, true
}

func drainStderr(r io.Reader, log *logger.LogEntry) {
	if r == nil {
		return
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		log.Debugf("host: %s", scanner.Text())
	}
}
