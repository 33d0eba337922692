package mcpserver

import (
	"context"
	"errors"
	"io"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"ninja-mcp/internal/logger"
	"ninja-mcp/internal/tools"
)

const (
	Name    = "ninja-mcp"
	Version = "0.1.0"
)

// Server 把 tools.Registry 中的工具挂到 MCP server 上。
type Server struct {
	mcp *server.MCPServer
	log *logger.LogEntry
}

func New(reg *tools.Registry, log *logger.LogEntry) *Server {
	if log == nil {
		log = logger.Named("mcpserver")
	}
	s := server.NewMCPServer(Name, Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	for _, h := range reg.Handlers() {
		s.AddTool(h.Tool(), h.Handle)
		log.Debugf("registered tool %s", h.Name())
	}
	return &Server{mcp: s, log: log}
}

// MCP 返回底层 server，供进程内客户端使用。
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve 在 in/out 上处理换行分隔的 JSON-RPC，直到 ctx 取消或输入结束。
// stdout 仅承载协议帧，错误日志转入 logrus。
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(logger.StdLogger(s.log, logrus.ErrorLevel))

	s.log.Infof("serving %s %s on stdio", Name, Version)
	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		s.log.Info("stdio closed")
		return nil
	}
	return err
}
