package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handler 定义具体工具的描述与执行入口。
type Handler interface {
	Name() string
	Tool() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Registry 按注册顺序保存工具，名称重复时后注册者覆盖前者。
type Registry struct {
	handlers map[string]Handler
	order    []string
}

func NewRegistry(handlers ...Handler) *Registry {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		if h == nil {
			continue
		}
		if _, exists := r.handlers[h.Name()]; !exists {
			r.order = append(r.order, h.Name())
		}
		r.handlers[h.Name()] = h
	}
	return r
}

// Handlers 返回注册顺序下的全部工具。
func (r *Registry) Handlers() []Handler {
	out := make([]Handler, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.handlers[name])
	}
	return out
}
