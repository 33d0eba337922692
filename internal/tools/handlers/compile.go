package handlers

import (
	"context"
	"runtime/debug"

	"github.com/mark3labs/mcp-go/mcp"

	"ninja-mcp/internal/build"
	"ninja-mcp/internal/tools"
)

const (
	CompileToolName        = "compile"
	compileToolDescription = "Compile WebView2 or Edge browser using autoninja"
)

// CompileTool 返回 compile 工具的描述，启动时构建一次。
func CompileTool() mcp.Tool {
	return mcp.NewTool(CompileToolName,
		mcp.WithDescription(compileToolDescription),
		mcp.WithString("workDir",
			mcp.Required(),
			mcp.Description("Working directory, e.g. /Users/xu/edge3/src"),
		),
		mcp.WithString("buildPath",
			mcp.Required(),
			mcp.Description("Build output path, e.g. out/release_x64"),
		),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Build target, webview2 uses embedded_browser_webview, Edge uses chrome"),
			mcp.Enum(build.TargetNames()...),
		),
	)
}

// CompileHandler 执行 compile 工具。strict 为 false 时不校验参数，
// 缺失的值以空字符串进入子进程。
type CompileHandler struct {
	compiler *build.Compiler
	strict   bool
	tool     mcp.Tool
}

func NewCompileHandler(compiler *build.Compiler, strict bool) *CompileHandler {
	return &CompileHandler{compiler: compiler, strict: strict, tool: CompileTool()}
}

func (h *CompileHandler) Name() string   { return CompileToolName }
func (h *CompileHandler) Tool() mcp.Tool { return h.tool }

// Handle 总是返回协议层成功的结果；构建失败、参数错误与 panic 都体现在报告中。
func (h *CompileHandler) Handle(ctx context.Context, req mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
	args := req.GetArguments()
	inv := tools.StartInvocation(h.Name(), args)
	breq := build.RequestFromArguments(args)

	var rep build.Report
	defer func() {
		if r := recover(); r != nil {
			rep = h.compiler.InternalError(breq, r, debug.Stack())
			result, err = ReportResult(rep), nil
		}
		inv.Finish(string(rep.Status), rep.ExitCode, rep.Message)
	}()

	check := h.compiler.CheckRoots
	if h.strict {
		check = h.compiler.Check
	}
	if cerr := check(breq); cerr != nil {
		rep = h.compiler.Rejected(breq, cerr)
		return ReportResult(rep), nil
	}

	rep = h.compiler.Compile(ctx, breq)
	return ReportResult(rep), nil
}

// ReportResult 把报告封装为工具结果：文本块加 structuredContent，rejected 标记为 isError。
func ReportResult(rep build.Report) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content:           []mcp.Content{mcp.NewTextContent(rep.Text())},
		StructuredContent: rep,
		IsError:           rep.Status == build.StatusRejected,
	}
}
