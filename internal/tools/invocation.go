package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Invocation 记录一次工具调用，用于成对输出 tool_call / tool_result 日志。
type Invocation struct {
	ID      string
	Tool    string
	Started time.Time
}

// StartInvocation 分配 invocation id 并记录请求参数。
func StartInvocation(tool string, args any) *Invocation {
	inv := &Invocation{
		ID:      uuid.NewString(),
		Tool:    tool,
		Started: time.Now(),
	}
	payload := "(empty)"
	if args != nil {
		if raw, err := json.Marshal(args); err == nil {
			payload = sanitizeForLog(string(raw))
		}
	}
	Log().Infof("tool_call invocation_id=%s name=%s payload=%s", inv.ID, inv.Tool, payload)
	return inv
}

// Finish 输出调用结果。exitCode 为 nil 时记为 none。
func (inv *Invocation) Finish(status string, exitCode *int, errText string) {
	code := "none"
	if exitCode != nil {
		code = fmt.Sprint(*exitCode)
	}
	Log().Infof("tool_result invocation_id=%s name=%s status=%s exit_code=%s duration_ms=%d error=%s",
		inv.ID, inv.Tool, status, code, time.Since(inv.Started).Milliseconds(), sanitizeForLog(errText))
}
