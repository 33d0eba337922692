package main

import "flag"

type rootArgs struct {
	overrides []string
	cfgPath   string
}

// parseRootArgs 解析子命令之前的全局参数，其余参数原样返回。
func parseRootArgs(args []string) (rootArgs, []string, error) {
	fs := flag.NewFlagSet("ninja-mcp", flag.ContinueOnError)
	var overrides stringSlice
	var cfgPath string
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.ninja-mcp/config.toml)")
	if err := fs.Parse(args); err != nil {
		return rootArgs{}, nil, err
	}
	return rootArgs{overrides: append([]string{}, overrides...), cfgPath: cfgPath}, fs.Args(), nil
}

// forward 把全局参数还原成命令行，供 client 启动的 host 进程继承。
func (r rootArgs) forward() []string {
	var out []string
	if r.cfgPath != "" {
		out = append(out, "-config", r.cfgPath)
	}
	for _, o := range r.overrides {
		out = append(out, "-c", o)
	}
	return out
}
