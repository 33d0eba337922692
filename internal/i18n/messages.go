package i18n

// Messages 是子进程包装脚本中诊断输出使用的文案。
type Messages struct {
	Header          string
	Shell           string
	User            string
	Home            string
	Path            string
	Interpreters    string
	NotFound        string
	AfterProfiles   string
	VersionFailed   string
	Running         string
	Footer          string
	ProfileReadWarn string
}

var catalogues = map[Language]Messages{
	LanguageChinese: {
		Header:          "=== 调试信息 ===",
		Shell:           "当前 Shell",
		User:            "当前用户",
		Home:            "HOME 目录",
		Path:            "===== PATH =====",
		Interpreters:    "=== Python 信息 ===",
		NotFound:        "找不到",
		AfterProfiles:   "=== 加载配置后的 Python 信息 ===",
		VersionFailed:   "版本获取失败",
		Running:         "=== 执行实际命令 ===",
		Footer:          "=================",
		ProfileReadWarn: "无法读取配置文件",
	},
	LanguageEnglish: {
		Header:          "=== Diagnostics ===",
		Shell:           "Current shell",
		User:            "Current user",
		Home:            "HOME directory",
		Path:            "===== PATH =====",
		Interpreters:    "=== Python ===",
		NotFound:        "not found:",
		AfterProfiles:   "=== Python after loading profiles ===",
		VersionFailed:   "version lookup failed",
		Running:         "=== Running command ===",
		Footer:          "===================",
		ProfileReadWarn: "cannot read profile",
	},
}

// For 返回语言对应的文案，不支持的语言回退到默认语言。
func For(l Language) Messages {
	if m, ok := catalogues[Normalize(string(l))]; ok {
		return m
	}
	return catalogues[DefaultLanguage]
}
