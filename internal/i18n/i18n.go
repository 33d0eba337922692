package i18n

import "strings"

// Language 诊断输出使用的语言，短代码形式（zh、en）。
type Language string

const (
	LanguageChinese Language = "zh"
	LanguageEnglish Language = "en"

	// DefaultLanguage 未配置时的默认语言。
	DefaultLanguage = LanguageChinese
)

// Normalize 将用户输入的语言值转换为统一的语言代码。
// 空字符串回退到默认语言，未知值原样保留。
func Normalize(value string) Language {
	lang := strings.ToLower(strings.TrimSpace(value))
	switch lang {
	case "", "zh", "zh-cn", "zh_cn", "zh-hans", "cn", "chinese", "中文":
		return LanguageChinese
	case "en", "en-us", "en_us", "en-gb", "english":
		return LanguageEnglish
	default:
		return Language(lang)
	}
}
