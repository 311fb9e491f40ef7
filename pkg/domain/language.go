// Package domain defines the identifiers shared by every structural search package.
package domain

import "strings"

// Language identifies a grammar registered with the search engine.
type Language string

// Built-in languages.
const (
	LanguageC          Language = "c"
	LanguageCpp        Language = "cpp"
	LanguageCSharp     Language = "csharp"
	LanguageGo         Language = "go"
	LanguageHTML       Language = "html"
	LanguageJava       Language = "java"
	LanguageJavaScript Language = "javascript"
	LanguageKotlin     Language = "kotlin"
	LanguageLua        Language = "lua"
	LanguagePython     Language = "python"
	LanguageRuby       Language = "ruby"
	LanguageRust       Language = "rust"
	LanguageSwift      Language = "swift"
	LanguageTSX        Language = "tsx"
	LanguageTypeScript Language = "typescript"
)

// Normalize lower-cases and trims a user supplied language name.
func Normalize(name string) Language {
	return Language(strings.ToLower(strings.TrimSpace(name)))
}

func (l Language) String() string {
	return string(l)
}
