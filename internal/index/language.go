package index

import (
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// Family groups languages that share a base detection confidence.
type Family int

const (
	FamilyNone Family = iota
	FamilyTyped
	FamilyDynamic
	FamilyMarkup
	FamilyData
)

// CommentStyle selects the line-comment convention of a language.
type CommentStyle int

const (
	CommentNone CommentStyle = iota
	CommentSlash             // //, /* */, leading *
	CommentHash              // #
)

type langInfo struct {
	name    string
	family  Family
	comment CommentStyle
	source  bool
}

var extLanguages = map[string]langInfo{
	".go":     {"Go", FamilyTyped, CommentSlash, true},
	".rs":     {"Rust", FamilyTyped, CommentSlash, true},
	".java":   {"Java", FamilyTyped, CommentSlash, true},
	".kt":     {"Kotlin", FamilyTyped, CommentSlash, true},
	".kts":    {"Kotlin", FamilyTyped, CommentSlash, true},
	".scala":  {"Scala", FamilyTyped, CommentSlash, true},
	".c":      {"C", FamilyTyped, CommentSlash, true},
	".h":      {"C", FamilyTyped, CommentSlash, true},
	".cc":     {"C++", FamilyTyped, CommentSlash, true},
	".cpp":    {"C++", FamilyTyped, CommentSlash, true},
	".hpp":    {"C++", FamilyTyped, CommentSlash, true},
	".cs":     {"C#", FamilyTyped, CommentSlash, true},
	".swift":  {"Swift", FamilyTyped, CommentSlash, true},
	".ts":     {"TypeScript", FamilyTyped, CommentSlash, true},
	".tsx":    {"TypeScript", FamilyTyped, CommentSlash, true},
	".dart":   {"Dart", FamilyTyped, CommentSlash, true},
	".js":     {"JavaScript", FamilyDynamic, CommentSlash, true},
	".jsx":    {"JavaScript", FamilyDynamic, CommentSlash, true},
	".mjs":    {"JavaScript", FamilyDynamic, CommentSlash, true},
	".cjs":    {"JavaScript", FamilyDynamic, CommentSlash, true},
	".vue":    {"Vue", FamilyDynamic, CommentSlash, true},
	".svelte": {"Svelte", FamilyDynamic, CommentSlash, true},
	".py":     {"Python", FamilyDynamic, CommentHash, true},
	".rb":     {"Ruby", FamilyDynamic, CommentHash, true},
	".php":    {"PHP", FamilyDynamic, CommentSlash, true},
	".sh":     {"Shell", FamilyDynamic, CommentHash, true},
	".bash":   {"Shell", FamilyDynamic, CommentHash, true},
	".lua":    {"Lua", FamilyDynamic, CommentNone, true},
	".pl":     {"Perl", FamilyDynamic, CommentHash, true},
	".ex":     {"Elixir", FamilyDynamic, CommentHash, true},
	".exs":    {"Elixir", FamilyDynamic, CommentHash, true},
	".r":      {"R", FamilyDynamic, CommentHash, true},
	".html":   {"HTML", FamilyMarkup, CommentNone, false},
	".htm":    {"HTML", FamilyMarkup, CommentNone, false},
	".css":    {"CSS", FamilyMarkup, CommentSlash, false},
	".scss":   {"SCSS", FamilyMarkup, CommentSlash, false},
	".less":   {"Less", FamilyMarkup, CommentSlash, false},
	".md":     {"Markdown", FamilyMarkup, CommentNone, false},
	".json":   {"JSON", FamilyData, CommentNone, false},
	".yaml":   {"YAML", FamilyData, CommentHash, false},
	".yml":    {"YAML", FamilyData, CommentHash, false},
	".toml":   {"TOML", FamilyData, CommentHash, false},
	".xml":    {"XML", FamilyData, CommentNone, false},
	".sql":    {"SQL", FamilyData, CommentNone, false},
	".proto":  {"Protocol Buffers", FamilyData, CommentSlash, false},
}

// Language names the language of a file. Unknown extensions fall back to
// chroma's lexer registry and finally to the empty string.
func Language(rel string) string {
	if info, ok := extLanguages[strings.ToLower(path.Ext(rel))]; ok {
		return info.name
	}
	if lexer := lexers.Match(path.Base(rel)); lexer != nil {
		return lexer.Config().Name
	}
	return ""
}

// LanguageFamily returns the language name and family for known extensions.
func LanguageFamily(rel string) (string, Family) {
	info, ok := extLanguages[strings.ToLower(path.Ext(rel))]
	if !ok {
		return "", FamilyNone
	}
	return info.name, info.family
}

// IsSource reports whether rel is program source eligible for code analysis.
func IsSource(rel string) bool {
	info, ok := extLanguages[strings.ToLower(path.Ext(rel))]
	if !ok || !info.source {
		return false
	}
	base := path.Base(rel)
	return !strings.HasSuffix(base, ".min.js") && !strings.HasSuffix(base, ".d.ts")
}

// CommentStyleOf returns the line-comment convention of rel.
func CommentStyleOf(rel string) CommentStyle {
	return extLanguages[strings.ToLower(path.Ext(rel))].comment
}

// IsCommentLine reports whether a line is a comment under the given style.
func IsCommentLine(line string, style CommentStyle) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return false
	}
	switch style {
	case CommentSlash:
		return strings.HasPrefix(t, "//") || strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "*")
	case CommentHash:
		return strings.HasPrefix(t, "#") && !strings.HasPrefix(t, "#!")
	}
	return false
}
