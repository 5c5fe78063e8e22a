package prompt

import (
	"errors"
	"fmt"
	"strings"

	"quillstream/internal/models"
)

// ErrUnsupportedCommand indicates the caller asked for a transformation that has no template.
var ErrUnsupportedCommand = errors.New("unsupported command")

// Command names a text transformation.
type Command string

const (
	Continue Command = "continue"
	Improve  Command = "improve"
	Shorter  Command = "shorter"
	Longer   Command = "longer"
	Fix      Command = "fix"
	Zap      Command = "zap"

	Sentiment   Command = "sentiment"
	Readability Command = "readability"
	Keywords    Command = "keywords"

	Formal    Command = "formal"
	Casual    Command = "casual"
	Technical Command = "technical"

	Alternatives Command = "alternatives"
	Conclusion   Command = "conclusion"
	Headline     Command = "headline"

	Summarize Command = "summarize"
	Bullets   Command = "bullets"
	Quote     Command = "quote"

	Translate     Command = "translate"
	Culturalize   Command = "culturalize"
	International Command = "international"
)

// Group is the menu section a command is listed under.
type Group string

const (
	GroupEdit     Group = "edit"
	GroupAnalysis Group = "analysis"
	GroupStyle    Group = "style"
	GroupCreative Group = "creative"
	GroupUtility  Group = "utility"
	GroupLanguage Group = "language"
)

// Language selects a whole template table.
type Language string

const (
	English  Language = "en"
	Japanese Language = "ja"
)

var commandOrder = []Command{
	Continue, Improve, Shorter, Longer, Fix, Zap,
	Sentiment, Readability, Keywords,
	Formal, Casual, Technical,
	Alternatives, Conclusion, Headline,
	Summarize, Bullets, Quote,
	Translate, Culturalize, International,
}

var commandGroups = map[Command]Group{
	Continue: GroupEdit, Improve: GroupEdit, Shorter: GroupEdit, Longer: GroupEdit, Fix: GroupEdit, Zap: GroupEdit,
	Sentiment: GroupAnalysis, Readability: GroupAnalysis, Keywords: GroupAnalysis,
	Formal: GroupStyle, Casual: GroupStyle, Technical: GroupStyle,
	Alternatives: GroupCreative, Conclusion: GroupCreative, Headline: GroupCreative,
	Summarize: GroupUtility, Bullets: GroupUtility, Quote: GroupUtility,
	Translate: GroupLanguage, Culturalize: GroupLanguage, International: GroupLanguage,
}

// template holds the fixed system message and a renderer for the user message.
// Only Zap reads the instruction argument.
type template struct {
	label  string
	system string
	user   func(text, instruction string) string
}

type table map[Command]template

var tables = map[Language]table{
	English:  englishTable,
	Japanese: japaneseTable,
}

// ParseCommand validates a raw command name.
func ParseCommand(name string) (Command, error) {
	cmd := Command(strings.TrimSpace(name))
	if _, ok := commandGroups[cmd]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCommand, name)
	}
	return cmd, nil
}

// ParseLanguage maps a language selector to a table. Anything other than "ja" selects English.
func ParseLanguage(name string) Language {
	if strings.EqualFold(strings.TrimSpace(name), string(Japanese)) {
		return Japanese
	}
	return English
}

// Commands lists every supported command in menu order.
func Commands() []Command {
	out := make([]Command, len(commandOrder))
	copy(out, commandOrder)
	return out
}

// Build renders the system and user messages for cmd in the given language.
func Build(cmd Command, text, instruction string, lang Language) ([2]models.ChatMessage, error) {
	tbl, ok := tables[lang]
	if !ok {
		tbl = englishTable
	}
	tpl, ok := tbl[cmd]
	if !ok {
		return [2]models.ChatMessage{}, fmt.Errorf("%w: %q", ErrUnsupportedCommand, cmd)
	}
	return [2]models.ChatMessage{
		{Role: models.RoleSystem, Content: tpl.system},
		{Role: models.RoleUser, Content: tpl.user(text, instruction)},
	}, nil
}

// Entry describes a command for pickers.
type Entry struct {
	Name  Command `json:"name"`
	Label string  `json:"label"`
	Group Group   `json:"group"`
}

// Catalog returns the command list with labels in the given language.
func Catalog(lang Language) []Entry {
	tbl, ok := tables[lang]
	if !ok {
		tbl = englishTable
	}
	entries := make([]Entry, 0, len(commandOrder))
	for _, cmd := range commandOrder {
		entries = append(entries, Entry{Name: cmd, Label: tbl[cmd].label, Group: commandGroups[cmd]})
	}
	return entries
}

func existing(prefix string) func(string, string) string {
	return func(text, _ string) string {
		return prefix + text
	}
}
