// Package i18n provides bilingual (English/Chinese) message selection.
//
// The language is resolved once at startup and passed down explicitly as a
// Lang value. There is no package-level current language, so concurrent
// callers and tests never observe a half-switched state.
package i18n

import (
	"os"
	"strings"
)

// Lang identifies a supported display language.
type Lang int

const (
	En Lang = iota
	Zh
)

func (l Lang) String() string {
	if l == Zh {
		return "zh"
	}
	return "en"
}

// T selects the message matching the language.
func (l Lang) T(en, zh string) string {
	if l == Zh {
		return zh
	}
	return en
}

// Parse recognises common spellings of the supported languages.
func Parse(s string) (Lang, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return En, true
	case "zh", "cn", "chinese", "中文":
		return Zh, true
	default:
		return En, false
	}
}

// Resolve picks the display language. Priority: CLI flag, OPENTUNNEL_LANG
// environment variable, config file preference, system locale, English.
func Resolve(cliFlag, configLang string) Lang {
	if l, ok := Parse(cliFlag); ok {
		return l
	}
	if l, ok := Parse(os.Getenv("OPENTUNNEL_LANG")); ok {
		return l
	}
	if l, ok := Parse(configLang); ok {
		return l
	}
	locale := os.Getenv("LANG")
	if locale == "" {
		locale = os.Getenv("LC_ALL")
	}
	if strings.HasPrefix(strings.ToLower(locale), "zh") {
		return Zh
	}
	return En
}
