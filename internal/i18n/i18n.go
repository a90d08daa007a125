// Package i18n selects a message printer for CLI output.
package i18n

import (
	"context"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the fallback language
var DefaultLang = language.English

// SupportedLangs are the languages we support
var SupportedLangs = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(SupportedLangs)

// CLI message keys. English text is the key itself.
const (
	MsgCreated    = "created link %s (index %d)"
	MsgDeleted    = "deleted link %d"
	MsgModified   = "modified link %s (index %d)"
	MsgNoChanges  = "no changes"
	MsgNoLinks    = "no links found"
	MsgLinkCount  = "%d links"
	MsgWatching   = "watching link notifications, press Ctrl-C to stop"
	MsgMetricsURL = "serving metrics on %s"
)

func init() {
	de := language.German
	_ = message.SetString(de, MsgCreated, "Link %s angelegt (Index %d)")
	_ = message.SetString(de, MsgDeleted, "Link %d gelöscht")
	_ = message.SetString(de, MsgModified, "Link %s geändert (Index %d)")
	_ = message.SetString(de, MsgNoChanges, "keine Änderungen")
	_ = message.SetString(de, MsgNoLinks, "keine Links gefunden")
	_ = message.SetString(de, MsgLinkCount, "%d Links")
	_ = message.SetString(de, MsgWatching, "Link-Benachrichtigungen werden beobachtet, Strg-C beendet")
	_ = message.SetString(de, MsgMetricsURL, "Metriken unter %s")
}

type contextKey struct{}

// printerKey is the key used to store the printer in the context
var printerKey = contextKey{}

// MatchLanguage returns the best matching language for a tag list such as
// "de-DE,de;q=0.9".
func MatchLanguage(tags string) language.Tag {
	parsed, _, _ := language.ParseAcceptLanguage(tags)
	tag, _, _ := matcher.Match(parsed...)
	return tag
}

// NewPrinter returns a message printer for the given language
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// WithPrinter returns a new context with the printer injected
func WithPrinter(ctx context.Context, p *message.Printer) context.Context {
	return context.WithValue(ctx, printerKey, p)
}

// GetPrinter returns the printer from the context, or a default one
func GetPrinter(ctx context.Context) *message.Printer {
	p, ok := ctx.Value(printerKey).(*message.Printer)
	if !ok {
		return message.NewPrinter(DefaultLang)
	}
	return p
}

// NewCLIPrinter returns a printer for the system's locale (from env vars)
func NewCLIPrinter() *message.Printer {
	return message.NewPrinter(localeTag(os.Getenv("LC_ALL"), os.Getenv("LANG")))
}

func localeTag(vars ...string) language.Tag {
	var lang string
	for _, v := range vars {
		if v != "" {
			lang = v
			break
		}
	}
	if lang == "" || lang == "C" || lang == "POSIX" {
		return DefaultLang
	}

	// Strip encoding (e.g. .UTF-8) if present
	if i := strings.Index(lang, "."); i != -1 {
		lang = lang[:i]
	}
	lang = strings.ReplaceAll(lang, "_", "-")

	tag, err := language.Parse(lang)
	if err != nil {
		return MatchLanguage(lang)
	}
	tag, _, _ = matcher.Match(tag)
	return tag
}
