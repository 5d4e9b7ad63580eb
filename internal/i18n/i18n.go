// Package i18n translates user messages.
//
// Catalogs are YAML files embedded from locales/<locale>/<namespace>.yaml.
// Each file names its locale and namespace, and both must match the path.
// Messages are registered in a private x/text catalog so that printers never
// depend on process-wide state.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/proposals/internal/core"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"

	// DefaultLocale is the language of the form itself.
	DefaultLocale = "si-LK"

	// KeyAlertCode labels the support code in rendered alerts.
	KeyAlertCode = "form.alert.code"
)

//go:embed locales/*/*.yaml
var embeddedFS embed.FS

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Translator resolves locales and renders catalog keys.
type Translator struct {
	builder   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
	messages  map[language.Tag]map[string]string
}

// New loads the embedded catalogs. defaultLocale is preferred when
// negotiation finds no match; empty means DefaultLocale.
func New(defaultLocale string) (*Translator, error) {
	return Load(embeddedFS, defaultLocale)
}

// Load reads catalogs from fsys.
func Load(fsys fs.FS, defaultLocale string) (*Translator, error) {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	def, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("parse default locale %q: %w", defaultLocale, err)
	}

	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	t := &Translator{
		builder:  catalog.NewBuilder(catalog.Fallback(def)),
		messages: map[language.Tag]map[string]string{},
	}

	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if err := t.add(path, file); err != nil {
			return nil, err
		}
	}

	if _, ok := t.messages[def]; !ok {
		return nil, fmt.Errorf("default locale %s has no catalog", def)
	}

	// The default goes first so the matcher falls back to it.
	t.supported = append(t.supported, def)
	for tag := range t.messages {
		if tag != def {
			t.supported = append(t.supported, tag)
		}
	}
	sort.Slice(t.supported[1:], func(i, j int) bool {
		return t.supported[i+1].String() < t.supported[j+1].String()
	})
	t.matcher = language.NewMatcher(t.supported)
	return t, nil
}

func (t *Translator) add(path string, file catalogFile) error {
	localeFromPath := filepath.Base(filepath.Dir(path))
	namespaceFromPath := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if strings.TrimSpace(file.Locale) != localeFromPath {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", path, file.Locale, localeFromPath)
	}
	if strings.TrimSpace(file.Namespace) != namespaceFromPath {
		return fmt.Errorf("catalog %s: namespace %q must match filename %q", path, file.Namespace, namespaceFromPath)
	}
	if file.Messages == nil {
		return fmt.Errorf("catalog %s: messages map is required", path)
	}

	tag, err := language.Parse(localeFromPath)
	if err != nil {
		return fmt.Errorf("catalog %s: %w", path, err)
	}
	msgs, ok := t.messages[tag]
	if !ok {
		msgs = map[string]string{}
		t.messages[tag] = msgs
	}

	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", path)
		}
		if _, dup := msgs[key]; dup {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %s", path, key, tag)
		}
		msgs[key] = value
		if err := t.builder.SetString(tag, key, value); err != nil {
			return fmt.Errorf("catalog %s: register %q: %w", path, key, err)
		}
	}
	return nil
}

// Supported returns the catalog locales, default first.
func (t *Translator) Supported() []language.Tag {
	out := make([]language.Tag, len(t.supported))
	copy(out, t.supported)
	return out
}

// Default returns the fallback locale.
func (t *Translator) Default() language.Tag {
	return t.supported[0]
}

// Match picks the supported locale for an explicit choice or an
// Accept-Language header. An explicit choice wins when it parses.
func (t *Translator) Match(explicit, acceptLanguage string) language.Tag {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if tag, err := language.Parse(explicit); err == nil {
			return t.best(tag)
		}
	}
	if acceptLanguage = strings.TrimSpace(acceptLanguage); acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			return t.best(tags...)
		}
	}
	return t.Default()
}

func (t *Translator) best(tags ...language.Tag) language.Tag {
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.Default()
	}
	return t.supported[idx]
}

// ResolveTag negotiates the locale for a request from ?lang= and then
// Accept-Language.
func (t *Translator) ResolveTag(r *http.Request) language.Tag {
	if r == nil {
		return t.Default()
	}
	return t.Match(r.URL.Query().Get(LangParam), r.Header.Get("Accept-Language"))
}

// Printer returns a printer bound to this translator's catalog.
func (t *Translator) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(t.builder))
}

// Text renders a catalog key. Unknown keys render as themselves.
func (t *Translator) Text(tag language.Tag, key string) string {
	return t.Printer(tag).Sprintf(key)
}

// Message renders a user message, or "" for the zero message.
func (t *Translator) Message(tag language.Tag, m core.UserMessage) string {
	if m.IsZero() {
		return ""
	}
	return t.Text(tag, m.Key)
}

// Missing returns the keys absent from a locale's catalog.
func (t *Translator) Missing(tag language.Tag, keys []string) []string {
	msgs := t.messages[tag]
	var missing []string
	for _, key := range keys {
		if _, ok := msgs[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
