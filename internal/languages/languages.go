package languages

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a translation target offered to users
type Language struct {
	Code   string `json:"code" yaml:"code"`
	Name   string `json:"name" yaml:"name"`
	Native string `json:"native" yaml:"native"`
}

var catalog = []struct{ code, name string }{
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
	{"it", "Italian"},
	{"pt", "Portuguese"},
	{"nl", "Dutch"},
	{"ru", "Russian"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"zh-CN", "Chinese (Simplified)"},
	{"zh-TW", "Chinese (Traditional)"},
	{"ar", "Arabic"},
	{"hi", "Hindi"},
	{"bn", "Bengali"},
	{"sv", "Swedish"},
	{"da", "Danish"},
	{"fi", "Finnish"},
	{"no", "Norwegian"},
	{"pl", "Polish"},
	{"tr", "Turkish"},
	{"uk", "Ukrainian"},
	{"cs", "Czech"},
	{"el", "Greek"},
	{"he", "Hebrew"},
	{"id", "Indonesian"},
	{"ms", "Malay"},
	{"ro", "Romanian"},
	{"sk", "Slovak"},
	{"th", "Thai"},
	{"vi", "Vietnamese"},
}

var (
	all    []Language
	byCode = map[language.Tag]Language{}
	byName = map[string]Language{}

	// English names of every ISO 639-1 base language, e.g. "english" -> "English"
	baseNames = map[string]string{}
)

func init() {
	all = make([]Language, 0, len(catalog))
	for _, c := range catalog {
		tag := language.MustParse(c.code)
		l := Language{
			Code:   c.code,
			Name:   c.name,
			Native: display.Self.Name(tag),
		}
		all = append(all, l)
		byCode[tag] = l
		byName[strings.ToLower(c.name)] = l
	}

	namer := display.English.Tags()
	for a := 'a'; a <= 'z'; a++ {
		for b := 'a'; b <= 'z'; b++ {
			tag, err := language.Parse(string([]rune{a, b}))
			if err != nil || tag == language.Und {
				continue
			}
			if name := namer.Name(tag); name != "" {
				if _, exists := baseNames[strings.ToLower(name)]; !exists {
					baseNames[strings.ToLower(name)] = name
				}
			}
		}
	}
}

// All returns the catalog in display order
func All() []Language {
	out := make([]Language, len(all))
	copy(out, all)
	return out
}

// Lookup finds a catalog entry by BCP 47 code or English name
func Lookup(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Language{}, false
	}
	if l, ok := byName[strings.ToLower(s)]; ok {
		return l, true
	}
	if tag, err := language.Parse(s); err == nil {
		if l, ok := byCode[tag]; ok {
			return l, true
		}
	}
	return Language{}, false
}

// Resolve turns user input into the language name used in prompts.
// Catalog entries win; otherwise an English language name or any valid
// BCP 47 tag is accepted. The undetermined tag "und" is rejected.
func Resolve(s string) (string, error) {
	if l, ok := Lookup(s); ok {
		return l.Name, nil
	}

	s = strings.TrimSpace(s)
	if name, ok := baseNames[strings.ToLower(s)]; ok {
		return name, nil
	}

	tag, err := language.Parse(s)
	if err != nil || tag == language.Und {
		return "", fmt.Errorf("unknown language %q", s)
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return "", fmt.Errorf("unknown language %q", s)
	}
	return name, nil
}
