package language

import (
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese"}},
	{"es", "spa", "", "Spanish", []string{"spanish"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"ar", "ara", "", "Arabic", []string{"arabic"}},
	{"tr", "tur", "", "Turkish", []string{"turkish"}},
	{"pl", "pol", "", "Polish", []string{"polish"}},
	{"nl", "nld", "dut", "Dutch", []string{"dutch"}},
	{"sv", "swe", "", "Swedish", []string{"swedish"}},
	{"no", "nor", "", "Norwegian", []string{"norwegian"}},
	{"fi", "fin", "", "Finnish", []string{"finnish"}},
	{"da", "dan", "", "Danish", []string{"danish"}},
	{"cs", "ces", "cze", "Czech", []string{"czech"}},
	{"hu", "hun", "", "Hungarian", []string{"hungarian"}},
	{"el", "ell", "gre", "Greek", []string{"greek"}},
	{"he", "heb", "", "Hebrew", []string{"hebrew"}},
	{"id", "ind", "", "Indonesian", []string{"indonesian"}},
	{"vi", "vie", "", "Vietnamese", []string{"vietnamese"}},
	{"th", "tha", "", "Thai", []string{"thai"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
	{"uk", "ukr", "", "Ukrainian", []string{"ukrainian"}},
	{"ro", "ron", "rum", "Romanian", []string{"romanian"}},
	{"bg", "bul", "", "Bulgarian", []string{"bulgarian"}},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// Normalize converts a language preference to the ISO 639-2 form MKV track
// properties use. Empty input and "und" return empty, meaning no preference.
// Unrecognized values pass through lowercased so exotic codes still compare.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == "und" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if iso3 := registryISO3(code); iso3 != "" {
		return iso3
	}
	return code
}

// registryISO3 resolves codes outside the curated table against the full
// language registry. Returns empty for unknown subtags.
func registryISO3(code string) string {
	base, err := xlang.ParseBase(code)
	if err != nil {
		return ""
	}
	return base.ISO3()
}

// ToISO3 converts any recognized language code to ISO 639-2 (3-letter).
// Returns "und" for unrecognized input, passes through unknown 3-letter codes.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if iso3 := registryISO3(code); iso3 != "" {
		return iso3
	}
	if len(code) == 3 {
		return code
	}
	return "und"
}

// Matches reports whether a track language satisfies a preference. Both sides
// are normalized first; an empty or "any" preference matches anything.
func Matches(trackLang, preference string) bool {
	pref := Normalize(preference)
	if pref == "" || pref == "any" {
		return true
	}
	return Normalize(trackLang) == pref
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	if base, err := xlang.ParseBase(strings.ToLower(strings.TrimSpace(code))); err == nil {
		if name := display.English.Languages().Name(xlang.Make(base.String())); name != "" {
			return name
		}
	}
	return strings.ToUpper(strings.TrimSpace(code))
}
