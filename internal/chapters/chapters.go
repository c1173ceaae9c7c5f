package chapters

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// Chapter is one chapter atom. Times are nanoseconds from the start of the
// program. EndNs is only meaningful when HasEnd is set.
type Chapter struct {
	StartNs  int64
	EndNs    int64
	HasEnd   bool
	Name     string
	Language string
}

type xmlChapters struct {
	XMLName  xml.Name     `xml:"Chapters"`
	Editions []xmlEdition `xml:"EditionEntry"`
}

type xmlEdition struct {
	Atoms []xmlAtom `xml:"ChapterAtom"`
}

type xmlAtom struct {
	TimeStart string       `xml:"ChapterTimeStart"`
	TimeEnd   string       `xml:"ChapterTimeEnd,omitempty"`
	Displays  []xmlDisplay `xml:"ChapterDisplay"`
}

type xmlDisplay struct {
	String   string `xml:"ChapterString"`
	Language string `xml:"ChapterLanguage,omitempty"`
}

// Parse decodes Matroska chapter XML. Atoms from every edition are flattened
// into a single sorted timeline.
func Parse(data []byte) ([]Chapter, error) {
	var doc xmlChapters
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("chapters parse: %w", err)
	}

	var out []Chapter
	for _, edition := range doc.Editions {
		for _, atom := range edition.Atoms {
			start, err := ParseTimestamp(atom.TimeStart)
			if err != nil {
				return nil, fmt.Errorf("chapters parse: %w", err)
			}
			ch := Chapter{StartNs: start}
			if atom.TimeEnd != "" {
				end, err := ParseTimestamp(atom.TimeEnd)
				if err != nil {
					return nil, fmt.Errorf("chapters parse: %w", err)
				}
				ch.EndNs = end
				ch.HasEnd = true
			}
			if len(atom.Displays) > 0 {
				ch.Name = atom.Displays[0].String
				ch.Language = atom.Displays[0].Language
			}
			out = append(out, ch)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartNs < out[j].StartNs })
	return out, nil
}

// Marshal serializes the timeline back to chapter XML that mkvmerge accepts.
func Marshal(chs []Chapter) ([]byte, error) {
	doc := xmlChapters{Editions: []xmlEdition{{}}}
	for _, ch := range chs {
		atom := xmlAtom{TimeStart: FormatTimestamp(ch.StartNs)}
		if ch.HasEnd {
			atom.TimeEnd = FormatTimestamp(ch.EndNs)
		}
		if ch.Name != "" {
			lang := ch.Language
			if lang == "" {
				lang = "und"
			}
			atom.Displays = []xmlDisplay{{String: ch.Name, Language: lang}}
		}
		doc.Editions[0].Atoms = append(doc.Editions[0].Atoms, atom)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("chapters marshal: %w", err)
	}
	return []byte(xml.Header + string(body) + "\n"), nil
}

// FormatTimestamp renders nanoseconds as HH:MM:SS.nnnnnnnnn.
func FormatTimestamp(ns int64) string {
	if ns < 0 {
		ns = 0
	}
	sec := ns / 1e9
	frac := ns % 1e9
	return fmt.Sprintf("%02d:%02d:%02d.%09d", sec/3600, (sec/60)%60, sec%60, frac)
}

// ParseTimestamp reads HH:MM:SS(.fraction) into nanoseconds. Fractions
// shorter than nine digits are padded, matching how muxers emit them.
func ParseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	var h, m int64
	var secPart string
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	if _, err := fmt.Sscanf(parts[0], "%d", &h); err != nil {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &m); err != nil {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	secPart = parts[2]

	whole := secPart
	frac := ""
	if idx := strings.IndexByte(secPart, '.'); idx >= 0 {
		whole = secPart[:idx]
		frac = secPart[idx+1:]
	}
	var sec int64
	if _, err := fmt.Sscanf(whole, "%d", &sec); err != nil {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	if len(frac) > 9 {
		frac = frac[:9]
	}
	for len(frac) < 9 {
		frac += "0"
	}
	var fracNs int64
	if frac != "000000000" {
		if _, err := fmt.Sscanf(frac, "%d", &fracNs); err != nil {
			return 0, fmt.Errorf("bad timestamp %q", s)
		}
	}
	if h < 0 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	return ((h*3600+m*60+sec)*1e9 + fracNs), nil
}
