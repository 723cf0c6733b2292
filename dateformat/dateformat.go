// Package dateformat converts the Swift DateFormatter patterns Aidoku
// sources ship (inherited from the iOS app this ecosystem originated on)
// into a form Go's time package can parse with, and parses dates against
// them.
package dateformat

import (
	"strings"
	"time"
	"unicode"
)

// swiftToStrptime mirrors table in §4.3: consecutive runs of the same
// format letter are counted, and the run length (not just the letter)
// picks the strptime directive. Single-quoted runs are literals; a pair of
// adjacent single quotes is a literal quote character.
func swiftToStrptime(format string) string {
	var out strings.Builder
	runes := []rune(format)
	i := 0
	for i < len(runes) {
		r := runes[i]

		if r == '\'' {
			if i+1 < len(runes) && runes[i+1] == '\'' {
				out.WriteRune('\'')
				i += 2
				continue
			}
			// Consume until the closing quote (or end of string); a
			// doubled quote inside the run is a literal quote too.
			j := i + 1
			for j < len(runes) {
				if runes[j] == '\'' {
					if j+1 < len(runes) && runes[j+1] == '\'' {
						out.WriteRune('\'')
						j += 2
						continue
					}
					break
				}
				out.WriteRune(runes[j])
				j++
			}
			if j < len(runes) {
				j++ // skip closing quote
			}
			i = j
			continue
		}

		if !unicode.IsLetter(r) {
			out.WriteRune(r)
			i++
			continue
		}

		count := 1
		for i+count < len(runes) && runes[i+count] == r {
			count++
		}

		out.WriteString(directiveFor(r, count))
		i += count
	}

	return out.String()
}

func directiveFor(letter rune, count int) string {
	switch letter {
	case 'y':
		if count <= 2 {
			return "%y"
		}
		return "%Y"
	case 'M':
		switch {
		case count <= 2:
			return "%m"
		case count == 3:
			return "%b"
		default:
			return "%B"
		}
	case 'd':
		return "%d"
	case 'E':
		if count <= 3 {
			return "%a"
		}
		return "%A"
	case 'H':
		return "%H"
	case 'h':
		return "%I"
	case 'm':
		return "%M"
	case 's':
		return "%S"
	case 'a':
		return "%p"
	case 'S':
		return "%f"
	case 'z':
		if count <= 3 {
			return "%z"
		}
		return "%Z"
	case 'Z':
		return "%Z"
	default:
		// Unrecognized letters pass through unchanged; the table in §4.3
		// doesn't cover them and no known Aidoku source relies on more.
		return strings.Repeat(string(letter), count)
	}
}

var strptimeToGoToken = map[string]string{
	"%Y": "2006",
	"%y": "06",
	"%m": "01",
	"%b": "Jan",
	"%B": "January",
	"%d": "02",
	"%a": "Mon",
	"%A": "Monday",
	"%H": "15",
	"%I": "03",
	"%M": "04",
	"%S": "05",
	"%p": "PM",
	"%f": "999999999",
	"%z": "-0700",
	"%Z": "MST",
}

func strptimeToGoLayout(strptimeFormat string) string {
	var out strings.Builder
	runes := []rune(strptimeFormat)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '%' && i+1 < len(runes) {
			token := "%" + string(runes[i+1])
			if layout, ok := strptimeToGoToken[token]; ok {
				out.WriteString(layout)
				i++
				continue
			}
		}
		out.WriteRune(runes[i])
	}
	return out.String()
}

// Strptime exposes the Swift→strptime conversion for callers (and tests)
// that want the intermediate representation.
func Strptime(swiftFormat string) string {
	return swiftToStrptime(swiftFormat)
}

// Parse parses dateStr against a Swift DateFormatter pattern. locale is
// accepted and ignored, matching the original behavior (§9 Design Notes);
// an implementer wiring a locale-aware month parser can do so here without
// changing the signature. tz is an IANA zone name; empty or unrecognized
// falls back to UTC.
func Parse(dateStr, swiftFormat, locale, tz string) (time.Time, bool) {
	_ = locale

	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	goLayout := strptimeToGoLayout(swiftToStrptime(swiftFormat))
	t, err := time.ParseInLocation(goLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
