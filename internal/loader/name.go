package loader

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var tripPrefix = regexp.MustCompile(`^trip[_-]?\d*[_-]+`)

// TripName returns a display name for the configured trip: the trip id when
// set, otherwise one derived from the source file name
// ("data/trip_1_cross_country.json" becomes "Cross Country"). Database
// sources without an id have no name.
func TripName(source, tripID string) string {
	if id := strings.TrimSpace(tripID); id != "" {
		return id
	}
	var p string
	switch sourceKind(source) {
	case "file":
		fp, err := filePath(source)
		if err != nil {
			return ""
		}
		p = fp
	case "http":
		u, err := url.Parse(source)
		if err != nil {
			return ""
		}
		p = u.Path
	default:
		return ""
	}

	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	if stripped := tripPrefix.ReplaceAllString(strings.ToLower(base), ""); stripped != "" {
		base = stripped
	}
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(base))
	if len(words) == 0 {
		return ""
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}
