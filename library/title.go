package library

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/mo"
)

var (
	episodeTag  = regexp.MustCompile(`(?i)\bs(\d{1,2})[ ._-]?e\d{1,3}\b`)
	seasonWord  = regexp.MustCompile(`(?i)\bseason[ ._-]?(\d{1,2})\b`)
	bracketed   = regexp.MustCompile(`[\[(][^\])]*[\])]`)
	releaseJunk = regexp.MustCompile(`(?i)\b(\d{3,4}p|x26[45]|h\.?26[45]|hevc|web-?dl|webrip|bluray|bdrip|hdtv|aac|flac)\b.*$`)
	separators  = regexp.MustCompile(`[._]+`)
	spaces      = regexp.MustCompile(`\s+`)
	trailingEp  = regexp.MustCompile(`\s-\s?\d{1,4}(v\d)?$`)
)

// GuessTitle derives a display title and season number from a release-style file or directory name.
func GuessTitle(path string) (string, mo.Option[int]) {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); len(ext) > 1 && len(ext) <= 5 {
		name = strings.TrimSuffix(name, ext)
	}

	season := mo.None[int]()
	for _, re := range []*regexp.Regexp{episodeTag, seasonWord} {
		if loc := re.FindStringSubmatchIndex(name); loc != nil {
			if n, err := strconv.Atoi(name[loc[2]:loc[3]]); err == nil {
				season = mo.Some(n)
			}
			name = name[:loc[0]]
			break
		}
	}

	name = bracketed.ReplaceAllString(name, " ")
	name = separators.ReplaceAllString(name, " ")
	name = releaseJunk.ReplaceAllString(name, "")
	name = strings.Trim(spaces.ReplaceAllString(name, " "), " -")
	name = strings.TrimSpace(trailingEp.ReplaceAllString(name, ""))

	if name == "" {
		return filepath.Base(path), season
	}
	return name, season
}
