package logging

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// LoggerPatternConfig is an instance of a level specification for a given logger.
type LoggerPatternConfig struct {
	Pattern string `json:"pattern"`
	Level   string `json:"level"`
}

const (
	// e.g. "foo".
	validLoggerSectionName = `[a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*`
	// e.g. "foo" or "*".
	validLoggerSectionNameWithWildcard = `(` + validLoggerSectionName + `|\*)`
	// e.g. "foo.*.foo".
	validLoggerSectionsWithWildcard = validLoggerSectionNameWithWildcard + `(\.` + validLoggerSectionNameWithWildcard + `)*`
	// Restricts above regex to be the entire pattern.
	validLoggerName = `^` + validLoggerSectionsWithWildcard + `$`
)

var loggerPatternRegexp = regexp.MustCompile(validLoggerName)

func validatePattern(pattern string) bool {
	return loggerPatternRegexp.MatchString(pattern)
}

// buildRegexFromPattern turns a dotted logger pattern into an anchored regular expression where
// "*" matches any run of characters, dots included.
func buildRegexFromPattern(pattern string) string {
	var matcher strings.Builder
	matcher.WriteRune('^')
	for _, ch := range pattern {
		switch ch {
		case '*':
			matcher.WriteString(`.*`)
		case '.':
			matcher.WriteString(`\.`)
		default:
			matcher.WriteRune(ch)
		}
	}
	matcher.WriteRune('$')
	return matcher.String()
}

// Validate checks that the pattern is a dotted logger name, optionally with "*" sections, and
// that the level parses.
func (lpc LoggerPatternConfig) Validate() error {
	var errs error
	if !validatePattern(lpc.Pattern) {
		errs = multierr.Append(errs, errors.Errorf("invalid logger pattern %q", lpc.Pattern))
	}
	if _, err := LevelFromString(lpc.Level); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}
