package core

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"
)

// matcherKind distinguishes date-producing patterns from pure clock-time
// patterns, which anchor to today's date.
type matcherKind int

const (
	matchDate matcherKind = iota
	matchTime
)

// dateMatcher is one entry in the ordered pattern cascade. Ordering is part
// of the extraction contract: candidates are emitted in cascade order, and
// ties between equal dates are broken by emission order.
type dateMatcher struct {
	name string
	re   *regexp.Regexp
	kind matcherKind
}

const monthNames = `january|february|march|april|may|june|july|august|september|october|november|december`
const monthAbbrevs = `jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec`
const deadlineAnchor = `(?:deadline|due|expires|closing date|last date|submit by|by)\s*:?\s*`

// deadlineMatchers is the pattern cascade, most specific first: anchored
// dates, then bare numeric dates, then month-name dates, then clock times.
var deadlineMatchers = []dateMatcher{
	{"anchored-month-date", regexp.MustCompile(`(?i)` + deadlineAnchor + `((?:` + monthNames + `|` + monthAbbrevs + `)\.?\s+\d{1,2}(?:,?\s+\d{4})?)`), matchDate},
	{"anchored-numeric-date", regexp.MustCompile(`(?i)` + deadlineAnchor + `\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`), matchDate},
	{"anchored-iso-date", regexp.MustCompile(`(?i)` + deadlineAnchor + `\b(\d{4}-\d{1,2}-\d{1,2})\b`), matchDate},
	{"numeric-date", regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`), matchDate},
	{"iso-date", regexp.MustCompile(`\b(\d{4}-\d{1,2}-\d{1,2})\b`), matchDate},
	{"month-day-date", regexp.MustCompile(`(?i)((?:` + monthNames + `)\s+\d{1,2}(?:,?\s+\d{4})?)`), matchDate},
	{"day-month-date", regexp.MustCompile(`(?i)(\d{1,2}\s+(?:` + monthNames + `)(?:\s+\d{4})?)`), matchDate},
	{"abbrev-month-date", regexp.MustCompile(`(?i)((?:` + monthAbbrevs + `)\.?\s+\d{1,2}(?:,?\s+\d{4})?)`), matchDate},
	{"day-abbrev-date", regexp.MustCompile(`(?i)(\d{1,2}\s+(?:` + monthAbbrevs + `)\.?\s+\d{4})`), matchDate},
	{"at-clock-time", regexp.MustCompile(`(?i)at\s+(\d{1,2}:\d{2}\s*(?:am|pm))`), matchTime},
	{"zoned-clock-time", regexp.MustCompile(`(?i)(\d{1,2}:\d{2})\s*(?:est|pst|cst|mst|utc|gmt)`), matchTime},
	{"by-clock-time", regexp.MustCompile(`(?i)by\s+(\d{1,2}:\d{2})`), matchTime},
}

var explicitYearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

const (
	// maxPastRollDays bounds year inference: a no-year date up to this many
	// days in the past is read as next year's occurrence; older than that it
	// is treated as describing a past event and dropped.
	maxPastRollDays = 45
	// farFutureDays flags no-year subject dates this far out as suspicious
	farFutureDays = 180
)

// DateParser finds deadline candidates in free text and resolves them to
// concrete timestamps.
type DateParser struct {
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewDateParser creates a parser resolving dates in the given location
func NewDateParser(logger *zap.Logger, loc *time.Location) *DateParser {
	if loc == nil {
		loc = time.Local
	}
	return &DateParser{logger: logger, loc: loc, now: time.Now}
}

// FindCandidates scans text with the pattern cascade and returns every span
// that survives resolution and recency filtering, in cascade order. Spans
// that match a pattern but fail to parse are dropped silently: they are
// expected noise in free text, not errors.
func (p *DateParser) FindCandidates(text string, source CandidateSource) []DateCandidate {
	now := p.now().In(p.loc)
	var candidates []DateCandidate

	for _, m := range deadlineMatchers {
		for _, groups := range m.re.FindAllStringSubmatch(text, -1) {
			raw := strings.TrimSpace(groups[1])
			if len(raw) < 3 {
				continue
			}

			var cand *DateCandidate
			if m.kind == matchTime {
				cand = p.resolveTime(raw, now, source)
			} else {
				cand = p.resolveDate(raw, now, source)
			}
			if cand == nil {
				continue
			}
			p.logger.Debug("Resolved date candidate",
				zap.String("pattern", m.name),
				zap.String("raw", raw),
				zap.Time("resolved", cand.ResolvedAt),
				zap.String("source", string(source)))
			candidates = append(candidates, *cand)
		}
	}

	return candidates
}

// resolveDate parses a date span, applies year inference and filters
// non-future results.
func (p *DateParser) resolveDate(raw string, now time.Time, source CandidateSource) *DateCandidate {
	hasYear := explicitYearRe.MatchString(raw)

	parsed, err := dateparse.ParseIn(raw, p.loc)
	if err != nil && !hasYear {
		// Some year-less spans fail to parse on their own; retry anchored
		// to the current year.
		parsed, err = dateparse.ParseIn(raw+", "+strconv.Itoa(now.Year()), p.loc)
	}
	if err != nil {
		p.logger.Debug("Unparseable date span dropped", zap.String("raw", raw))
		return nil
	}
	if !hasYear && parsed.Year() == 0 {
		// Month-day spans without a year ("June 1") parse to year 0; anchor
		// them to the current year before inference.
		parsed = time.Date(now.Year(), parsed.Month(), parsed.Day(),
			parsed.Hour(), parsed.Minute(), 0, 0, p.loc)
	}

	resolved, ok := InferYear(parsed, now, hasYear, source == SourceSubject)
	if !ok {
		p.logger.Debug("Past date candidate dropped",
			zap.String("raw", raw),
			zap.Time("parsed", parsed))
		return nil
	}

	cand := DateCandidate{
		RawText:         raw,
		ResolvedAt:      resolved,
		Source:          source,
		HasExplicitYear: hasYear,
		HasTime:         resolved.Hour() != 0 || resolved.Minute() != 0,
	}

	if source == SourceSubject && !hasYear {
		daysOut := daysBetween(now, resolved)
		if daysOut > farFutureDays {
			cand.Suspicious = true
			p.logger.Warn("Far-future subject date without explicit year",
				zap.String("raw", raw),
				zap.Int("days_out", daysOut))
		}
	}

	if !futureEnough(cand.ResolvedAt, cand.HasTime, now) {
		p.logger.Debug("Non-future candidate dropped",
			zap.String("raw", raw),
			zap.Time("resolved", cand.ResolvedAt))
		return nil
	}
	return &cand
}

// resolveTime parses a pure clock-time span and anchors it to today
func (p *DateParser) resolveTime(raw string, now time.Time, source CandidateSource) *DateCandidate {
	hour, minute, ok := parseClock(raw)
	if !ok {
		p.logger.Debug("Unparseable time span dropped", zap.String("raw", raw))
		return nil
	}

	resolved := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, p.loc)
	if !resolved.After(now) {
		// A bare clock time earlier than now cannot be an upcoming deadline
		return nil
	}
	return &DateCandidate{
		RawText:    raw,
		ResolvedAt: resolved,
		Source:     source,
		HasTime:    true,
		TimeOnly:   true,
	}
}

// InferYear resolves the year of a parsed date. With an explicit year the
// parse is trusted outright. Without one, a date up to 45 days in the past
// rolls forward to next year's occurrence; older past dates are rejected
// (ok=false) as descriptions of past events rather than upcoming deadlines.
// Subject-sourced dates get no extra leniency: anything still in the past
// after rolling is rejected by the caller's future filter.
func InferYear(parsed, now time.Time, explicitYear, fromSubject bool) (time.Time, bool) {
	if explicitYear {
		return parsed, true
	}

	daysDiff := daysBetween(now, parsed)
	if daysDiff < 0 {
		past := -daysDiff
		if past > maxPastRollDays {
			return time.Time{}, false
		}
		rolled := time.Date(parsed.Year()+1, parsed.Month(), parsed.Day(),
			parsed.Hour(), parsed.Minute(), 0, 0, parsed.Location())
		return rolled, true
	}
	if daysDiff == 0 && fromSubject && parsed.Hour() == 0 && parsed.Minute() == 0 {
		// Today with no time in a subject line is too ambiguous to act on
		return time.Time{}, false
	}
	return parsed, true
}

// futureEnough keeps strictly-future dates, plus today when an explicit
// future clock time is attached.
func futureEnough(resolved time.Time, hasTime bool, now time.Time) bool {
	switch {
	case daysBetween(now, resolved) > 0:
		return true
	case daysBetween(now, resolved) == 0:
		return hasTime && resolved.After(now)
	default:
		return false
	}
}

// daysBetween returns the whole-day difference from a's date to b's date
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// parseClock parses "H:MM", optionally suffixed with am/pm
func parseClock(raw string) (hour, minute int, ok bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	meridiem := ""
	if strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") {
		meridiem = s[len(s)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}

	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if meridiem == "pm" && h != 12 {
		h += 12
	} else if meridiem == "am" && h == 12 {
		h = 0
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
