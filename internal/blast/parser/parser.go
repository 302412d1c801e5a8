// Package parser builds a structured report from the markup-annotated output of a
// search binary.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/seqsearch/internal/domain/search/report"
)

var (
	wrapperTag    = regexp.MustCompile(`(?i)^</?(HTML|BODY|PRE)\b[^>]*>`)
	scriptInclude = regexp.MustCompile(`^<script src="blastResult\.js"></script>`)
	queryMarker   = regexp.MustCompile(`^(?:<b>)?Query=(?:</b>)?\s*(.*)$`)
	summaryMarker = regexp.MustCompile(`^  Database: `)
	positionalRow = regexp.MustCompile(`^(Query|Sbjct)\s`)
	anyTag        = regexp.MustCompile(`</?[^>]*>`)
	hitHeader     = regexp.MustCompile(`^>\s?(\S+)\s*(.*)`)
)

// rule handles a line when its predicate matches. Rules are tried in declaration
// order and the first match wins.
type rule struct {
	name  string
	match func(p *parser, line string) bool
	apply func(p *parser, line string)
}

var rules = []rule{
	{"summary", (*parser).inSummary, (*parser).appendSummary},
	{"summary-marker", matches(summaryMarker), (*parser).beginSummary},
	{"query-marker", matches(queryMarker), (*parser).beginQuery},
	{"reference", (*parser).beforeFirstQuery, (*parser).appendReference},
	{"hit-marker", isHitMarker, (*parser).beginHit},
	{"preamble", (*parser).noOpenHit, (*parser).appendPreamble},
	{"alignment", always, (*parser).appendAlignment},
}

// Parse builds a report from captured output lines in a single forward pass.
// Input without any query marker yields a report with zero queries.
func Parse(lines []string) *report.Report {
	p := &parser{rep: &report.Report{Queries: []*report.Query{}}}
	p.rep.RawLines = append([]string(nil), lines...)

	for _, raw := range lines {
		line, keep := stripNoise(raw)
		if !keep {
			continue
		}
		for _, r := range rules {
			if r.match(p, line) {
				r.apply(p, line)
				break
			}
		}
	}

	p.rep.Reference = strings.TrimSpace(strings.Join(p.reference, "\n"))
	p.rep.Summary = strings.Join(p.summary, "\n")
	return p.rep
}

type parser struct {
	rep       *report.Report
	query     *report.Query
	hit       *report.Hit
	seen      bool
	queries   map[string]*report.Query
	reference []string
	summary   []string
	summarize bool
}

// stripNoise removes document wrapper tags and the script include. A line left empty
// by stripping is dropped; blank lines in the input are kept.
func stripNoise(line string) (string, bool) {
	stripped := false
	for {
		loc := wrapperTag.FindStringIndex(line)
		if loc == nil {
			loc = scriptInclude.FindStringIndex(line)
		}
		if loc == nil {
			break
		}
		line = line[loc[1]:]
		stripped = true
	}
	if stripped && strings.TrimSpace(line) == "" {
		return "", false
	}
	return line, true
}

func matches(re *regexp.Regexp) func(*parser, string) bool {
	return func(_ *parser, line string) bool { return re.MatchString(line) }
}

func isHitMarker(_ *parser, line string) bool { return strings.HasPrefix(line, ">") }

func always(*parser, string) bool { return true }

func (p *parser) inSummary(string) bool { return p.summarize }

func (p *parser) beforeFirstQuery(string) bool { return !p.seen }

func (p *parser) noOpenHit(string) bool { return p.hit == nil }

func (p *parser) appendSummary(line string) { p.summary = append(p.summary, line) }

func (p *parser) beginSummary(line string) {
	p.query = nil
	p.hit = nil
	p.summarize = true
	p.summary = append(p.summary, line)
}

func (p *parser) beginQuery(line string) {
	id := strings.TrimSpace(queryMarker.FindStringSubmatch(line)[1])
	p.seen = true
	p.hit = nil

	if q, ok := p.queries[id]; ok {
		p.query = q
		return
	}
	q := &report.Query{ID: id, Preamble: []string{}, Hits: []*report.Hit{}}
	if p.queries == nil {
		p.queries = make(map[string]*report.Query)
	}
	p.queries[id] = q
	p.rep.Queries = append(p.rep.Queries, q)
	p.query = q
}

func (p *parser) appendReference(line string) { p.reference = append(p.reference, line) }

func (p *parser) appendPreamble(line string) { p.query.Preamble = append(p.query.Preamble, line) }

func (p *parser) beginHit(line string) {
	id, meta, seqID := ParseHeader(line)
	if h, ok := p.query.Hit(id); ok {
		p.hit = h
		return
	}
	h := &report.Hit{ID: id, SeqID: seqID, Meta: meta, Header: line, Alignment: []string{}}
	p.query.Hits = append(p.query.Hits, h)
	p.hit = h
}

func (p *parser) appendAlignment(line string) {
	p.hit.Alignment = append(p.hit.Alignment, line)
	lo, hi, ok := positions(line)
	if !ok {
		return
	}
	if p.hit.Coordinates == nil {
		p.hit.Coordinates = &report.Span{Start: lo, End: hi}
		return
	}
	p.hit.Coordinates.Start = min(p.hit.Coordinates.Start, lo)
	p.hit.Coordinates.End = max(p.hit.Coordinates.End, hi)
}

// ParseHeader extracts the display id and description from a hit header line.
// seqID is empty when the header carries its anchor before the id, which is how
// corpora indexed without parse-seqids are reported.
func ParseHeader(line string) (id, meta, seqID string) {
	plain := anyTag.ReplaceAllString(line, "")
	if m := hitHeader.FindStringSubmatch(plain); m != nil {
		id, meta = m[1], strings.TrimSpace(m[2])
	} else {
		meta = strings.TrimSpace(strings.TrimPrefix(plain, ">"))
	}
	if !strings.HasPrefix(line, "><a") {
		seqID = id
	}
	return id, meta, seqID
}

// positions returns the extremes of the first and last numeric tokens of a
// Query or Sbjct row.
func positions(line string) (lo, hi int, ok bool) {
	line = anyTag.ReplaceAllString(line, "")
	if !positionalRow.MatchString(line) {
		return 0, 0, false
	}
	var nums []int
	for _, f := range strings.Fields(line) {
		if n, err := strconv.Atoi(f); err == nil {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return 0, 0, false
	}
	first, last := nums[0], nums[len(nums)-1]
	return min(first, last), max(first, last), true
}
