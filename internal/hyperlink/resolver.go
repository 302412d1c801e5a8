// Package hyperlink cross-references search hits to the entry retrieval endpoint.
//
// Operators customise linking by injecting a LineBuilder (replaces the whole hit
// header) or a LinkBuilder (supplies only the target). A declining line builder
// hands the hit to the link builder. A declining link builder leaves the original
// header line untouched. The standard retrieval link applies only when no link
// builder is registered.
package hyperlink

import (
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/seqsearch/internal/domain/search/report"
)

// EntriesPath is the retrieval endpoint served by the transport layer.
const EntriesPath = "/entries"

// Context describes the hit being cross-referenced.
type Context struct {
	// SeqID is the retrievable id; empty when none could be extracted.
	SeqID       string
	DisplayID   string
	Meta        string
	Header      string
	CorpusIDs   []string
	// Coordinates bound the Query and Sbjct rows together.
	Coordinates *report.Span
}

// LineBuilder produces a complete display fragment for a hit.
type LineBuilder interface {
	BuildLine(c Context) (string, bool)
}

// LinkBuilder produces the target reference for a hit.
type LinkBuilder interface {
	BuildLink(c Context) (string, bool)
}

// LineBuilderFunc adapts a function to LineBuilder.
type LineBuilderFunc func(c Context) (string, bool)

// BuildLine calls f.
func (f LineBuilderFunc) BuildLine(c Context) (string, bool) { return f(c) }

// LinkBuilderFunc adapts a function to LinkBuilder.
type LinkBuilderFunc func(c Context) (string, bool)

// BuildLink calls f.
func (f LinkBuilderFunc) BuildLink(c Context) (string, bool) { return f(c) }

// Resolver applies the override chain. Safe for concurrent use when the injected
// builders are.
type Resolver struct {
	line     LineBuilder
	link     LinkBuilder
	basePath string
	logger   *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLineBuilder registers a whole-line builder.
func WithLineBuilder(b LineBuilder) Option {
	return func(r *Resolver) { r.line = b }
}

// WithLinkBuilder registers a link builder.
func WithLinkBuilder(b LinkBuilder) Option {
	return func(r *Resolver) { r.link = b }
}

// WithBasePath prefixes root-relative references, for deployments under a sub-path.
func WithBasePath(p string) Option {
	return func(r *Resolver) { r.basePath = strings.TrimRight(p, "/") }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a Resolver. Without options every hit gets the standard link.
func New(opts ...Option) *Resolver {
	r := &Resolver{logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the display fragment for a hit. Hits without a retrievable id get
// their original header line back unchanged.
func (r *Resolver) Resolve(c Context) string {
	if c.SeqID == "" {
		return c.Header
	}

	if r.line != nil {
		if s, ok := r.line.BuildLine(c); ok {
			r.logger.Debug("Custom hit line", zap.String("seq_id", c.SeqID))
			return s
		}
	}

	ref := StandardLink([]string{c.SeqID}, c.CorpusIDs)
	if r.link != nil {
		var ok bool
		if ref, ok = r.link.BuildLink(c); !ok {
			r.logger.Debug("No link added", zap.String("seq_id", c.SeqID))
			return c.Header
		}
	}
	return Fragment(r.absolute(ref), c.SeqID, c.Meta)
}

// ResolveHit is Resolve for a parsed hit.
func (r *Resolver) ResolveHit(h *report.Hit, corpusIDs []string) string {
	return r.Resolve(Context{
		SeqID:       h.SeqID,
		DisplayID:   h.ID,
		Meta:        h.Meta,
		Header:      h.Header,
		CorpusIDs:   corpusIDs,
		Coordinates: h.Coordinates,
	})
}

// Link is a reference with its anchor text.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// RetrieveAll returns the link fetching every retrievable hit at once.
func (r *Resolver) RetrieveAll(seqIDs, corpusIDs []string) (Link, bool) {
	if len(seqIDs) == 0 {
		return Link{}, false
	}
	return Link{
		Href: r.absolute(StandardLink(seqIDs, corpusIDs)),
		Text: fmt.Sprintf("FASTA of %d retrievable hit(s)", len(seqIDs)),
	}, true
}

func (r *Resolver) absolute(ref string) string {
	if r.basePath != "" && strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		return r.basePath + ref
	}
	return ref
}

// queryEscaper escapes what would break a query value while keeping id
// punctuation such as '|' readable. Spaces become %20.
var queryEscaper = strings.NewReplacer(
	"%", "%25", "&", "%26", "#", "%23", "+", "%2B", "=", "%3D",
	" ", "%20", "'", "%27", `"`, "%22", "<", "%3C", ">", "%3E",
)

// StandardLink builds the same-origin retrieval reference. Ids and corpus ids are
// each joined by a single space in the given order.
func StandardLink(seqIDs, corpusIDs []string) string {
	return EntriesPath +
		"?id=" + queryEscaper.Replace(strings.Join(seqIDs, " ")) +
		"&corpus=" + queryEscaper.Replace(strings.Join(corpusIDs, " "))
}

// Fragment renders the standard hit header with a link around the id.
func Fragment(href, id, meta string) string {
	s := "><a href='" + html.EscapeString(href) + "'>" + html.EscapeString(id) + "</a>"
	if meta != "" {
		s += " " + html.EscapeString(meta)
	}
	return s
}
