package value

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// HTMLDocument is the shared, immutable graph every HtmlRef derived from one
// parse ultimately points into. goquery.Document wraps the parsed node
// tree; BaseURI (if any) is used by attr("abs:...") resolution.
type HTMLDocument struct {
	Doc     *goquery.Document
	BaseURI *url.URL
}

// HtmlRef is a (document, node) pair. It never outlives the document: as
// long as a Go value holds the HtmlRef, the Document it points into is
// reachable and kept alive by the garbage collector, which is this
// implementation's equivalent of the original's "ref carries (document,
// node_id)" aliasing scheme without needing a synthetic stable node id.
type HtmlRef struct {
	Document *HTMLDocument
	Node     *html.Node
}

// Selection returns a single-node goquery Selection rooted at this ref,
// usable for further traversal (select, first, last, next, previous) and
// inspection (text, html, attr, ...).
func (r HtmlRef) Selection() *goquery.Selection {
	if r.Node == nil {
		return new(goquery.Selection)
	}
	return goquery.NewDocumentFromNode(r.Node).Selection
}
