package wasmhost

import (
	"context"
	gohtml "html"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/hanatsumi/rakuyomi/memory"
	"github.com/hanatsumi/rakuyomi/value"
)

// instantiateHTML registers the html module: a goquery-backed CSS
// selector engine over documents the source hands the host as raw
// bytes. Every selection, whether it holds one node or many, is stored
// as a single KindHTML Value wrapping a slice of value.HtmlRef.
func (h *Host) instantiateHTML(ctx context.Context, runtime wazero.Runtime) error {
	builder := runtime.NewHostModuleBuilder("html")

	builder.NewFunctionBuilder().WithFunc(h.htmlParse).Export("parse")
	builder.NewFunctionBuilder().WithFunc(h.htmlParseFragment).Export("parse_fragment")
	builder.NewFunctionBuilder().WithFunc(h.htmlParseWithURI).Export("parse_with_uri")
	builder.NewFunctionBuilder().WithFunc(h.htmlParseFragmentWithURI).Export("parse_fragment_with_uri")

	builder.NewFunctionBuilder().WithFunc(h.htmlSelect).Export("select")
	builder.NewFunctionBuilder().WithFunc(h.htmlAttr).Export("attr")

	builder.NewFunctionBuilder().WithFunc(h.htmlUnsupportedMutation).Export("set_text")
	builder.NewFunctionBuilder().WithFunc(h.htmlUnsupportedMutation).Export("set_html")
	builder.NewFunctionBuilder().WithFunc(h.htmlUnsupportedMutation).Export("prepend")
	builder.NewFunctionBuilder().WithFunc(h.htmlUnsupportedMutation).Export("append")

	builder.NewFunctionBuilder().WithFunc(h.htmlFirst).Export("first")
	builder.NewFunctionBuilder().WithFunc(h.htmlLast).Export("last")
	builder.NewFunctionBuilder().WithFunc(h.htmlNext).Export("next")
	builder.NewFunctionBuilder().WithFunc(h.htmlPrevious).Export("previous")

	builder.NewFunctionBuilder().WithFunc(h.htmlBaseURI).Export("base_uri")
	builder.NewFunctionBuilder().WithFunc(h.htmlBody).Export("body")
	builder.NewFunctionBuilder().WithFunc(h.htmlText).Export("text")
	builder.NewFunctionBuilder().WithFunc(h.htmlUntrimmedText).Export("untrimmed_text")
	builder.NewFunctionBuilder().WithFunc(h.htmlOwnText).Export("own_text")

	builder.NewFunctionBuilder().WithFunc(h.htmlUnsupportedQuery).Export("data")
	builder.NewFunctionBuilder().WithFunc(h.htmlArray).Export("array")
	builder.NewFunctionBuilder().WithFunc(h.htmlInnerHTML).Export("html")
	builder.NewFunctionBuilder().WithFunc(h.htmlOuterHTML).Export("outer_html")

	builder.NewFunctionBuilder().WithFunc(h.htmlEscape).Export("escape")
	builder.NewFunctionBuilder().WithFunc(h.htmlUnescape).Export("unescape")
	builder.NewFunctionBuilder().WithFunc(h.htmlID).Export("id")
	builder.NewFunctionBuilder().WithFunc(h.htmlTagName).Export("tag_name")
	builder.NewFunctionBuilder().WithFunc(h.htmlClassName).Export("class_name")
	builder.NewFunctionBuilder().WithFunc(h.htmlHasClass).Export("has_class")
	builder.NewFunctionBuilder().WithFunc(h.htmlHasAttr).Export("has_attr")

	_, err := builder.Instantiate(ctx)
	return err
}

func (h *Host) parseDocument(data string, baseURI *url.URL) int32 {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(data))
	if err != nil {
		return memory.Absent
	}

	document := &value.HTMLDocument{Doc: doc, BaseURI: baseURI}
	root := doc.Selection
	refs := make([]value.HtmlRef, 0, len(root.Nodes))
	for _, n := range root.Nodes {
		refs = append(refs, value.HtmlRef{Document: document, Node: n})
	}
	return int32(h.Store.Store(value.HTML(refs)))
}

func readOptionalURI(mem api.Memory, ptr, length uint32) *url.URL {
	if length == 0 {
		return nil
	}
	raw, err := memory.ReadString(mem, ptr, length)
	if err != nil {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return parsed
}

func (h *Host) htmlParse(ctx context.Context, mod api.Module, dataPtr, dataLen uint32) int32 {
	data, err := memory.ReadString(mustMemory(mod), dataPtr, dataLen)
	if err != nil {
		return memory.Absent
	}
	return h.parseDocument(data, nil)
}

// htmlParseFragment behaves like htmlParse: goquery has no separate
// fragment-parsing entry point, so both parse a standalone document.
func (h *Host) htmlParseFragment(ctx context.Context, mod api.Module, dataPtr, dataLen uint32) int32 {
	return h.htmlParse(ctx, mod, dataPtr, dataLen)
}

func (h *Host) htmlParseWithURI(ctx context.Context, mod api.Module, dataPtr, dataLen, uriPtr, uriLen uint32) int32 {
	mem := mustMemory(mod)
	data, err := memory.ReadString(mem, dataPtr, dataLen)
	if err != nil {
		return memory.Absent
	}
	return h.parseDocument(data, readOptionalURI(mem, uriPtr, uriLen))
}

func (h *Host) htmlParseFragmentWithURI(ctx context.Context, mod api.Module, dataPtr, dataLen, uriPtr, uriLen uint32) int32 {
	return h.htmlParseWithURI(ctx, mod, dataPtr, dataLen, uriPtr, uriLen)
}

func (h *Host) getHTML(handle int32) ([]value.HtmlRef, bool) {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindHTML {
		return nil, false
	}
	return v.HTML, true
}

func (h *Host) htmlSelect(ctx context.Context, mod api.Module, handle int32, selectorPtr, selectorLen uint32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok {
		return memory.Absent
	}
	selector, err := memory.ReadString(mustMemory(mod), selectorPtr, selectorLen)
	if err != nil {
		return memory.Absent
	}

	var matched []value.HtmlRef
	for _, ref := range refs {
		sel := ref.Selection().Find(selector)
		for _, n := range sel.Nodes {
			matched = append(matched, value.HtmlRef{Document: ref.Document, Node: n})
		}
	}
	return int32(h.Store.Store(value.HTML(matched)))
}

func (h *Host) htmlAttr(ctx context.Context, mod api.Module, handle int32, namePtr, nameLen uint32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok || len(refs) == 0 {
		return memory.Absent
	}
	name, err := memory.ReadString(mustMemory(mod), namePtr, nameLen)
	if err != nil {
		return memory.Absent
	}

	hasAbsPrefix := strings.HasPrefix(name, "abs:")
	attrName := strings.TrimPrefix(name, "abs:")

	var attrValue string
	var found bool
	var baseURI *url.URL
	for _, ref := range refs {
		if v, exists := ref.Selection().Attr(attrName); exists {
			attrValue, found = v, true
			baseURI = ref.Document.BaseURI
			break
		}
	}
	if !found {
		return memory.Absent
	}

	if hasAbsPrefix {
		if baseURI == nil {
			return memory.Absent
		}
		resolved, err := baseURI.Parse(attrValue)
		if err != nil {
			return memory.Absent
		}
		attrValue = resolved.String()
	}
	return int32(h.Store.Store(value.String(attrValue)))
}

// htmlUnsupportedMutation backs set_text, set_html, prepend, and
// append: mutating the parsed document isn't supported, matching the
// original's todo!() for these.
func (h *Host) htmlUnsupportedMutation(ctx context.Context, mod api.Module, handle int32, textPtr, textLen uint32) int32 {
	return memory.Absent
}

// htmlUnsupportedQuery backs data, whose original implementation is
// also an unconditional todo!().
func (h *Host) htmlUnsupportedQuery(ctx context.Context, handle int32) int32 {
	return memory.Absent
}

func (h *Host) htmlFirst(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok || len(refs) == 0 {
		return memory.Absent
	}
	return int32(h.Store.Store(value.HTML(refs[:1])))
}

func (h *Host) htmlLast(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok || len(refs) == 0 {
		return memory.Absent
	}
	return int32(h.Store.Store(value.HTML(refs[len(refs)-1:])))
}

func (h *Host) htmlNext(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok || len(refs) != 1 {
		return memory.Absent
	}
	sibling := refs[0].Selection().Next()
	if sibling.Length() == 0 {
		return memory.Absent
	}
	return int32(h.Store.Store(value.HTML([]value.HtmlRef{{Document: refs[0].Document, Node: sibling.Nodes[0]}})))
}

func (h *Host) htmlPrevious(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok || len(refs) != 1 {
		return memory.Absent
	}
	sibling := refs[0].Selection().Prev()
	if sibling.Length() == 0 {
		return memory.Absent
	}
	return int32(h.Store.Store(value.HTML([]value.HtmlRef{{Document: refs[0].Document, Node: sibling.Nodes[0]}})))
}

func (h *Host) htmlBaseURI(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok || len(refs) != 1 || refs[0].Document.BaseURI == nil {
		return memory.Absent
	}
	return int32(h.Store.Store(value.String(refs[0].Document.BaseURI.String())))
}

func (h *Host) htmlBody(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok {
		return memory.Absent
	}
	var matched []value.HtmlRef
	for _, ref := range refs {
		sel := ref.Selection().Find("body")
		for _, n := range sel.Nodes {
			matched = append(matched, value.HtmlRef{Document: ref.Document, Node: n})
		}
	}
	return int32(h.Store.Store(value.HTML(matched)))
}

func (h *Host) htmlText(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok {
		return memory.Absent
	}
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, strings.TrimSpace(ref.Selection().Text()))
	}
	return int32(h.Store.Store(value.String(strings.Join(parts, " "))))
}

func (h *Host) htmlUntrimmedText(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok {
		return memory.Absent
	}
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, ref.Selection().Text())
	}
	return int32(h.Store.Store(value.String(strings.Join(parts, " "))))
}

// htmlOwnText returns the text of handle's direct text-node children
// only, skipping descendant elements' text, matching the original's
// own_text. It requires exactly one element, same as upstream.
func (h *Host) htmlOwnText(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok || len(refs) != 1 {
		return memory.Absent
	}
	var b strings.Builder
	refs[0].Selection().Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			b.WriteString(s.Text())
		}
	})
	return int32(h.Store.Store(value.String(b.String())))
}

func (h *Host) htmlArray(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok {
		return memory.Absent
	}
	elements := make([]value.Value, len(refs))
	for i, ref := range refs {
		elements[i] = value.HTML([]value.HtmlRef{ref})
	}
	return int32(h.Store.Store(value.Array(elements)))
}

func (h *Host) htmlInnerHTML(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok {
		return memory.Absent
	}
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		inner, err := ref.Selection().Html()
		if err != nil {
			continue
		}
		parts = append(parts, inner)
	}
	return int32(h.Store.Store(value.String(strings.Join(parts, "\n"))))
}

func (h *Host) htmlOuterHTML(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok {
		return memory.Absent
	}
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		outer, err := goquery.OuterHtml(ref.Selection())
		if err != nil {
			continue
		}
		parts = append(parts, outer)
	}
	return int32(h.Store.Store(value.String(strings.Join(parts, "\n"))))
}

// htmlPlainText mirrors escape/unescape's shared source text: the
// trimmed, space-joined text of an HTMLElements value, or a String
// value's own text, matching the original's duplicated match arms.
func (h *Host) htmlPlainText(handle int32) (string, bool) {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok {
		return "", false
	}
	switch v.Kind {
	case value.KindHTML:
		parts := make([]string, 0, len(v.HTML))
		for _, ref := range v.HTML {
			parts = append(parts, strings.TrimSpace(ref.Selection().Text()))
		}
		return strings.Join(parts, " "), true
	case value.KindString:
		return v.Str, true
	default:
		return "", false
	}
}

func (h *Host) htmlEscape(ctx context.Context, handle int32) int32 {
	text, ok := h.htmlPlainText(handle)
	if !ok {
		return memory.Absent
	}
	return int32(h.Store.Store(value.String(gohtml.EscapeString(text))))
}

func (h *Host) htmlUnescape(ctx context.Context, handle int32) int32 {
	text, ok := h.htmlPlainText(handle)
	if !ok {
		return memory.Absent
	}
	return int32(h.Store.Store(value.String(gohtml.UnescapeString(text))))
}

func (h *Host) htmlID(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok || len(refs) != 1 {
		return memory.Absent
	}
	id, exists := refs[0].Selection().Attr("id")
	if !exists {
		return memory.Absent
	}
	return int32(h.Store.Store(value.String(id)))
}

func (h *Host) htmlTagName(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok || len(refs) != 1 {
		return memory.Absent
	}
	return int32(h.Store.Store(value.String(goquery.NodeName(refs[0].Selection()))))
}

func (h *Host) htmlClassName(ctx context.Context, handle int32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok || len(refs) != 1 {
		return memory.Absent
	}
	class, exists := refs[0].Selection().Attr("class")
	if !exists {
		return memory.Absent
	}
	return int32(h.Store.Store(value.String(strings.TrimSpace(class))))
}

func (h *Host) htmlHasClass(ctx context.Context, mod api.Module, handle int32, namePtr, nameLen uint32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok || len(refs) != 1 {
		return 0
	}
	name, err := memory.ReadString(mustMemory(mod), namePtr, nameLen)
	if err != nil {
		return 0
	}
	if refs[0].Selection().HasClass(name) {
		return 1
	}
	return 0
}

func (h *Host) htmlHasAttr(ctx context.Context, mod api.Module, handle int32, namePtr, nameLen uint32) int32 {
	refs, ok := h.getHTML(handle)
	if !ok || len(refs) != 1 {
		return 0
	}
	name, err := memory.ReadString(mustMemory(mod), namePtr, nameLen)
	if err != nil {
		return 0
	}
	_, exists := refs[0].Selection().Attr(name)
	if exists {
		return 1
	}
	return 0
}
