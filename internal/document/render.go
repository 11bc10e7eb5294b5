package document

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// DefaultFontFace is forced on every rewritten paragraph
const DefaultFontFace = "Times New Roman"

// Line ordinals in the item table ("01".."05") are never bold
var lineOrdinal = regexp.MustCompile(`^0[1-5]$`)

// Options controls the formatting applied to rewritten paragraphs
type Options struct {
	FontFace       string
	EmphasisTokens []string // a paragraph originally holding one of these is bold
	Required       []string // tokens that must be found at least once
}

// DefaultOptions returns the invoice formatting rules
func DefaultOptions() Options {
	return Options{
		FontFace:       DefaultFontFace,
		EmphasisTokens: []string{TokenTotal, TokenCompany},
	}
}

// Report summarises a render
type Report struct {
	Paragraphs int            // paragraphs visited
	Rewritten  int            // paragraphs whose text changed
	Hits       map[string]int // paragraphs in which each token was found
}

// Render returns a copy of d with every token of r replaced in every paragraph,
// table cells included, in document order. Tokens without a value are left as is.
// The receiver is not modified, so one template can serve many renders.
func (d *Document) Render(r *Replacements, opts Options) (*Document, Report, error) {
	if opts.FontFace == "" {
		opts.FontFace = DefaultFontFace
	}

	out := d.clone()
	report := Report{Hits: make(map[string]int, r.Len())}
	tokens := r.Tokens()

	var renderErr error
	for _, p := range out.parts {
		if p.tree == nil || p.tree.Root() == nil {
			continue
		}
		walkParagraphs(p.tree.Root(), false, func(para *etree.Element, inCell bool) {
			if renderErr != nil {
				return
			}
			report.Paragraphs++
			changed, err := substitute(para, r, tokens, opts, report.Hits)
			if err != nil {
				err.Template = d.name
				renderErr = err
				return
			}
			if changed {
				report.Rewritten++
				p.dirty = true
			}
			if inCell && lineOrdinal.MatchString(paragraphText(para)) {
				if clearBold(para) {
					p.dirty = true
				}
			}
		})
	}
	if renderErr != nil {
		return nil, report, renderErr
	}

	var missing []string
	for _, token := range opts.Required {
		if report.Hits[token] == 0 {
			missing = append(missing, token)
		}
	}
	if len(missing) > 0 {
		return nil, report, &TemplateMismatchError{Template: d.name, Missing: missing}
	}

	return out, report, nil
}

// walkParagraphs visits every w:p in document order
func walkParagraphs(el *etree.Element, inCell bool, fn func(p *etree.Element, inCell bool)) {
	for _, child := range el.ChildElements() {
		cell := inCell || isWord(child, "tc")
		if isWord(child, "p") {
			fn(child, cell)
		}
		walkParagraphs(child, cell, fn)
	}
}

// segment is a stretch of plain text runs between two children that are kept as is
type segment struct {
	members []*etree.Element // runs and proof marks replaced by the rewrite
	fixed   *etree.Element   // hyperlink, drawing, field... never rewritten
}

func (s segment) text() string {
	var b strings.Builder
	for _, m := range s.members {
		writeContent(&b, m)
	}
	return b.String()
}

// segments splits the children of p. Bookmarks neither break a segment nor
// belong to one, so they stay where they are.
func segments(p *etree.Element) []segment {
	var out []segment
	var cur segment
	flush := func() {
		if len(cur.members) > 0 {
			out = append(out, cur)
		}
		cur = segment{}
	}
	for _, c := range p.ChildElements() {
		switch {
		case isWord(c, "pPr"), isWord(c, "bookmarkStart"), isWord(c, "bookmarkEnd"):
		case isWord(c, "proofErr"), isPlainRun(c):
			cur.members = append(cur.members, c)
		default:
			flush()
			out = append(out, segment{fixed: c})
		}
	}
	flush()
	return out
}

// isPlainRun reports whether run holds nothing but text, tabs and line breaks
func isPlainRun(el *etree.Element) bool {
	if !isWord(el, "r") {
		return false
	}
	for _, c := range el.ChildElements() {
		switch {
		case isWord(c, "rPr"), isWord(c, "t"), isWord(c, "tab"), isWord(c, "cr"),
			isWord(c, "lastRenderedPageBreak"):
		case isWord(c, "br"):
			if kind := c.SelectAttrValue("w:type", "textWrapping"); kind != "textWrapping" {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func substitute(para *etree.Element, r *Replacements, tokens []string, opts Options, hits map[string]int) (bool, *UnsupportedContentError) {
	original := paragraphText(para)
	bold := false
	for _, token := range opts.EmphasisTokens {
		if strings.Contains(original, token) {
			bold = true
			break
		}
	}

	found := make(map[string]bool)
	changed := false
	for _, seg := range segments(para) {
		if seg.fixed != nil {
			text := contentText(seg.fixed)
			for _, token := range tokens {
				if strings.Contains(text, token) {
					return false, &UnsupportedContentError{Element: seg.fixed.Tag, Token: token}
				}
			}
			continue
		}

		before := seg.text()
		text := before
		for _, token := range tokens {
			if !strings.Contains(text, token) {
				continue
			}
			value, _ := r.Get(token)
			text = strings.ReplaceAll(text, token, value)
			found[token] = true
		}
		if text == before {
			continue
		}
		rewriteSegment(para, seg, text, opts.FontFace, bold)
		changed = true
	}
	for token := range found {
		hits[token]++
	}
	return changed, nil
}

// paragraphText is the text owned by p, skipping nested paragraphs.
// Tabs read as \t and line breaks as \n.
func paragraphText(p *etree.Element) string {
	return contentText(p)
}

func contentText(el *etree.Element) string {
	var b strings.Builder
	writeContent(&b, el)
	return b.String()
}

func writeContent(b *strings.Builder, el *etree.Element) {
	for _, c := range el.ChildElements() {
		switch {
		case isWord(c, "p"):
		case isWord(c, "t"):
			b.WriteString(c.Text())
		case isWord(c, "tab"):
			if el.Tag == "r" {
				b.WriteByte('\t')
			}
		case isWord(c, "br"), isWord(c, "cr"):
			b.WriteByte('\n')
		default:
			writeContent(b, c)
		}
	}
}

func textNodes(p *etree.Element) []*etree.Element {
	var out []*etree.Element
	var collect func(el *etree.Element)
	collect = func(el *etree.Element) {
		for _, c := range el.ChildElements() {
			switch {
			case isWord(c, "p"):
			case isWord(c, "t"):
				out = append(out, c)
			default:
				collect(c)
			}
		}
	}
	collect(p)
	return out
}

// rewriteSegment swaps the members of seg for a single run holding text,
// carrying the first text run's properties with font and weight overridden.
func rewriteSegment(p *etree.Element, seg segment, text, font string, bold bool) {
	var props *etree.Element
	for _, m := range seg.members {
		if isWord(m, "r") && wordChild(m, "t") != nil {
			if rPr := wordChild(m, "rPr"); rPr != nil {
				props = rPr.Copy()
			}
			break
		}
	}
	if props == nil {
		props = etree.NewElement("w:rPr")
	}
	forceFont(props, font)
	setBold(props, bold)

	run := etree.NewElement("w:r")
	run.AddChild(props)
	writeRunText(run, text)

	p.InsertChildAt(seg.members[0].Index(), run)
	for _, m := range seg.members {
		p.RemoveChild(m)
	}
}

// writeRunText emits text as w:t pieces separated by w:tab and w:br
func writeRunText(run *etree.Element, text string) {
	var piece strings.Builder
	flush := func() {
		if piece.Len() == 0 {
			return
		}
		t := run.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(piece.String())
		piece.Reset()
	}
	for _, c := range text {
		switch c {
		case '\t':
			flush()
			run.CreateElement("w:tab")
		case '\n':
			flush()
			run.CreateElement("w:br")
		default:
			piece.WriteRune(c)
		}
	}
	flush()
	if text == "" {
		t := run.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
	}
}

// forceFont replaces any w:rFonts with one naming font for every script
func forceFont(rPr *etree.Element, font string) {
	removeWordChildren(rPr, "rFonts")
	fonts := etree.NewElement("w:rFonts")
	fonts.CreateAttr("w:ascii", font)
	fonts.CreateAttr("w:hAnsi", font)
	fonts.CreateAttr("w:cs", font)
	fonts.CreateAttr("w:eastAsia", font)

	idx := 0
	if style := wordChild(rPr, "rStyle"); style != nil {
		idx = style.Index() + 1
	}
	rPr.InsertChildAt(idx, fonts)
}

// setBold writes an explicit w:b and w:bCs right after w:rFonts (or w:rStyle)
func setBold(rPr *etree.Element, bold bool) {
	removeWordChildren(rPr, "b")
	removeWordChildren(rPr, "bCs")

	idx := 0
	if fonts := wordChild(rPr, "rFonts"); fonts != nil {
		idx = fonts.Index() + 1
	} else if style := wordChild(rPr, "rStyle"); style != nil {
		idx = style.Index() + 1
	}

	b := etree.NewElement("w:b")
	bCs := etree.NewElement("w:bCs")
	if !bold {
		b.CreateAttr("w:val", "0")
		bCs.CreateAttr("w:val", "0")
	}
	rPr.InsertChildAt(idx, b)
	rPr.InsertChildAt(idx+1, bCs)
}

// clearBold turns bold off on every run of p. It reports whether anything changed.
func clearBold(p *etree.Element) bool {
	changed := false
	for _, t := range textNodes(p) {
		run := t.Parent()
		if run == nil || !isWord(run, "r") {
			continue
		}
		if !isBold(run) && hasExplicitNonBold(run) {
			continue
		}
		rPr := wordChild(run, "rPr")
		if rPr == nil {
			rPr = etree.NewElement("w:rPr")
			run.InsertChildAt(0, rPr)
		}
		setBold(rPr, false)
		changed = true
	}
	return changed
}

func isBold(run *etree.Element) bool {
	rPr := wordChild(run, "rPr")
	if rPr == nil {
		return false
	}
	b := wordChild(rPr, "b")
	if b == nil {
		return false
	}
	switch b.SelectAttrValue("w:val", "true") {
	case "0", "false", "off":
		return false
	default:
		return true
	}
}

func hasExplicitNonBold(run *etree.Element) bool {
	rPr := wordChild(run, "rPr")
	if rPr == nil {
		return false
	}
	b := wordChild(rPr, "b")
	bCs := wordChild(rPr, "bCs")
	return b != nil && bCs != nil && b.SelectAttrValue("w:val", "") == "0" && bCs.SelectAttrValue("w:val", "") == "0"
}

func isWord(el *etree.Element, tag string) bool {
	if el.Tag != tag {
		return false
	}
	return el.Space == "w" || el.NamespaceURI() == wordNamespace
}

func wordChild(el *etree.Element, tag string) *etree.Element {
	for _, c := range el.ChildElements() {
		if isWord(c, tag) {
			return c
		}
	}
	return nil
}

func removeWordChildren(el *etree.Element, tag string) {
	for _, c := range el.ChildElements() {
		if isWord(c, tag) {
			el.RemoveChild(c)
		}
	}
}
