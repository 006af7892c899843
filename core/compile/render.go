package compile

import (
	"strconv"
	"strings"

	"github.com/motheatensoul/tei-scribe-sub000/core/dsl"
	"github.com/motheatensoul/tei-scribe-sub000/core/encoding"
	"github.com/motheatensoul/tei-scribe-sub000/core/template"
)

// render serializes the document between the template's header and footer.
// The element stream is emitted in document order with attributes in a fixed
// order, so equal inputs produce byte-identical output.
func render(doc *dsl.Document, tpl *template.Template, ov *overlay) (string, []dsl.Diagnostic) {
	r := &renderer{
		tpl:     tpl,
		ov:      ov,
		numbers: lineNumbers(doc, tpl.AutoLineNumbers),
	}
	var b strings.Builder
	b.WriteString(tpl.Header)
	r.body(&b, doc)
	b.WriteString(tpl.Footer)
	return b.String(), r.diags
}

// lineNumbers resolves the rendered number of every line, keyed by ordinal.
// Explicit numbers win; a numeric explicit number re-synchronizes the running
// counter that automatic numbering continues from.
func lineNumbers(doc *dsl.Document, auto bool) map[int]string {
	numbers := make(map[int]string)
	counter := 0
	for _, page := range doc.Pages {
		for _, line := range page.Lines {
			counter++
			if line.Number != "" {
				if n, err := strconv.Atoi(line.Number); err == nil {
					counter = n
				}
				numbers[line.Ordinal] = line.Number
			} else if auto {
				numbers[line.Ordinal] = strconv.Itoa(counter)
			}
		}
	}
	return numbers
}

type renderer struct {
	tpl     *template.Template
	ov      *overlay
	numbers map[int]string
	diags   []dsl.Diagnostic
}

func (r *renderer) body(b *strings.Builder, doc *dsl.Document) {
	for _, page := range doc.Pages {
		if r.tpl.WrapPages {
			b.WriteString(`<div type="page"`)
			if page.Folio != "" {
				b.WriteString(` n="` + encoding.EscapeXMLAttr(page.Folio) + `"`)
			}
			b.WriteString(">\n")
		} else if !page.Implicit {
			b.WriteString(pbMarkup(page.Folio))
			b.WriteString("\n")
		}
		for _, line := range page.Lines {
			r.line(b, line)
		}
		if r.tpl.WrapPages {
			b.WriteString("</div>\n")
		}
	}
}

func (r *renderer) line(b *strings.Builder, line *dsl.Line) {
	if line.Origin == dsl.LineBroken {
		b.WriteString(r.lbMarkup(line.Ordinal))
		b.WriteString("\n")
	}
	if !r.tpl.WordWrap {
		r.plainLine(b, line)
		return
	}
	for _, item := range line.Items {
		switch it := item.(type) {
		case *dsl.Word:
			b.WriteString(r.word(it))
		case *dsl.Punct:
			b.WriteString(r.punct(it))
		case *dsl.Mark:
			b.WriteString(markMarkup(it))
		}
		b.WriteString("\n")
	}
}

// plainLine renders a line without word elements: plain text with only break
// and mark elements explicit. Annotations have no element to attach to here
// and are not emitted.
func (r *renderer) plainLine(b *strings.Builder, line *dsl.Line) {
	wrote := false
	for _, item := range line.Items {
		switch it := item.(type) {
		case *dsl.Word:
			if wrote {
				b.WriteString(" ")
			}
			b.WriteString(r.plainWord(it))
			wrote = true
		case *dsl.Punct:
			b.WriteString(encoding.EscapeXMLText(it.Text))
			wrote = true
		case *dsl.Mark:
			if wrote {
				b.WriteString(" ")
			}
			b.WriteString(markMarkup(it))
			wrote = true
		}
	}
	if wrote {
		b.WriteString("\n")
	}
}

// plainWord is the diplomatic reading of a word with embedded breaks kept as
// milestones and abbreviations silently expanded.
func (r *renderer) plainWord(w *dsl.Word) string {
	var b strings.Builder
	for _, p := range w.Parts {
		switch p.Kind {
		case dsl.PartLineBreak:
			b.WriteString(r.lbMarkup(p.Ordinal))
		case dsl.PartPageBreak:
			b.WriteString(pbMarkup(p.Folio))
		default:
			b.WriteString(encoding.EscapeXMLText(p.Dipl))
		}
	}
	return b.String()
}

func (r *renderer) word(w *dsl.Word) string {
	o := r.ov.forWord(w.Index)

	var b strings.Builder
	b.WriteString("<w")
	if o != nil {
		for _, a := range o.attrs {
			b.WriteString(" " + a.name + `="` + encoding.EscapeXMLAttr(a.value) + `"`)
		}
	}
	b.WriteString(">")

	if r.tpl.MultiLevel {
		b.WriteString("<choice><me:facs>")
		b.WriteString(r.facsContent(w, o))
		b.WriteString("</me:facs><me:dipl>")
		b.WriteString(r.diplContent(w))
		b.WriteString("</me:dipl><me:norm>")
		b.WriteString(encoding.EscapeXMLText(w.Levels.Normalized))
		b.WriteString("</me:norm></choice>")
	} else {
		b.WriteString(r.diplContent(w))
	}

	if o != nil {
		for _, child := range o.children {
			b.WriteString(elemMarkup(child))
		}
	}
	b.WriteString("</w>")
	return b.String()
}

// diplContent is the diplomatic rendering of a word's parts: abbreviation
// choice markup and embedded break milestones stay explicit.
func (r *renderer) diplContent(w *dsl.Word) string {
	var b strings.Builder
	for _, p := range w.Parts {
		switch p.Kind {
		case dsl.PartAbbrev:
			b.WriteString("<choice><abbr>")
			b.WriteString(encoding.EscapeXMLText(p.Abbr))
			b.WriteString("</abbr><expan>")
			b.WriteString(encoding.EscapeXMLText(p.Expansion))
			b.WriteString("</expan></choice>")
		case dsl.PartLineBreak:
			b.WriteString(r.lbMarkup(p.Ordinal))
		case dsl.PartPageBreak:
			b.WriteString(pbMarkup(p.Folio))
		default:
			b.WriteString(encoding.EscapeXMLText(p.Dipl))
		}
	}
	return b.String()
}

func (r *renderer) punct(p *dsl.Punct) string {
	text := encoding.EscapeXMLText(p.Text)
	if r.tpl.MultiLevel {
		return "<pc><choice><me:facs>" + text + "</me:facs><me:dipl>" + text + "</me:dipl></choice></pc>"
	}
	return "<pc>" + text + "</pc>"
}

func (r *renderer) lbMarkup(ordinal int) string {
	if n := r.numbers[ordinal]; n != "" {
		return `<lb n="` + encoding.EscapeXMLAttr(n) + `"/>`
	}
	return "<lb/>"
}

func pbMarkup(folio string) string {
	if folio != "" {
		return `<pb n="` + encoding.EscapeXMLAttr(folio) + `"/>`
	}
	return "<pb/>"
}

func markMarkup(m *dsl.Mark) string {
	content := encoding.EscapeXMLText(m.Content)
	switch m.Kind {
	case dsl.MarkGap:
		if m.Supplied != "" {
			return `<supplied reason="lost">` + encoding.EscapeXMLText(m.Supplied) + `</supplied>`
		}
		if m.Quantity > 0 {
			return `<gap quantity="` + strconv.Itoa(m.Quantity) + `" unit="char"/>`
		}
		return "<gap/>"
	case dsl.MarkSupplied:
		return "<supplied>" + content + "</supplied>"
	case dsl.MarkDeleted:
		return "<del>" + content + "</del>"
	case dsl.MarkAdded:
		return "<add>" + content + "</add>"
	case dsl.MarkUnclear:
		return "<unclear>" + content + "</unclear>"
	case dsl.MarkNote:
		return "<note>" + content + "</note>"
	}
	return ""
}

func elemMarkup(e elemSpec) string {
	var b strings.Builder
	b.WriteString("<" + e.name)
	for _, a := range e.attrs {
		b.WriteString(" " + a.name + `="` + encoding.EscapeXMLAttr(a.value) + `"`)
	}
	if e.selfClose {
		b.WriteString("/>")
		return b.String()
	}
	b.WriteString(">")
	b.WriteString(encoding.EscapeXMLText(e.text))
	b.WriteString("</" + e.name + ">")
	return b.String()
}

// facsSeg is one slice of a word's facsimile content: optional enclosing
// markup around a raw text run. Milestones are zero-width segments with only
// opening markup.
type facsSeg struct {
	open  string
	text  string
	close string
}

func (r *renderer) facsSegments(w *dsl.Word) []facsSeg {
	var segs []facsSeg
	for _, p := range w.Parts {
		switch p.Kind {
		case dsl.PartAbbrev:
			segs = append(segs, facsSeg{open: "<am>", text: p.Facs, close: "</am>"})
		case dsl.PartLineBreak:
			segs = append(segs, facsSeg{open: r.lbMarkup(p.Ordinal)})
		case dsl.PartPageBreak:
			segs = append(segs, facsSeg{open: pbMarkup(p.Folio)})
		default:
			segs = append(segs, facsSeg{text: p.Facs})
		}
	}
	return segs
}

// facsContent renders the facsimile level of a word, splicing in any
// character-range markers. Markers that overlap each other or cut across
// abbreviation markup cannot be expressed as well-formed elements and are
// skipped with a warning.
func (r *renderer) facsContent(w *dsl.Word, o *wordOverlay) string {
	segs := r.facsSegments(w)
	var wraps []charWrap
	if o != nil {
		wraps = r.usableWraps(w.Index, segs, o.wraps)
	}
	if len(wraps) == 0 {
		var b strings.Builder
		for _, seg := range segs {
			b.WriteString(seg.open)
			b.WriteString(encoding.EscapeXMLText(seg.text))
			b.WriteString(seg.close)
		}
		return b.String()
	}
	return spliceWraps(segs, wraps)
}

// usableWraps sorts the markers by start offset and drops the ones that
// cannot be spliced cleanly: overlapping a previously kept marker, or
// partially crossing a marked segment boundary.
func (r *renderer) usableWraps(wordIndex int, segs []facsSeg, wraps []charWrap) []charWrap {
	sorted := make([]charWrap, len(wraps))
	copy(sorted, wraps)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].start < sorted[j-1].start; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	var kept []charWrap
	prevEnd := 0
	for _, wrap := range sorted {
		if len(kept) > 0 && wrap.start < prevEnd {
			r.diags = append(r.diags, dsl.Warnf(0, 0,
				"character range %d-%d on word %d overlaps another range and was skipped",
				wrap.start, wrap.end, wordIndex))
			continue
		}
		if crossesSegment(segs, wrap) {
			r.diags = append(r.diags, dsl.Warnf(0, 0,
				"character range %d-%d on word %d crosses inline markup and was skipped",
				wrap.start, wrap.end, wordIndex))
			continue
		}
		kept = append(kept, wrap)
		prevEnd = wrap.end
	}
	return kept
}

// crossesSegment reports whether the wrap partially overlaps a segment that
// carries its own markup. Fully inside or fully covering are both fine.
func crossesSegment(segs []facsSeg, wrap charWrap) bool {
	offset := 0
	for _, seg := range segs {
		n := len([]rune(seg.text))
		start, end := offset, offset+n
		offset = end
		if n == 0 || (seg.open == "" && seg.close == "") {
			continue
		}
		if wrap.end <= start || wrap.start >= end {
			continue
		}
		inside := wrap.start >= start && wrap.end <= end
		covering := wrap.start <= start && wrap.end >= end
		if !inside && !covering {
			return true
		}
	}
	return false
}

// spliceWraps emits the segment stream with marker elements opened and closed
// at their rune offsets. Wraps are sorted, non-overlapping, and known not to
// cross marked segment boundaries.
func spliceWraps(segs []facsSeg, wraps []charWrap) string {
	var b strings.Builder
	cur := 0
	wi := 0
	active := false
	activeEnd := 0
	activeOutside := false

	openWrap := func(w charWrap, outside bool) {
		b.WriteString("<seg")
		for _, a := range w.attrs {
			b.WriteString(" " + a.name + `="` + encoding.EscapeXMLAttr(a.value) + `"`)
		}
		b.WriteString(">")
		active = true
		activeEnd = w.end
		activeOutside = outside
	}
	closeWrap := func() {
		b.WriteString("</seg>")
		active = false
	}

	// emitText writes one segment's text, opening and closing wraps at
	// their offsets. outside records whether wraps opened here enclose
	// later segments rather than nesting inside this one's markup.
	emitText := func(text string, outside bool) {
		runes := []rune(text)
		pos := 0
		for pos < len(runes) {
			abs := cur + pos
			if active && activeEnd == abs {
				closeWrap()
				continue
			}
			if !active && wi < len(wraps) && wraps[wi].start == abs {
				openWrap(wraps[wi], outside)
				wi++
				continue
			}
			next := len(runes)
			if active && activeEnd-cur > pos && activeEnd-cur < next {
				next = activeEnd - cur
			}
			if !active && wi < len(wraps) && wraps[wi].start-cur > pos && wraps[wi].start-cur < next {
				next = wraps[wi].start - cur
			}
			b.WriteString(encoding.EscapeXMLText(string(runes[pos:next])))
			pos = next
		}
		cur += len(runes)
	}

	for _, seg := range segs {
		marked := seg.open != "" || seg.close != ""
		n := len([]rune(seg.text))

		if active && activeEnd == cur && activeOutside {
			closeWrap()
		}
		if marked && n > 0 {
			// A wrap covering this whole segment opens outside its markup.
			if !active && wi < len(wraps) && wraps[wi].start == cur && wraps[wi].end >= cur+n {
				openWrap(wraps[wi], true)
				wi++
			}
			b.WriteString(seg.open)
			emitText(seg.text, false)
			if active && activeEnd == cur && !activeOutside {
				closeWrap()
			}
			b.WriteString(seg.close)
			continue
		}
		b.WriteString(seg.open)
		emitText(seg.text, true)
		b.WriteString(seg.close)
	}
	if active {
		closeWrap()
	}
	return b.String()
}
