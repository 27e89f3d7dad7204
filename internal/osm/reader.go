package osm

import (
	"context"
	"encoding/xml"
	"io"
	"iter"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

type rawTag struct {
	K string `xml:"k,attr"`
	V string `xml:"v,attr"`
}

type rawRef struct {
	Ref string `xml:"ref,attr"`
}

type rawElement struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Tags  []rawTag   `xml:"tag"`
	Refs  []rawRef   `xml:"nd"`
}

// Reader pulls node and way elements from an OSM XML document one at a time.
// Only the element being returned is decoded; everything else is skipped.
type Reader struct {
	dec      *xml.Decoder
	rootSeen bool
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "osm: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}
	return &Reader{dec: dec}
}

// Next returns the next node or way in document order. It returns io.EOF
// once the document is exhausted.
func (r *Reader) Next(ctx context.Context) (Element, error) {
	for {
		if ctx.Err() != nil {
			return Element{}, eris.Wrap(ctx.Err(), "osm: context cancelled")
		}

		tok, err := r.dec.Token()
		if err == io.EOF {
			return Element{}, io.EOF
		}
		if err != nil {
			return Element{}, eris.Wrap(err, "osm: read token")
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		// Descend into the document root (<osm>).
		if !r.rootSeen {
			r.rootSeen = true
			if _, ok := ParseKind(se.Name.Local); !ok {
				continue
			}
		}

		kind, ok := ParseKind(se.Name.Local)
		if !ok {
			// relation, bounds, changeset, ...
			if err := r.dec.Skip(); err != nil {
				return Element{}, eris.Wrapf(err, "osm: skip <%s>", se.Name.Local)
			}
			continue
		}

		var raw rawElement
		if err := r.dec.DecodeElement(&raw, &se); err != nil {
			return Element{}, eris.Wrapf(err, "osm: decode <%s>", kind)
		}
		return raw.element(kind), nil
	}
}

func (raw *rawElement) element(kind Kind) Element {
	el := Element{
		Kind:  kind,
		Attrs: make(map[string]string, len(raw.Attrs)),
	}
	for _, a := range raw.Attrs {
		el.Attrs[a.Name.Local] = a.Value
	}
	if len(raw.Tags) > 0 {
		el.Tags = make([]Tag, len(raw.Tags))
		for i, t := range raw.Tags {
			el.Tags[i] = Tag{Key: t.K, Value: t.V}
		}
	}
	if kind == Way && len(raw.Refs) > 0 {
		el.Refs = make([]string, len(raw.Refs))
		for i, nd := range raw.Refs {
			el.Refs[i] = nd.Ref
		}
	}
	return el
}

// Elements returns a single-use iterator over the nodes and ways in r. The
// sequence stops after the first error, which is yielded with a zero Element.
func Elements(ctx context.Context, r io.Reader) iter.Seq2[Element, error] {
	return func(yield func(Element, error) bool) {
		rd := NewReader(r)
		for {
			el, err := rd.Next(ctx)
			if err == io.EOF {
				return
			}
			if !yield(el, err) || err != nil {
				return
			}
		}
	}
}
