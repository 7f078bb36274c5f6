// Package markup converts trees to and from an XML element structure.
//
// One element per node: the tag is the node's type id, attributes are
// its properties in stringified form, nested elements are its children
// in order. Markup is an untyped boundary: importing yields text
// values, so a round trip preserves structure and stringified content
// but not value kinds. Use the stream package when kinds matter.
package markup

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/go-drift/datatree/pkg/errors"
	"github.com/go-drift/datatree/pkg/tree"
	"github.com/go-drift/datatree/pkg/undo"
	"github.com/go-drift/datatree/pkg/value"
)

// Export writes the subtree rooted at n as an XML document. Type ids
// must be valid XML names; properties appear as attributes in
// insertion order.
func Export(n tree.Node, w io.Writer) error {
	if !n.Exists() {
		return codecErr("markup.Export", fmt.Errorf("cannot export an empty node"))
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := exportNode(enc, n); err != nil {
		return codecErr("markup.Export", err)
	}
	if err := enc.Flush(); err != nil {
		return codecErr("markup.Export", err)
	}
	return nil
}

func exportNode(enc *xml.Encoder, n tree.Node) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Type()}}
	for _, key := range n.PropertyNames() {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: key},
			Value: n.GetProperty(key).String(),
		})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, child := range n.Children() {
		if err := exportNode(enc, child); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// Import reads an XML document and rebuilds the tree it describes.
// All imported property values have text kind. When h is non-nil the
// finished tree is bound to it; the import itself records nothing.
func Import(r io.Reader, h *undo.History) (tree.Node, error) {
	dec := xml.NewDecoder(r)
	root, err := importNode(dec, nil)
	if err != nil {
		return tree.Node{}, codecErr("markup.Import", err)
	}
	if !root.Exists() {
		return tree.Node{}, codecErr("markup.Import", fmt.Errorf("document contains no element"))
	}
	if h != nil {
		root.SetHistory(h)
	}
	return root, nil
}

// importNode consumes tokens until it has built one complete element.
// start is the element's start tag when the caller already read it,
// or nil to scan for the first one.
func importNode(dec *xml.Decoder, start *xml.StartElement) (tree.Node, error) {
	if start == nil {
		for {
			tok, err := dec.Token()
			if err != nil {
				if err == io.EOF {
					return tree.Node{}, nil
				}
				return tree.Node{}, err
			}
			if s, ok := tok.(xml.StartElement); ok {
				start = &s
				break
			}
		}
	}

	n := tree.New(start.Name.Local)
	for _, attr := range start.Attr {
		n.SetProperty(attr.Name.Local, value.Text(attr.Value))
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return tree.Node{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := importNode(dec, &t)
			if err != nil {
				return tree.Node{}, err
			}
			if err := n.AddChild(child, -1); err != nil {
				return tree.Node{}, err
			}
		case xml.EndElement:
			return n, nil
		}
	}
}

func codecErr(op string, err error) error {
	return errors.Report(&errors.TreeError{
		Op:   op,
		Kind: errors.KindCodec,
		Err:  err,
	})
}
