// Package stream provides a framed binary encoding for trees.
//
// Unlike markup, the stream format is typed: a round trip preserves
// value kinds exactly. The layout is a fixed header (magic, version)
// followed by one recursive node block:
//
//	node    = typeID properties children
//	typeID  = uvarint-length prefixed UTF-8
//	properties = uvarint count, then per property:
//	             key (length-prefixed), kind byte, payload
//	children   = uvarint count, then nested node blocks
//
// Payloads: int is a zigzag varint, real is 8 little-endian bytes of
// the IEEE 754 bits, text is length-prefixed, bool is one byte, void
// has no payload.
package stream

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-drift/datatree/pkg/errors"
	"github.com/go-drift/datatree/pkg/tree"
	"github.com/go-drift/datatree/pkg/undo"
	"github.com/go-drift/datatree/pkg/value"
)

var magic = [4]byte{'D', 'T', 'R', 'S'}

// Sniff reports whether data begins with the stream magic, for callers
// that accept both markup and stream input.
func Sniff(data []byte) bool {
	return len(data) >= len(magic) && [4]byte(data[:4]) == magic
}

const version = 1

// maxBlob bounds any single length prefix, so corrupt input fails
// instead of driving a huge allocation.
const maxBlob = 16 << 20

// maxDepth bounds child-block nesting, so corrupt input fails instead
// of driving unbounded recursion.
const maxDepth = 4096

// Write encodes the subtree rooted at n.
func Write(n tree.Node, w io.Writer) error {
	if !n.Exists() {
		return codecErr("stream.Write", fmt.Errorf("cannot encode an empty node"))
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic[:]); err != nil {
		return codecErr("stream.Write", err)
	}
	if err := bw.WriteByte(version); err != nil {
		return codecErr("stream.Write", err)
	}
	if err := writeNode(bw, n); err != nil {
		return codecErr("stream.Write", err)
	}
	if err := bw.Flush(); err != nil {
		return codecErr("stream.Write", err)
	}
	return nil
}

// Read decodes a tree previously produced by Write. When h is non-nil
// the finished tree is bound to it; the decode itself records nothing.
func Read(r io.Reader, h *undo.History) (tree.Node, error) {
	br := bufio.NewReader(r)
	var header [5]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return tree.Node{}, codecErr("stream.Read", err)
	}
	if [4]byte(header[:4]) != magic {
		return tree.Node{}, codecErr("stream.Read", fmt.Errorf("bad magic %q", header[:4]))
	}
	if header[4] != version {
		return tree.Node{}, codecErr("stream.Read", fmt.Errorf("unsupported version %d", header[4]))
	}
	root, err := readNode(br, 0)
	if err != nil {
		return tree.Node{}, codecErr("stream.Read", err)
	}
	if h != nil {
		root.SetHistory(h)
	}
	return root, nil
}

func writeNode(bw *bufio.Writer, n tree.Node) error {
	if err := writeString(bw, n.Type()); err != nil {
		return err
	}

	keys := n.PropertyNames()
	if err := writeUvarint(bw, uint64(len(keys))); err != nil {
		return err
	}
	for _, key := range keys {
		if err := writeString(bw, key); err != nil {
			return err
		}
		if err := writeValue(bw, n.GetProperty(key)); err != nil {
			return err
		}
	}

	children := n.Children()
	if err := writeUvarint(bw, uint64(len(children))); err != nil {
		return err
	}
	for _, child := range children {
		if err := writeNode(bw, child); err != nil {
			return err
		}
	}
	return nil
}

func readNode(br *bufio.Reader, depth int) (tree.Node, error) {
	if depth > maxDepth {
		return tree.Node{}, fmt.Errorf("nesting depth exceeds %d", maxDepth)
	}
	typeID, err := readString(br)
	if err != nil {
		return tree.Node{}, err
	}
	n := tree.New(typeID)

	propCount, err := readCount(br)
	if err != nil {
		return tree.Node{}, err
	}
	for i := 0; i < propCount; i++ {
		key, err := readString(br)
		if err != nil {
			return tree.Node{}, err
		}
		v, err := readValue(br)
		if err != nil {
			return tree.Node{}, err
		}
		n.SetProperty(key, v)
	}

	childCount, err := readCount(br)
	if err != nil {
		return tree.Node{}, err
	}
	for i := 0; i < childCount; i++ {
		child, err := readNode(br, depth+1)
		if err != nil {
			return tree.Node{}, err
		}
		if err := n.AddChild(child, -1); err != nil {
			return tree.Node{}, err
		}
	}
	return n, nil
}

func writeValue(bw *bufio.Writer, v value.Value) error {
	if err := bw.WriteByte(byte(v.Kind())); err != nil {
		return err
	}
	switch v.Kind() {
	case value.KindVoid:
		return nil
	case value.KindInt:
		var buf [binary.MaxVarintLen64]byte
		n := binary.PutVarint(buf[:], v.AsInt())
		_, err := bw.Write(buf[:n])
		return err
	case value.KindReal:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v.AsReal()))
		_, err := bw.Write(buf[:])
		return err
	case value.KindText:
		return writeString(bw, v.String())
	case value.KindBool:
		b := byte(0)
		if v.AsBool() {
			b = 1
		}
		return bw.WriteByte(b)
	}
	return fmt.Errorf("unknown value kind %d", v.Kind())
}

func readValue(br *bufio.Reader) (value.Value, error) {
	kind, err := br.ReadByte()
	if err != nil {
		return value.Void(), err
	}
	switch value.Kind(kind) {
	case value.KindVoid:
		return value.Void(), nil
	case value.KindInt:
		n, err := binary.ReadVarint(br)
		if err != nil {
			return value.Void(), err
		}
		return value.Int(n), nil
	case value.KindReal:
		var buf [8]byte
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return value.Void(), err
		}
		return value.Real(math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))), nil
	case value.KindText:
		s, err := readString(br)
		if err != nil {
			return value.Void(), err
		}
		return value.Text(s), nil
	case value.KindBool:
		b, err := br.ReadByte()
		if err != nil {
			return value.Void(), err
		}
		return value.Bool(b != 0), nil
	}
	return value.Void(), fmt.Errorf("unknown value kind %d", kind)
}

func writeUvarint(bw *bufio.Writer, n uint64) error {
	var buf [binary.MaxVarintLen64]byte
	size := binary.PutUvarint(buf[:], n)
	_, err := bw.Write(buf[:size])
	return err
}

func writeString(bw *bufio.Writer, s string) error {
	if err := writeUvarint(bw, uint64(len(s))); err != nil {
		return err
	}
	_, err := bw.WriteString(s)
	return err
}

func readCount(br *bufio.Reader) (int, error) {
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return 0, err
	}
	if n > maxBlob {
		return 0, fmt.Errorf("count %d exceeds limit", n)
	}
	return int(n), nil
}

func readString(br *bufio.Reader) (string, error) {
	size, err := readCount(br)
	if err != nil {
		return "", err
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(br, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func codecErr(op string, err error) error {
	return errors.Report(&errors.TreeError{
		Op:   op,
		Kind: errors.KindCodec,
		Err:  err,
	})
}
