package stream

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/go-drift/datatree/pkg/errors"
	"github.com/go-drift/datatree/pkg/tree"
	"github.com/go-drift/datatree/pkg/undo"
	"github.com/go-drift/datatree/pkg/value"
)

func TestRoundTrip_PreservesKinds(t *testing.T) {
	root := tree.New("session")
	root.SetProperty("title", value.Text("mix"))
	root.SetProperty("bpm", value.Int(120))
	root.SetProperty("gain", value.Real(-3.5))
	root.SetProperty("armed", value.Bool(true))
	root.SetProperty("note", value.Void())

	track := tree.New("track")
	track.SetProperty("id", value.Int(1))
	root.AddChild(track, -1)
	track.AddChild(tree.New("clip"), -1)

	var buf bytes.Buffer
	if err := Write(root, &buf); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got.Type() != "session" {
		t.Fatalf("root type = %q", got.Type())
	}
	for key, want := range map[string]value.Value{
		"title": value.Text("mix"),
		"bpm":   value.Int(120),
		"gain":  value.Real(-3.5),
		"armed": value.Bool(true),
		"note":  value.Void(),
	} {
		if v := got.GetProperty(key); !v.Equal(want) {
			t.Errorf("%s = %v (%v), want %v (%v)", key, v, v.Kind(), want, want.Kind())
		}
	}
	if got.NumChildren() != 1 || got.Child(0).Child(0).Type() != "clip" {
		t.Error("child structure lost")
	}
	if names := got.PropertyNames(); names[0] != "title" || names[4] != "note" {
		t.Errorf("property order lost: %v", names)
	}
}

func TestRead_BadMagic(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("NOPE\x01")), nil)
	if err == nil {
		t.Fatal("bad magic should fail")
	}
	var te *errors.TreeError
	if !stderrors.As(err, &te) || te.Kind != errors.KindCodec {
		t.Errorf("want a KindCodec TreeError, got %v", err)
	}
}

func TestRead_UnsupportedVersion(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("DTRS\x63")), nil); err == nil {
		t.Fatal("unknown version should fail")
	}
}

func TestRead_Truncated(t *testing.T) {
	root := tree.New("root")
	root.SetProperty("k", value.Text("value"))
	var buf bytes.Buffer
	if err := Write(root, &buf); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	for _, cut := range []int{0, 3, 5, len(data) - 2} {
		if _, err := Read(bytes.NewReader(data[:cut]), nil); err == nil {
			t.Errorf("truncation at %d should fail", cut)
		}
	}
}

func TestRead_RejectsExcessiveNesting(t *testing.T) {
	// Hand-build a stream whose node blocks nest past the depth cap:
	// each level is a one-letter type id, zero properties, one child.
	var buf bytes.Buffer
	buf.WriteString("DTRS\x01")
	level := []byte{1, 'n', 0, 1}
	for i := 0; i < maxDepth+10; i++ {
		buf.Write(level)
	}
	buf.Write([]byte{1, 'n', 0, 0}) // innermost leaf

	_, err := Read(&buf, nil)
	if err == nil {
		t.Fatal("deeply nested input should fail")
	}
	var te *errors.TreeError
	if !stderrors.As(err, &te) || te.Kind != errors.KindCodec {
		t.Errorf("want a KindCodec TreeError, got %v", err)
	}
}

func TestWrite_EmptyNodeFails(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(tree.Node{}, &buf); err == nil {
		t.Fatal("encoding an empty handle should fail")
	}
}

func TestRead_BindsHistoryWithoutRecording(t *testing.T) {
	h := undo.NewHistory(undo.WithoutTimer())
	defer h.Close()
	h.SetSynchronous(true)

	root := tree.New("root")
	root.AddChild(tree.New("child"), -1)
	var buf bytes.Buffer
	if err := Write(root, &buf); err != nil {
		t.Fatal(err)
	}

	got, err := Read(&buf, h)
	if err != nil {
		t.Fatal(err)
	}
	if got.History() != h || got.Child(0).History() != h {
		t.Fatal("decoded nodes should be bound to the history")
	}
	if h.CanUndo() {
		t.Error("the decode itself must not be undoable")
	}
}
