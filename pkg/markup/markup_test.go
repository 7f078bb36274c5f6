package markup

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/go-drift/datatree/pkg/errors"
	"github.com/go-drift/datatree/pkg/tree"
	"github.com/go-drift/datatree/pkg/undo"
	"github.com/go-drift/datatree/pkg/value"
)

func buildSample() tree.Node {
	root := tree.New("project")
	root.SetProperty("name", value.Text("demo"))
	root.SetProperty("version", value.Int(3))

	track := tree.New("track")
	track.SetProperty("gain", value.Real(0.5))
	root.AddChild(track, -1)

	clip := tree.New("clip")
	clip.SetProperty("muted", value.Bool(true))
	track.AddChild(clip, -1)
	return root
}

func TestExport_Structure(t *testing.T) {
	var sb strings.Builder
	if err := Export(buildSample(), &sb); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{
		`<project name="demo" version="3">`,
		`<track gain="0.5">`,
		`<clip muted="true">`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestExport_EmptyNodeFails(t *testing.T) {
	var sb strings.Builder
	err := Export(tree.Node{}, &sb)
	if err == nil {
		t.Fatal("exporting an empty handle should fail")
	}
	var te *errors.TreeError
	if !stderrors.As(err, &te) || te.Kind != errors.KindCodec {
		t.Errorf("want a KindCodec TreeError, got %v", err)
	}
}

func TestImport_RoundTripStructure(t *testing.T) {
	var sb strings.Builder
	if err := Export(buildSample(), &sb); err != nil {
		t.Fatal(err)
	}

	got, err := Import(strings.NewReader(sb.String()), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type() != "project" || got.NumChildren() != 1 {
		t.Fatalf("root = %q with %d children", got.Type(), got.NumChildren())
	}

	// Markup is untyped: values come back as text with the same string form.
	if v := got.GetProperty("version"); v.Kind() != value.KindText || v.String() != "3" {
		t.Errorf("version = %v (%v)", v, v.Kind())
	}
	if v := got.GetProperty("version"); v.AsInt() != 3 {
		t.Errorf("text value should still convert, AsInt = %d", v.AsInt())
	}

	clip := got.Child(0).Child(0)
	if clip.Type() != "clip" || !clip.GetProperty("muted").AsBool() {
		t.Errorf("nested child lost: %q muted=%v", clip.Type(), clip.GetProperty("muted"))
	}

	if names := strings.Join(got.PropertyNames(), ","); names != "name,version" {
		t.Errorf("property order = %s, want name,version", names)
	}
}

func TestImport_BindsHistoryWithoutRecording(t *testing.T) {
	h := undo.NewHistory(undo.WithoutTimer())
	defer h.Close()
	h.SetSynchronous(true)

	got, err := Import(strings.NewReader(`<root a="1"><child/></root>`), h)
	if err != nil {
		t.Fatal(err)
	}
	if got.History() != h || got.Child(0).History() != h {
		t.Fatal("imported nodes should be bound to the history")
	}
	if h.CanUndo() {
		t.Error("the import itself must not be undoable")
	}

	got.SetProperty("a", value.Text("2"))
	if !h.CanUndo() {
		t.Error("edits after import should record normally")
	}
	h.Undo()
	if gotV := got.GetProperty("a").String(); gotV != "1" {
		t.Errorf("undo should restore the imported value, got %q", gotV)
	}
}

func TestImport_MalformedFails(t *testing.T) {
	for _, in := range []string{"<root>", "<a></b>", ""} {
		if _, err := Import(strings.NewReader(in), nil); err == nil {
			t.Errorf("input %q should fail", in)
		}
	}
}
