package convert

import (
	"testing"

	"github.com/adnsv/dbrst/pandoc"
)

func TestInjectFilter(t *testing.T) {
	d, err := pandoc.NewDocument([]byte(pandocJSON))
	if err != nil {
		t.Fatal(err)
	}
	d.Blocks = append(d.Blocks, pandoc.NewElement("CodeBlock", []interface{}{
		[]interface{}{"", []interface{}{"python"}, []interface{}{}},
		"x = 1",
	}))

	marks := &MarkerCheck{}
	if err := d.Filter(InjectFilter(), marks.Action()); err != nil {
		t.Fatal(err)
	}

	var kinds []string
	for _, b := range d.Blocks {
		kinds = append(kinds, b.(map[string]interface{})["t"].(string))
	}
	want := []string{"RawBlock", "BulletList", "RawBlock", "CodeBlock"}
	for i := range want {
		if i >= len(kinds) || kinds[i] != want[i] {
			t.Fatalf("blocks = %v, want %v", kinds, want)
		}
	}
	rb, err := pandoc.LoadRawBlock(d.Blocks[0].(map[string]interface{})["c"])
	if err != nil {
		t.Fatal(err)
	}
	if rb.Format != "rst" {
		t.Errorf("format = %q", rb.Format)
	}
	if marks.Start != 1 || marks.End != 1 || !marks.Balanced() {
		t.Errorf("markers = %+v", marks)
	}
}

func TestMarkerCheckUnbalanced(t *testing.T) {
	d, err := pandoc.NewDocument([]byte(`{"pandoc-api-version":[1,23,1],"meta":{},"blocks":[
{"t":"RawBlock","c":["rst",".. flat-table-start-mark"]}]}`))
	if err != nil {
		t.Fatal(err)
	}
	marks := &MarkerCheck{}
	if err := d.Filter(marks.Action()); err != nil {
		t.Fatal(err)
	}
	if marks.Balanced() {
		t.Errorf("markers = %+v", marks)
	}
}
