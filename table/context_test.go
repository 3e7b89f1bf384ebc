package table

import (
	"testing"

	"github.com/beevik/etree"
)

func TestNewContext(t *testing.T) {
	doc := etree.NewDocument()
	err := doc.ReadFromString(`<table id="t1"><title>Video
		<emphasis>formats</emphasis></title><tgroup cols="2"/></table>`)
	if err != nil {
		t.Fatal(err)
	}
	c := NewContext(doc.Root())
	if c.ID != "t1" {
		t.Errorf("ID = %q", c.ID)
	}
	if c.Title != "Video formats" {
		t.Errorf("Title = %q", c.Title)
	}
}

func TestHeader(t *testing.T) {
	tests := []struct {
		name      string
		ctx       Context
		useWidths bool
		want      string
	}{
		{
			name: "plain",
			ctx:  Context{HeaderRows: 1},
			want: "\n" +
				"\n.. flat-table::" +
				"\n    :header-rows:  1" +
				"\n    :stub-columns: 0" +
				"\n    " +
				"\n" + StartMark,
		},
		{
			name:      "anchor title widths",
			ctx:       Context{ID: "t1", Title: "Formats", StubColumns: 1, Widths: []int{1, 3}},
			useWidths: true,
			want: "\n\n.. _`t1`:\n" +
				"\n.. flat-table:: Formats" +
				"\n    :header-rows:  0" +
				"\n    :stub-columns: 1" +
				"\n    :widths:       1 3" +
				"\n    " +
				"\n" + StartMark,
		},
		{
			name: "widths suppressed",
			ctx:  Context{Widths: []int{1, 3}},
			want: "\n" +
				"\n.. flat-table::" +
				"\n    :header-rows:  0" +
				"\n    :stub-columns: 0" +
				"\n    " +
				"\n" + StartMark,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.Header(tt.useWidths); got != tt.want {
				t.Errorf("Header() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestFooter(t *testing.T) {
	c := &Context{}
	if got := c.Footer(); got != "\n"+EndMark+"\n" {
		t.Errorf("Footer() = %q", got)
	}
}
