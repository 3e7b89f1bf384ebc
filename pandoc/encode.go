package pandoc

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/adnsv/dbrst/files"
)

// Encode writes d as pandoc JSON.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(d)
}

// WriteFile stores d in fn.
func (d *Document) WriteFile(fn string) error {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return err
	}
	return files.WriteAtomic(fn, buf.Bytes())
}

// NewElement builds the generic {"t":..,"c":..} form of an element.
func NewElement(t string, c interface{}) map[string]interface{} {
	ret := map[string]interface{}{"t": t}
	if c != nil {
		ret["c"] = c
	}
	return ret
}

func (rb *RawBlock) Element() map[string]interface{} {
	return NewElement("RawBlock", []interface{}{rb.Format, rb.Text})
}
