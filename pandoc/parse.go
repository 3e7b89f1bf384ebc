package pandoc

import (
	"encoding/json"
	"fmt"
	"os"
)

// Document is the JSON form of a pandoc document. Blocks are kept as
// generic JSON values so that a filter can rewrite any part of the tree and
// write it back unchanged otherwise.
type Document struct {
	PandocApiVersion json.RawMessage        `json:"pandoc-api-version"`
	Meta             map[string]interface{} `json:"meta"`
	Blocks           []interface{}          `json:"blocks"`
}

type TC struct {
	T string      `json:"t"`
	C interface{} `json:"c"`
}

func NewDocument(buf []byte) (*Document, error) {
	doc := &Document{}
	err := json.Unmarshal(buf, doc)
	if err != nil {
		return nil, err
	}
	if len(doc.PandocApiVersion) == 0 {
		return nil, fmt.Errorf("missing pandoc-api-version")
	}
	return doc, nil
}

func ReadFile(fn string) (*Document, error) {
	buf, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	doc, err := NewDocument(buf)
	if err != nil {
		return nil, fmt.Errorf("%s > %s", fn, err)
	}
	return doc, nil
}

func loadString(raw interface{}) (s string, e error) {
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("invalid string")
	}
	return
}

func loadTC(raw interface{}) (tc *TC, e error) {
	ii, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid (t,c)")
	}
	tc = &TC{}
	tc.T, e = loadString(ii["t"])
	if e != nil {
		return nil, fmt.Errorf("(t,c) > %s", e)
	}
	tc.C = ii["c"]
	return
}

func loadStringSlice(raw interface{}) (ss []string, e error) {
	ii, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid string[] content")
	}
	for idx, i := range ii {
		s, e := loadString(i)
		if e != nil {
			return nil, fmt.Errorf("string[%d] > %s", idx, e)
		}
		ss = append(ss, s)
	}
	return
}

func loadKeyVal(raw interface{}) (kv *KeyVal, e error) {
	ii, ok := raw.([]interface{})
	if !ok || len(ii) != 2 {
		return nil, fmt.Errorf("invalid (k,v)")
	}
	kv = &KeyVal{}
	kv.Key, e = loadString(ii[0])
	if e != nil {
		return nil, fmt.Errorf("(k,v), in key > %s", e)
	}
	kv.Val, e = loadString(ii[1])
	if e != nil {
		return nil, fmt.Errorf("(k,v), in value > %s", e)
	}
	return
}

func loadKeyValSlice(raw interface{}) (kvs []*KeyVal, e error) {
	ii, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid KeyVal[]")
	}
	for idx, i := range ii {
		kv, e := loadKeyVal(i)
		if e != nil {
			return nil, fmt.Errorf("KeyVal[%d] > %s", idx, e)
		}
		kvs = append(kvs, kv)
	}
	return
}

func loadAttr(raw interface{}) (a Attr, e error) {
	ii, ok := raw.([]interface{})
	if !ok || len(ii) != 3 {
		return Attr{}, fmt.Errorf("invalid Attr")
	}
	a.Identifier, e = loadString(ii[0])
	if e != nil {
		return Attr{}, fmt.Errorf("Attr.Identifier > %s", e)
	}
	a.Classes, e = loadStringSlice(ii[1])
	if e != nil {
		return Attr{}, fmt.Errorf("Attr.Classes > %s", e)
	}
	a.KeyVals, e = loadKeyValSlice(ii[2])
	if e != nil {
		return Attr{}, fmt.Errorf("Attr.KeyVals > %s", e)
	}
	return
}

// LoadCodeBlock decodes the content of a CodeBlock element.
func LoadCodeBlock(raw interface{}) (cb *CodeBlock, e error) {
	ii, ok := raw.([]interface{})
	if !ok || len(ii) != 2 {
		return nil, fmt.Errorf("invalid CodeBlock[]")
	}
	cb = &CodeBlock{}
	cb.Attr, e = loadAttr(ii[0])
	if e != nil {
		return nil, fmt.Errorf("CodeBlock.Attr > %s", e)
	}
	cb.Text, e = loadString(ii[1])
	if e != nil {
		return nil, fmt.Errorf("CodeBlock.Text > %s", e)
	}
	return
}

// LoadRawBlock decodes the content of a RawBlock element.
func LoadRawBlock(raw interface{}) (rb *RawBlock, e error) {
	ii, ok := raw.([]interface{})
	if !ok || len(ii) != 2 {
		return nil, fmt.Errorf("invalid RawBlock[]")
	}
	rb = &RawBlock{}
	rb.Format, e = loadString(ii[0])
	if e != nil {
		return nil, fmt.Errorf("RawBlock.Format > %s", e)
	}
	rb.Text, e = loadString(ii[1])
	if e != nil {
		return nil, fmt.Errorf("RawBlock.Text > %s", e)
	}
	return
}
