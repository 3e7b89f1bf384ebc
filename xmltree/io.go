package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"maps"
	"os"
	"regexp"

	"github.com/adnsv/dbrst/files"
	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// EntityTag names the placeholder element standing for an external entity
// reference (&name;) while the document is held in memory.
const EntityTag = "dbrst-entity"

// Resolver maps external entity names to the fragment they refer to.
type Resolver interface {
	Get(name string) (string, bool)
}

var (
	reEntityRef   = regexp.MustCompile(`&([A-Za-z_][\w.\-]*);`)
	reEntityDecl  = regexp.MustCompile(`<!ENTITY\s+([A-Za-z_][\w.\-]*)\s+(?:"([^"]*)"|'([^']*)')\s*>`)
	rePlaceholder = regexp.MustCompile(`<` + EntityTag + ` name="([^"]+)"[^>]*/>`)
)

// Read parses an XML document. Character entities of XHTML and internal
// entities declared in the DOCTYPE are expanded. References to entities
// known to ents become EntityTag placeholders so that they survive a
// read/write cycle.
func Read(r io.Reader, ents Resolver) (*etree.Document, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	internal := maps.Clone(xml.HTMLEntity)
	for _, m := range reEntityDecl.FindAllSubmatch(buf, -1) {
		internal[string(m[1])] = string(m[2]) + string(m[3])
	}

	body := buf
	if ents != nil {
		body = reEntityRef.ReplaceAllFunc(buf, func(ref []byte) []byte {
			name := string(ref[1 : len(ref)-1])
			if _, ok := internal[name]; ok {
				return ref
			}
			href, ok := ents.Get(name)
			if !ok {
				return ref
			}
			return []byte(placeholder(name, href))
		})
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	doc.ReadSettings.Entity = internal
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("no root element")
	}
	return doc, nil
}

// ReadFile parses the XML file fn, see Read.
func ReadFile(fn string, ents Resolver) (*etree.Document, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Read(f, ents)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return doc, nil
}

// Write serializes doc, turning placeholders back into entity references.
func Write(doc *etree.Document) ([]byte, error) {
	buf, err := doc.WriteToBytes()
	if err != nil {
		return nil, err
	}
	return rePlaceholder.ReplaceAll(buf, []byte("&$1;")), nil
}

// WriteFile writes doc to fn through a temporary file.
func WriteFile(doc *etree.Document, fn string) error {
	buf, err := Write(doc)
	if err != nil {
		return err
	}
	return files.WriteAtomic(fn, buf)
}

func placeholder(name, href string) string {
	var b bytes.Buffer
	b.WriteString("<" + EntityTag + ` name="`)
	xml.EscapeText(&b, []byte(name))
	b.WriteString(`" href="`)
	xml.EscapeText(&b, []byte(href))
	b.WriteString(`"/>`)
	return b.String()
}

// NewEntityRef builds the placeholder for a reference to entity name
// stored at href.
func NewEntityRef(name, href string) *etree.Element {
	e := etree.NewElement(EntityTag)
	e.CreateAttr("name", name)
	e.CreateAttr("href", href)
	return e
}
