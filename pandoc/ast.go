package pandoc

// see https://hackage.haskell.org/package/pandoc-types-1.23/docs/Text-Pandoc-Definition.html
//
// Only the elements the filters look into are modelled; everything else
// stays in its generic JSON form.

type KeyVal struct {
	Key string
	Val string
}

type Attr struct {
	Identifier string
	Classes    []string
	KeyVals    []*KeyVal
}

func (a *Attr) HasClass(s string) bool {
	for _, c := range a.Classes {
		if c == s {
			return true
		}
	}
	return false
}

type CodeBlock struct {
	Attr Attr
	Text string
}

type RawBlock struct {
	Format string
	Text   string
}
