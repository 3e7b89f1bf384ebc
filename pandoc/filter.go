package pandoc

// Action is called for every element of the document tree, outermost first.
// When replace is false the element stays and its content is walked;
// otherwise it is replaced by the returned elements (none deletes it) and
// those are walked instead.
type Action func(t string, c interface{}) (repl []interface{}, replace bool, err error)

// Walk applies action over a generic JSON tree in the manner of the
// pandocfilters: elements are the {"t":..,"c":..} objects
// found in lists.
func Walk(x interface{}, action Action) (interface{}, error) {
	switch x := x.(type) {
	case []interface{}:
		ret := make([]interface{}, 0, len(x))
		for _, item := range x {
			tc, err := loadTC(item)
			if err != nil {
				v, err := Walk(item, action)
				if err != nil {
					return nil, err
				}
				ret = append(ret, v)
				continue
			}
			repl, replace, err := action(tc.T, tc.C)
			if err != nil {
				return nil, err
			}
			if !replace {
				repl = []interface{}{item}
			}
			for _, r := range repl {
				v, err := Walk(r, action)
				if err != nil {
					return nil, err
				}
				ret = append(ret, v)
			}
		}
		return ret, nil
	case map[string]interface{}:
		for k, v := range x {
			w, err := Walk(v, action)
			if err != nil {
				return nil, err
			}
			x[k] = w
		}
		return x, nil
	default:
		return x, nil
	}
}

// Filter runs the actions one after the other over the document blocks.
func (d *Document) Filter(actions ...Action) error {
	for _, a := range actions {
		v, err := Walk(d.Blocks, a)
		if err != nil {
			return err
		}
		d.Blocks = v.([]interface{})
	}
	return nil
}
