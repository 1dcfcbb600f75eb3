package notion

// CreatedTimeField names the record's own creation timestamp inside a Chain
const CreatedTimeField = "@created_time"

// Chain resolves a value from an ordered list of candidate property names.
// The first present and non-empty candidate wins, otherwise Default is returned.
type Chain struct {
	Fields  []string
	Default Value
}

// Resolve evaluates the chain against a page
func (c Chain) Resolve(page Page) Value {
	for _, name := range c.Fields {
		var v Value
		if name == CreatedTimeField {
			if page.CreatedTime != "" {
				v = String(page.CreatedTime)
			}
		} else {
			v = Extract(page, name)
		}
		if !v.IsEmpty() {
			return v
		}
	}
	return c.Default
}
