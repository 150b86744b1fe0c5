package domain

// SourceResult is the outcome of one adapter invocation: either records or
// the reason the adapter failed.
type SourceResult struct {
	Source  string
	Records []SaleRecord
	Err     error
}

// Collection is the merged output of a multi-county fetch.
type Collection struct {
	Records []SaleRecord
	Results []SourceResult
}

// Failed lists the sources whose adapters returned an error.
func (c Collection) Failed() []string {
	var out []string
	for _, r := range c.Results {
		if r.Err != nil {
			out = append(out, r.Source)
		}
	}
	return out
}
