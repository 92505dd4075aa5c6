package model

// Miss records a classification lookup that found no table entry and fell
// back to a default tag. Hosts aggregate these to extend the tables.
type Miss struct {
	Layout   Variant
	Field    string // "description" or "category"
	Text     string // raw text as found in the export
	Fallback TrnType
	Reason   string
	Row      int // 1-based sheet row, 0 when unknown
}
