package types

// DataTable carries tabular data attached to a step declaration, as rows of
// cells in declaration order, plus the table's own source location.
type DataTable struct {
	Rows     [][]string `yaml:"rows" json:"rows"`
	Location *Location  `yaml:"location,omitempty" json:"location,omitempty"`
}

// IsEmpty reports whether the table has no rows.
func (t *DataTable) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// Clone returns a deep copy so that an outcome's table cannot be mutated
// through the original step declaration.
func (t *DataTable) Clone() *DataTable {
	if t == nil {
		return nil
	}
	c := &DataTable{Rows: make([][]string, len(t.Rows))}
	for i, row := range t.Rows {
		c.Rows[i] = make([]string, len(row))
		copy(c.Rows[i], row)
	}
	if t.Location != nil {
		loc := *t.Location
		c.Location = &loc
	}
	return c
}
