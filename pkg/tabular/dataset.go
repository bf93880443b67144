package tabular

import "sort"

// Record maps a column name to its cell. Absent columns read as null.
type Record map[string]Value

// Get returns the cell for column, or null when the record lacks it.
func (r Record) Get(column string) Value {
	if r == nil {
		return Null()
	}
	return r[column]
}

// Text is shorthand for Get(column).Text().
func (r Record) Text(column string) string {
	return r.Get(column).Text()
}

// Dataset is an ordered sequence of records sharing one column list.
// Operations never mutate the receiver; they return new datasets that may
// share record maps with it.
type Dataset struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d.Records)
}

// Has reports whether column is part of the dataset schema.
func (d Dataset) Has(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Filter keeps the records for which keep returns true.
func (d Dataset) Filter(keep func(Record) bool) Dataset {
	out := Dataset{Name: d.Name, Columns: d.Columns, Records: make([]Record, 0, len(d.Records))}
	for _, rec := range d.Records {
		if keep(rec) {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

// Slice returns at most limit records starting at offset. A non-positive
// limit returns everything after offset.
func (d Dataset) Slice(offset, limit int) Dataset {
	out := Dataset{Name: d.Name, Columns: d.Columns}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(d.Records) {
		out.Records = []Record{}
		return out
	}
	end := len(d.Records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out.Records = d.Records[offset:end]
	return out
}

// Distinct returns the sorted distinct non-null values of column.
func (d Dataset) Distinct(column string) []Value {
	seen := make(map[Value]struct{})
	values := make([]Value, 0)
	for _, rec := range d.Records {
		v := rec.Get(column)
		if v.IsNull() {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.SliceStable(values, func(i, j int) bool { return values[i].Less(values[j]) })
	return values
}

// Concat stacks datasets row-wise in argument order. The resulting columns are
// the union of all input columns in order of first appearance; duplicate rows
// are kept.
func Concat(name string, datasets ...Dataset) Dataset {
	out := Dataset{Name: name, Columns: []string{}, Records: []Record{}}
	seen := make(map[string]struct{})
	total := 0
	for _, ds := range datasets {
		total += len(ds.Records)
		for _, col := range ds.Columns {
			if _, ok := seen[col]; ok {
				continue
			}
			seen[col] = struct{}{}
			out.Columns = append(out.Columns, col)
		}
	}
	out.Records = make([]Record, 0, total)
	for _, ds := range datasets {
		out.Records = append(out.Records, ds.Records...)
	}
	return out
}
