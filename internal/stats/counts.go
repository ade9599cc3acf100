package stats

import (
	"chartsvc/internal/dataset"
)

// ValueCounts counts each distinct value of a column. Missing numeric cells
// are counted under "" so that counts sum to the row count.
func ValueCounts(t *dataset.Table, column string) (*FrequencyMap, error) {
	values, err := t.Strings(column)
	if err != nil {
		return nil, err
	}
	c := NewCounter()
	for _, v := range values {
		c.Add(v)
	}
	return c.Freeze(), nil
}
