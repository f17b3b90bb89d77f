package core

import (
	"fmt"
	"sort"
	"strconv"
)

const (
	wellRows    = 8
	rowLetters  = "ABCDEFGH"
	firstCursor = 1
)

// Well maps a 1-based sample number to a column-major plate address:
// 1 -> A1, 8 -> H1, 9 -> A2, 96 -> H12.
func Well(n int) string {
	if n < 1 {
		panic(fmt.Sprintf("core: well number must be >= 1, got %d", n))
	}
	column := (n + wellRows - 1) / wellRows
	row := rowLetters[(n-1)%wellRows]
	return string(row) + strconv.Itoa(column)
}

// ParseWell is the inverse of Well. It rejects rows outside A-H and columns below 1.
func ParseWell(well string) (int, error) {
	if len(well) < 2 {
		return 0, fmt.Errorf("invalid well %q", well)
	}
	row := -1
	for i := 0; i < len(rowLetters); i++ {
		if well[0] == rowLetters[i] {
			row = i
			break
		}
	}
	if row < 0 {
		return 0, fmt.Errorf("invalid well row in %q", well)
	}
	column, err := strconv.Atoi(well[1:])
	if err != nil || column < 1 {
		return 0, fmt.Errorf("invalid well column in %q", well)
	}
	return (column-1)*wellRows + row + 1, nil
}

// WellAllocator hands out contiguous well numbers for one planning run.
// Each allocated number yields a reaction plate well and a purification well
// shifted by the purification offset.
type WellAllocator struct {
	next   int
	offset int
}

// NewWellAllocator returns an allocator whose cursor starts at well 1.
func NewWellAllocator(purificationOffset int) *WellAllocator {
	return &WellAllocator{next: firstCursor, offset: purificationOffset}
}

// Allocate reserves n consecutive numbers and returns their reaction and purification wells.
func (a *WellAllocator) Allocate(n int) (reaction, purification []string) {
	reaction = make([]string, 0, n)
	purification = make([]string, 0, n)
	for range n {
		reaction = append(reaction, Well(a.next))
		purification = append(purification, Well(a.next+a.offset))
		a.next++
	}
	return reaction, purification
}

// Allocated returns how many numbers have been handed out so far.
func (a *WellAllocator) Allocated() int {
	return a.next - firstCursor
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
