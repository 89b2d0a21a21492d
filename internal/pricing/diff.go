package pricing

import "sort"

// Direction says which way a component quantity moved.
type Direction string

const (
	Increase Direction = "INCREASE"
	Decrease Direction = "DECREASE"
)

// Change is one component whose quantity differs between two customizations.
type Change struct {
	Code        string    `json:"code"`
	PreviousQty int       `json:"previous_qty"`
	NewQty      int       `json:"new_qty"`
	Direction   Direction `json:"direction"`
}

// Delta is NewQty - PreviousQty.
func (c Change) Delta() int {
	return c.NewQty - c.PreviousQty
}

// DiffCustomization lists the components whose quantity differs between prev
// and next. Keys absent from one side count as zero, so callers that want
// defaults taken into account resolve both maps first. Unchanged keys are
// omitted; the result is sorted by code.
func DiffCustomization(prev, next Customization) []Change {
	codes := make(map[string]struct{}, len(prev)+len(next))
	for k := range prev {
		codes[k] = struct{}{}
	}
	for k := range next {
		codes[k] = struct{}{}
	}

	var changes []Change
	for code := range codes {
		p, n := prev[code], next[code]
		if p == n {
			continue
		}
		dir := Decrease
		if n > p {
			dir = Increase
		}
		changes = append(changes, Change{Code: code, PreviousQty: p, NewQty: n, Direction: dir})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Code < changes[j].Code })
	return changes
}
