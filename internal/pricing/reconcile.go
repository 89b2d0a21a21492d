package pricing

import "sort"

// newer reports whether a was created after b. Seq decides; ID breaks ties and
// covers rows written before Seq existed.
func newer(a, b LineItem) bool {
	if a.Seq != b.Seq {
		return a.Seq > b.Seq
	}
	return a.ID > b.ID
}

// Reconcile collapses line items sharing a (menu, style) key down to the most
// recently created one. Append-only edit histories leave the pre-edit rows in
// place; this recovers the order's current contents from them.
//
// Two rows a customer intended as separate lines with the same key are also
// collapsed. The result is sorted oldest first.
func Reconcile(items []LineItem) []LineItem {
	latest := make(map[GroupKey]LineItem, len(items))
	for _, li := range items {
		k := li.Key()
		if cur, ok := latest[k]; !ok || newer(li, cur) {
			latest[k] = li
		}
	}

	out := make([]LineItem, 0, len(latest))
	for _, li := range latest {
		out = append(out, li)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[j], out[i]) })
	return out
}

// CurrentTotal is the economically correct order total: reconcile first,
// then sum, then discount, floored at zero.
func CurrentTotal(items []LineItem, coupon *Coupon) int64 {
	return FinalPrice(TotalPrice(Reconcile(items)), coupon)
}

// DuplicateKeys returns the (menu, style) keys that occur more than once in
// items, in first-seen order.
func DuplicateKeys(items []LineItem) []GroupKey {
	seen := make(map[GroupKey]int, len(items))
	var dups []GroupKey
	for _, li := range items {
		k := li.Key()
		seen[k]++
		if seen[k] == 2 {
			dups = append(dups, k)
		}
	}
	return dups
}
