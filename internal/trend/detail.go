package trend

import "sort"

type (
	// Detail is the tagged tooltip payload for one bucket. Exactly one of
	// the two variants is set, chosen by the active drill-down level rather
	// than inferred from the payload's shape.
	Detail struct {
		Simple    *SimpleDetail    `json:"simple,omitempty"`
		Breakdown *BreakdownDetail `json:"breakdown,omitempty"`
	}

	// SimpleDetail lists the active categories' values for the bucket.
	SimpleDetail struct {
		Label  string      `json:"label"`
		Series []NameValue `json:"series"`
	}

	// BreakdownDetail shows one Level2 category's total plus its Level3
	// children, largest magnitude first.
	BreakdownDetail struct {
		Label    string      `json:"label"`
		Category string      `json:"category"`
		Total    float64     `json:"total"`
		Children []NameValue `json:"children"`
	}

	NameValue struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}
)

// DetailFor builds the tooltip payload for the named bucket. The breakdown
// variant applies only to a Level2-level display with breakdown data for its
// single category; every other combination yields the simple variant.
func (s Series) DetailFor(label string, level2View bool, categories []string) Detail {
	var bucket *Bucket
	for i := range s.Buckets {
		if s.Buckets[i].Label == label {
			bucket = &s.Buckets[i]
			break
		}
	}
	if bucket == nil {
		return Detail{Simple: &SimpleDetail{Label: label, Series: []NameValue{}}}
	}

	if level2View && len(categories) == 1 {
		if bd, ok := bucket.Breakdown[categories[0]]; ok {
			children := make([]NameValue, 0, bd.Len())
			for _, name := range bd.Keys() {
				if v := bd.Get(name); v != 0 {
					children = append(children, NameValue{Name: name, Value: v})
				}
			}
			sort.SliceStable(children, func(i, j int) bool {
				return absVal(children[i].Value) > absVal(children[j].Value)
			})
			return Detail{Breakdown: &BreakdownDetail{
				Label:    label,
				Category: categories[0],
				Total:    bucket.Totals[categories[0]],
				Children: children,
			}}
		}
	}

	series := make([]NameValue, 0, len(categories))
	for _, cat := range categories {
		series = append(series, NameValue{Name: cat, Value: bucket.Totals[cat]})
	}
	return Detail{Simple: &SimpleDetail{Label: label, Series: series}}
}

func absVal(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
