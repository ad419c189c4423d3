package estimation

import "math"

// martinTable holds the 18-point (d, M(d), H(d)) bias-correction table from
// Martin (2001), table I, indexed by the window length d in frames.
var martinTable = [18]struct{ d, m, h float64 }{
	{1, 0, 0},
	{2, .26, .15},
	{5, .48, .48},
	{8, .58, .78},
	{10, .61, .98},
	{15, .668, 1.55},
	{20, .705, 2.0},
	{30, .762, 2.3},
	{40, .8, 2.52},
	{60, .841, 3.1},
	{80, .865, 3.38},
	{120, .89, 4.15},
	{140, .9, 4.35},
	{160, .91, 4.25},
	{180, .92, 3.9},
	{220, .93, 4.1},
	{260, .935, 4.7},
	{300, .94, 5.0},
}

// mhValues interpolates M(d) and H(d) from martinTable in sqrt(d), per
// Martin (2001) equations (17) and (18). For d beyond the table's range it
// returns the last row unchanged.
func mhValues(d float64) (m, h float64) {
	i := -1
	for idx := range martinTable {
		if martinTable[idx].d >= d {
			i = idx
			break
		}
	}
	if i == -1 {
		last := martinTable[len(martinTable)-1]
		return last.m, last.h
	}
	if martinTable[i].d == d {
		return martinTable[i].m, martinTable[i].h
	}
	if i == 0 {
		return martinTable[0].m, martinTable[0].h
	}
	j := i - 1
	qi := math.Sqrt(martinTable[i].d)
	qj := math.Sqrt(martinTable[j].d)
	q := math.Sqrt(d)

	h = martinTable[i].h + (q-qi)*(martinTable[j].h-martinTable[i].h)/(qj-qi)
	m = martinTable[i].m + (qi*qj/q-qj)*(martinTable[j].m-martinTable[i].m)/(qi-qj)
	return m, h
}
