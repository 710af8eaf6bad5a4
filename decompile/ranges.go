package decompile

import (
	"strconv"
	"strings"
)

// DescribeRange compresses a list of offsets into slice notation.
//
// Maximal runs of consecutive values stepping by +1 or -1 become "[s:e]" or
// "[s:e:-1]" (both ends inclusive); lone values become "[v]". Runs are
// joined with "+". An empty list renders as "[]".
//
//	[2 3 4 5]  -> [2:5]
//	[5 4 3]    -> [5:3:-1]
//	[1 2 5 6]  -> [1:2]+[5:6]
//	[3 3]      -> [3]+[3]
func DescribeRange(ids []int) string {
	if len(ids) == 0 {
		return "[]"
	}

	var sb strings.Builder
	start, last, step := ids[0], ids[0], 0

	flush := func() {
		if sb.Len() > 0 {
			sb.WriteByte('+')
		}
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(start))
		if last != start {
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(last))
			if step < 0 {
				sb.WriteString(":-1")
			}
		}
		sb.WriteByte(']')
	}

	for _, x := range ids[1:] {
		if step == 0 {
			// Second element of a run fixes its direction.
			if d := x - start; d == 1 || d == -1 {
				step, last = d, x
				continue
			}
		} else if x == last+step {
			last = x
			continue
		}
		flush()
		start, last, step = x, x, 0
	}
	flush()

	return sb.String()
}
