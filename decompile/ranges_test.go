package decompile

import "testing"

func TestDescribeRange(t *testing.T) {
	tests := []struct {
		ids  []int
		want string
	}{
		{nil, "[]"},
		{[]int{5}, "[5]"},
		{[]int{2, 3, 4, 5}, "[2:5]"},
		{[]int{5, 4, 3}, "[5:3:-1]"},
		{[]int{1, 2, 5, 6}, "[1:2]+[5:6]"},
		{[]int{3, 3}, "[3]+[3]"},
		{[]int{1, 5}, "[1]+[5]"},
		{[]int{0, 2, 4}, "[0]+[2]+[4]"},
		{[]int{0, 1, 2, 1, 0}, "[0:2]+[1:0:-1]"},
		{[]int{7, 6, 8, 9}, "[7:6:-1]+[8:9]"},
		{[]int{-2, -1, 0}, "[-2:0]"},
	}

	for _, tc := range tests {
		if got := DescribeRange(tc.ids); got != tc.want {
			t.Errorf("DescribeRange(%v) = %q, want %q", tc.ids, got, tc.want)
		}
	}
}
