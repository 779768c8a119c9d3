package worddiff

import "slices"

// alignTokens returns one segment per token using the LCS table of a and b.
// On ties the backtrack consumes from b and emits an insertion.
func alignTokens(a, b []string) []Segment {
	m, n := len(a), len(b)

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	ops := make([]Segment, 0, max(m, n))
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1]:
			ops = append(ops, Segment{Kind: Same, Text: a[i-1]})
			i--
			j--
		case j > 0 && (i == 0 || dp[i][j-1] >= dp[i-1][j]):
			ops = append(ops, Segment{Kind: Added, Text: b[j-1]})
			j--
		default:
			ops = append(ops, Segment{Kind: Removed, Text: a[i-1]})
			i--
		}
	}
	slices.Reverse(ops)

	return ops
}
