package matrix

// lcsPairs returns the longest common subsequence between a and b as a list
// of matched (indexInA, indexInB) pairs, strictly increasing in both
// coordinates. It is the building block for the difflib-style row alignment
// bustimes/timetables.py uses when a stop-sequence graph has a cycle and a
// pure topological sort cannot order the rows.
func lcsPairs(a, b []string) [][2]int {
	n, m := len(a), len(b)
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	var pairs [][2]int
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			pairs = append(pairs, [2]int{i, j})
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			i++
		default:
			j++
		}
	}
	return pairs
}

// mergeRowKeys splices a new trip's stop-key sequence into the existing row
// key order, inserting unseen stops at the position their neighbours in the
// LCS alignment imply. It returns the merged key order and, for every index
// of next, the row index it landed at in the merged order.
func mergeRowKeys(existing []string, next []string) (merged []string, indexOfNext []int) {
	pairs := lcsPairs(existing, next)
	indexOfNext = make([]int, len(next))

	merged = make([]string, 0, len(existing)+len(next))
	oi, ni, pi := 0, 0, 0
	for ni < len(next) {
		if pi < len(pairs) && pairs[pi][1] == ni {
			for oi <= pairs[pi][0] {
				merged = append(merged, existing[oi])
				oi++
			}
			indexOfNext[ni] = len(merged) - 1
			ni++
			pi++
			continue
		}
		merged = append(merged, next[ni])
		indexOfNext[ni] = len(merged) - 1
		ni++
	}
	for oi < len(existing) {
		merged = append(merged, existing[oi])
		oi++
	}
	return merged, indexOfNext
}
