package engine

// LongestRun scans the board for the longest contiguous run of letters,
// horizontally then vertically, and returns it as a string. Runs shorter
// than two letters do not count. Ties break to the first run found during a
// left-to-right, top-to-bottom row scan followed by a top-to-bottom column
// scan, so the result is deterministic for a given board.
func LongestRun(s GameState) string {
	grid := make(map[[2]int]string)
	for _, t := range s.Tiles {
		if t.Zone == ZoneBoard {
			grid[[2]int{t.Row, t.Col}] = t.Letter
		}
	}

	best := ""
	consider := func(run string) {
		if len(run) >= 2 && len(run) > len(best) {
			best = run
		}
	}

	for r := 1; r <= s.Config.Rows; r++ {
		run := ""
		for c := 1; c <= s.Config.Cols; c++ {
			if l, ok := grid[[2]int{r, c}]; ok {
				run += l
			} else {
				consider(run)
				run = ""
			}
		}
		consider(run)
	}
	for c := 1; c <= s.Config.Cols; c++ {
		run := ""
		for r := 1; r <= s.Config.Rows; r++ {
			if l, ok := grid[[2]int{r, c}]; ok {
				run += l
			} else {
				consider(run)
				run = ""
			}
		}
		consider(run)
	}
	return best
}
