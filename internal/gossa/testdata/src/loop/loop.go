package loop

//trackpaths:hot
func sum(xs []int) int { // want `line 9 is reached through \d+ block\(s\)`
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

//trackpaths:cold
func count(xs []int) int {
	n := 0
	for range xs {
		n++
	}
	return n
}
