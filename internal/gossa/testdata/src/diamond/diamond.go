package diamond

//trackpaths:track
func pick(x int) int { // want `line 11 is reached by 2 path\(s\) through 4 block\(s\)`
	y := 0
	if x > 0 {
		y = x * 2
	} else {
		y = -x
	}
	return y + 1
}

func unrelated(x int) int {
	return x + 1
}
