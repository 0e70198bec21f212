package filtered

//trackpaths:cold
func cold(x int) int {
	if x > 10 {
		return x - 10
	}
	return x
}

func plain(x int) int {
	if x > 10 {
		return x - 10
	}
	return x
}
