package chain

import "strings"

//trackpaths:track
func shout(s string) string { // want `line 8 is reached by 1 path\(s\) through 1 block\(s\)`
	s = strings.TrimSpace(s)
	return strings.ToUpper(s) + "!"
}
