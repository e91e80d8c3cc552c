package manifest

// Line is one raw manifest line with its 1-based position.
type Line struct {
	No   int
	Text string
}
