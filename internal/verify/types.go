package verify

import (
	"log/slog"

	def "hush/definitions"
)

// Failure is one manifest line that did not verify.
type Failure struct {
	Line     int      `json:"line"`
	Path     string   `json:"path,omitempty"`
	Kind     def.Kind `json:"kind"`
	Expected string   `json:"expected,omitempty"`
	Computed string   `json:"computed,omitempty"`
	Error    string   `json:"error"`
}

// Tally is owned by the single collecting goroutine.
type Tally struct {
	LinesTotal int `json:"lines_total"`
	Matches    int `json:"matches"`
	Errors     int `json:"errors"`
}

type Result struct {
	Tally
	Failures []Failure `json:"failures"`
	// Stopped is set when verification ended at the first error.
	Stopped bool `json:"stopped"`
}

// OK reports terminal success: every line read was a match.
func (r *Result) OK() bool {
	return !r.Stopped && r.Errors == 0 && r.Matches == r.LinesTotal
}

type Options struct {
	Workers          int
	StopOnFirstError bool
	Logger           *slog.Logger
}

type BlockDiff struct {
	Index  uint64
	Start  uint64
	End    uint64
	Hashes []string
}

type MultiBlockResult struct {
	BlockSize       int64
	Paths           []string
	Sizes           []int64
	Blocks          int
	DifferingBlocks []BlockDiff
	TailBytes       []int64
	MinSize         int64
	MaxSize         int64
}
