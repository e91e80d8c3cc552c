package hasher

import (
	"fmt"
	"os"

	"fortio.org/safecast"

	def "hush/definitions"
)

// Plan splits [0, size) into consecutive blocks of blockLen bytes. The last
// block holds the remainder. A zero size yields no blocks.
func Plan(size int64, blockLen int64) ([]def.Block, error) {
	if blockLen <= 0 {
		return nil, fmt.Errorf("block length must be > 0, got %d", blockLen)
	}
	total, err := safecast.Conv[uint64](size)
	if err != nil {
		return nil, fmt.Errorf("invalid file size %d: %w", size, err)
	}
	step := uint64(blockLen)

	blocks := make([]def.Block, 0, (total+step-1)/step)
	var idx uint64
	for start := uint64(0); start < total; start += step {
		end := min(start+step, total)
		blocks = append(blocks, def.Block{Index: idx, Start: start, End: end})
		idx++
	}
	return blocks, nil
}

// PlanFile is Plan for the current size of the file at path.
func PlanFile(path string, blockLen int64) ([]def.Block, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, openErr(path, err)
	}
	return Plan(info.Size(), blockLen)
}
