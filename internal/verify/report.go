package verify

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	def "hush/definitions"
)

type Report struct {
	Manifest string `json:"manifest"`
	WorkDir  string `json:"work_dir"`
	OK       bool   `json:"ok"`
	*Result
}

// WriteReport stores the verification outcome as indented JSON.
func WriteReport(path string, rep Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil { // #nosec G306
		return fmt.Errorf("%w: write report: %w", def.ErrIoFailure, err)
	}
	return nil
}
