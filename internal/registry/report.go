package registry

import (
	"fmt"
	"os"
)

// GenerateTop5File writes the top5 report to path, truncating any existing
// file, mirroring generate_top5_log's fopen(path, "w").
func (r *Registry) GenerateTop5File(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("registry: create %q: %w", path, err)
	}
	defer f.Close()
	return r.WriteTop5Report(f)
}
