package chapters

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Extract pulls the chapter XML out of a container with mkvextract and
// parses it. Returns an empty timeline when the file carries no chapters.
func Extract(ctx context.Context, binary, path, tempDir string) ([]Chapter, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "mkvextract"
	}

	dest := filepath.Join(tempDir, "chapters.xml")
	cmd := exec.CommandContext(ctx, binary, path, "chapters", dest)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("chapters extract %q: %w: %s", path, err, strings.TrimSpace(string(output)))
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("chapters extract %q: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	return Parse(data)
}

// WriteFile marshals the timeline and writes it where mkvmerge can pick it up.
func WriteFile(chs []Chapter, dest string) error {
	data, err := Marshal(chs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("chapters write %q: %w", dest, err)
	}
	return nil
}
