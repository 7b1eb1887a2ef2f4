package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"mediaorg/internal/config"
)

// Requirement defines an external binary mediaorg shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries cfg relies on. ffprobe only enriches video
// metadata, so it is optional; exiftool is required once enabled.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{{
		Name:        "ffprobe",
		Command:     cfg.FFprobe.Binary,
		Description: "Reads video and m4a creation time, location, and tags",
		Optional:    true,
	}}
	if cfg.ExifTool.Enabled {
		reqs = append(reqs, Requirement{
			Name:        "exiftool",
			Command:     cfg.ExifTool.Binary,
			Description: "Writes XMP original name, title, and album on copy",
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch {
		case cmd == "":
			status.Detail = "command not configured"
		default:
			if path, err := exec.LookPath(cmd); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
			} else {
				status.Available = true
				status.Command = path
			}
		}
		results = append(results, status)
	}
	return results
}

// Missing returns the required statuses that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
