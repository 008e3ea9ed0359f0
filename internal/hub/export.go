package hub

import (
	"fmt"

	"github.com/zulandar/atelier/internal/models"
)

// Export is a download-ready payload returned to the requesting session.
type Export struct {
	Format   string `json:"format"`
	FileName string `json:"fileName"`
	Data     any    `json:"data"`
}

// buildExport serializes a project snapshot for download. "json" is the
// full model, "code" just the source files, "zip" the code model tagged
// for the external packaging service.
func buildExport(p *models.Project, format string) (*Export, error) {
	switch format {
	case "json":
		return &Export{
			Format:   "json",
			FileName: p.ID + ".json",
			Data:     p,
		}, nil
	case "code":
		return &Export{
			Format:   "code",
			FileName: p.ID + "-code.json",
			Data:     p.Code.Files,
		}, nil
	case "zip":
		// Packaging happens outside this process; the payload carries
		// everything the packager needs.
		return &Export{
			Format:   "zip",
			FileName: p.ID + ".zip",
			Data:     p.Code,
		}, nil
	}
	return nil, fmt.Errorf("hub: unsupported export format %q", format)
}
