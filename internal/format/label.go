// Package format turns yt-dlp format descriptors into the ordered,
// human-readable quality list the API exposes.
package format

import (
	"fmt"
	"strings"

	"vidfetch/internal/ytdlp"
)

const bytesPerMB = 1024 * 1024

// Label renders a short human-readable description of a format. It never
// fails: a descriptor with no usable attributes falls back to its format ID,
// or "Unknown Quality" when even that is missing.
func Label(f ytdlp.Format) string {
	var parts []string

	if f.Height != nil {
		parts = append(parts, fmt.Sprintf("%dp", *f.Height))
	}
	if f.FormatNote != "" {
		parts = append(parts, f.FormatNote)
	}
	if f.Ext != "" {
		parts = append(parts, f.Ext)
	}

	hasVideo := f.VCodec != "none"
	hasAudio := f.ACodec != "none"
	switch {
	case hasVideo && hasAudio:
		parts = append(parts, "(Video + Audio)")
	case !hasVideo && hasAudio:
		parts = append(parts, "(Audio Only)")
	case hasVideo && !hasAudio:
		parts = append(parts, "(Video Only)")
	}

	size := f.FilesizeApprox
	if size == nil {
		size = f.Filesize
	}
	if size != nil {
		parts = append(parts, fmt.Sprintf("(%.2f MB)", float64(*size)/bytesPerMB))
	}

	if len(parts) == 0 {
		if f.FormatID != "" {
			return f.FormatID
		}
		return "Unknown Quality"
	}
	return strings.Join(parts, " ")
}
