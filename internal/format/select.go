package format

import (
	"errors"
	"fmt"
	"sort"

	"vidfetch/internal/ytdlp"
)

// ErrNoFormats means neither the format list nor the top-level metadata
// yielded anything downloadable.
var ErrNoFormats = errors.New("no suitable downloadable formats found")

// Quality is one user-facing download choice.
type Quality struct {
	FormatID string `json:"format_id"`
	Label    string `json:"label"`
	Ext      string `json:"ext"`
	Title    string `json:"title"`
}

// Segmented or streaming protocols are excluded: the direct-download path
// assumes a single resolvable stream URL.
var excludedProtocols = map[string]bool{
	"m3u8_native": true,
	"m3u8":        true,
	"dash":        true,
	"rtmp":        true,
}

// sortKey is the composite preference key, compared field by field.
type sortKey struct {
	preference     int
	height         int
	tbr            float64
	filesizeApprox int64
	filesize       int64
}

func keyOf(f ytdlp.Format) sortKey {
	k := sortKey{preference: -1}
	if f.Preference != nil {
		k.preference = *f.Preference
	}
	if f.Height != nil {
		k.height = *f.Height
	}
	if f.TBR != nil {
		k.tbr = *f.TBR
	}
	if f.FilesizeApprox != nil {
		k.filesizeApprox = *f.FilesizeApprox
	}
	if f.Filesize != nil {
		k.filesize = *f.Filesize
	}
	return k
}

// less reports whether a orders after b in the descending output.
func (a sortKey) less(b sortKey) bool {
	if a.preference != b.preference {
		return a.preference > b.preference
	}
	if a.height != b.height {
		return a.height > b.height
	}
	if a.tbr != b.tbr {
		return a.tbr > b.tbr
	}
	if a.filesizeApprox != b.filesizeApprox {
		return a.filesizeApprox > b.filesizeApprox
	}
	return a.filesize > b.filesize
}

// SelectQualities filters, orders and labels the formats of info. Ordering is
// descending by (preference, height, bitrate, approx size, exact size) with
// stable ties. Labels are unique within one result: a collision gets the
// format ID appended. When nothing survives filtering but the top-level
// metadata is itself a playable video stream, a single "best" entry is
// synthesized. Returns ErrNoFormats when even that is impossible.
func SelectQualities(info *ytdlp.Info) ([]Quality, error) {
	title := info.Title
	if title == "" {
		title = "video"
	}

	sorted := make([]ytdlp.Format, len(info.Formats))
	copy(sorted, info.Formats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return keyOf(sorted[i]).less(keyOf(sorted[j]))
	})

	var qualities []Quality
	seen := make(map[string]bool)
	for _, f := range sorted {
		if f.URL == "" || excludedProtocols[f.Protocol] {
			continue
		}
		if f.VCodec == "none" && f.ACodec == "none" {
			continue
		}

		label := Label(f)
		if seen[label] {
			label = fmt.Sprintf("%s (ID: %s)", label, f.FormatID)
		}
		seen[label] = true

		qualities = append(qualities, Quality{
			FormatID: f.FormatID,
			Label:    label,
			Ext:      f.Ext,
			Title:    title,
		})
	}

	if len(qualities) == 0 && info.URL != "" && info.VCodec != "none" {
		label := Label(info.AsFormat())
		if label == "" {
			label = "Best Quality (Direct Link)"
		}
		qualities = append(qualities, Quality{
			FormatID: "best",
			Label:    label,
			Ext:      info.Ext,
			Title:    title,
		})
	}

	if len(qualities) == 0 {
		return nil, ErrNoFormats
	}
	return qualities, nil
}
