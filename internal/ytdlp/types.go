package ytdlp

import "encoding/json"

// Format is one downloadable stream variant as reported by yt-dlp. Optional
// numeric fields are pointers so absence is distinguishable from zero.
type Format struct {
	FormatID       string   `json:"format_id"`
	URL            string   `json:"url"`
	Ext            string   `json:"ext"`
	FormatNote     string   `json:"format_note"`
	Protocol       string   `json:"protocol"`
	VCodec         string   `json:"vcodec"`
	ACodec         string   `json:"acodec"`
	Height         *int     `json:"height"`
	TBR            *float64 `json:"tbr"`
	Filesize       *int64   `json:"filesize"`
	FilesizeApprox *int64   `json:"filesize_approx"`
	Preference     *int     `json:"preference"`
}

// Info is the probe result for a single video. The top-level metadata can
// itself describe a directly playable stream, so it carries the same
// label-relevant fields as a Format.
type Info struct {
	Title          string   `json:"title"`
	FormatID       string   `json:"format_id"`
	URL            string   `json:"url"`
	Ext            string   `json:"ext"`
	FormatNote     string   `json:"format_note"`
	VCodec         string   `json:"vcodec"`
	ACodec         string   `json:"acodec"`
	Height         *int     `json:"height"`
	TBR            *float64 `json:"tbr"`
	Filesize       *int64   `json:"filesize"`
	FilesizeApprox *int64   `json:"filesize_approx"`
	Formats        []Format `json:"formats"`
}

// AsFormat views the top-level metadata as a format descriptor, used when no
// per-format entry survives filtering and the direct stream is the only option.
func (i *Info) AsFormat() Format {
	return Format{
		FormatID:       i.FormatID,
		URL:            i.URL,
		Ext:            i.Ext,
		FormatNote:     i.FormatNote,
		VCodec:         i.VCodec,
		ACodec:         i.ACodec,
		Height:         i.Height,
		TBR:            i.TBR,
		Filesize:       i.Filesize,
		FilesizeApprox: i.FilesizeApprox,
	}
}

// FetchResult describes a completed download.
type FetchResult struct {
	// Path is the merged file on local storage.
	Path string
	// Title is the extracted video title, used to build the display filename.
	Title string
}

// downloadResult is the terminal JSON yt-dlp prints after a download. The
// final path appears either at the top level or inside requested_downloads.
type downloadResult struct {
	Title              string              `json:"title"`
	Filepath           string              `json:"filepath"`
	RequestedDownloads []requestedDownload `json:"requested_downloads"`
}

// requestedDownload is one entry of requested_downloads. Older yt-dlp
// releases emit bare path strings; current ones emit objects with a
// "filepath" key. Both decode into the same shape.
type requestedDownload struct {
	Filepath string `json:"filepath"`
}

func (r *requestedDownload) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.Filepath)
	}
	type alias requestedDownload
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	r.Filepath = a.Filepath
	return nil
}

// resolvePath picks the downloaded file path out of the result, checking the
// top-level field first and falling back to the first requested download.
func (r *downloadResult) resolvePath() (string, bool) {
	if r.Filepath != "" {
		return r.Filepath, true
	}
	if len(r.RequestedDownloads) > 0 && r.RequestedDownloads[0].Filepath != "" {
		return r.RequestedDownloads[0].Filepath, true
	}
	return "", false
}
