package ffmpeg

import "strings"

// AudioMetadata represents metadata extracted from an audio file
type AudioMetadata struct {
	Duration   float64 `json:"duration"`    // Duration in seconds
	SampleRate int     `json:"sample_rate"` // Sample rate in Hz
	Channels   int     `json:"channels"`    // Number of audio channels
	Bitrate    int     `json:"bitrate"`     // Bitrate in bits per second
	Format     string  `json:"format"`      // Container format (wav, mp3, ...)
	Codec      string  `json:"codec"`       // Audio codec
	Size       int64   `json:"size"`        // File size in bytes
}

// SupportedFormats lists the ffprobe format names accepted as voice samples
var SupportedFormats = map[string]bool{
	"wav":  true,
	"mp3":  true,
	"m4a":  true,
	"aac":  true,
	"flac": true,
	"ogg":  true,
	"mp4":  true,
}

// IsSupportedFormat reports whether an ffprobe format name, which may list
// several comma separated demuxers, names a supported container
func IsSupportedFormat(format string) bool {
	for _, name := range strings.Split(format, ",") {
		if SupportedFormats[strings.TrimSpace(name)] {
			return true
		}
	}
	return false
}
