package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"github.com/tidwall/gjson"
)

// TrackType classifies a stream within a container.
type TrackType string

const (
	TypeVideo     TrackType = "video"
	TypeAudio     TrackType = "audio"
	TypeSubtitles TrackType = "subtitles"
)

// Track describes a single stream read from the container. Tracks are
// immutable once read; role and codec id are never rewritten.
type Track struct {
	ID         int64
	Type       TrackType
	CodecID    string
	Language   string
	Name       string
	Default    bool
	Forced     bool
	Channels   int
	SampleRate int
	Width      int
	Height     int

	// ContainerDelayMs is the rounded minimum_timestamp of the track,
	// re-expressed relative to the video track for audio. Subtitles are
	// always zero.
	ContainerDelayMs int
}

// Attachment describes an embedded attachment (fonts etc.).
type Attachment struct {
	ID          int64
	FileName    string
	ContentType string
}

// Source is the full inventory of one container file.
type Source struct {
	Path        string
	Tracks      []Track
	Attachments []Attachment
	HasChapters bool
}

// Read runs `mkvmerge -J` against path and parses the result.
func Read(ctx context.Context, binary string, path string) (*Source, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "mkvmerge"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("inventory read: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-J", path)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("inventory read %q: %w", path, err)
	}

	src, err := Parse(string(output))
	if err != nil {
		return nil, err
	}
	src.Path = path
	return src, nil
}

// Parse decodes mkvmerge -J JSON output into a Source.
func Parse(payload string) (*Source, error) {
	if !gjson.Valid(payload) {
		return nil, errors.New("inventory parse: invalid JSON")
	}
	doc := gjson.Parse(payload)

	src := &Source{}
	doc.Get("tracks").ForEach(func(_, t gjson.Result) bool {
		props := t.Get("properties")
		track := Track{
			ID:         t.Get("id").Int(),
			Type:       TrackType(t.Get("type").String()),
			CodecID:    props.Get("codec_id").String(),
			Language:   strings.ToLower(strings.TrimSpace(props.Get("language").String())),
			Name:       props.Get("track_name").String(),
			Default:    props.Get("default_track").Bool(),
			Forced:     props.Get("forced_track").Bool(),
			Channels:   int(props.Get("audio_channels").Int()),
			SampleRate: int(props.Get("audio_sampling_frequency").Int()),
		}
		if dims := props.Get("pixel_dimensions").String(); dims != "" {
			fmt.Sscanf(dims, "%dx%d", &track.Width, &track.Height)
		}
		// Container delays only carry meaning for audio and video.
		if track.Type == TypeAudio || track.Type == TypeVideo {
			track.ContainerDelayMs = ContainerDelayMs(props.Get("minimum_timestamp").Int())
		}
		src.Tracks = append(src.Tracks, track)
		return true
	})

	doc.Get("attachments").ForEach(func(_, a gjson.Result) bool {
		src.Attachments = append(src.Attachments, Attachment{
			ID:          a.Get("id").Int(),
			FileName:    a.Get("file_name").String(),
			ContentType: a.Get("content_type").String(),
		})
		return true
	})

	doc.Get("chapters").ForEach(func(_, c gjson.Result) bool {
		if c.Get("num_entries").Int() > 0 {
			src.HasChapters = true
		}
		return true
	})

	relativizeAudioDelays(src)
	return src, nil
}

// ContainerDelayMs converts a minimum_timestamp in nanoseconds to a rounded
// millisecond delay. Rounds half away from zero so negative timestamps do not
// truncate toward zero.
func ContainerDelayMs(minimumTimestampNs int64) int {
	return int(math.Round(float64(minimumTimestampNs) / 1e6))
}

// relativizeAudioDelays re-expresses audio container delays relative to the
// first video track, which defines the timeline.
func relativizeAudioDelays(src *Source) {
	videoDelay := 0
	for _, t := range src.Tracks {
		if t.Type == TypeVideo {
			videoDelay = t.ContainerDelayMs
			break
		}
	}
	if videoDelay == 0 {
		return
	}
	for i := range src.Tracks {
		if src.Tracks[i].Type == TypeAudio {
			src.Tracks[i].ContainerDelayMs -= videoDelay
		}
	}
}

// AudioTracks returns the audio tracks in discovery order.
func (s *Source) AudioTracks() []Track {
	return s.tracksOf(TypeAudio)
}

// VideoTracks returns the video tracks in discovery order.
func (s *Source) VideoTracks() []Track {
	return s.tracksOf(TypeVideo)
}

// SubtitleTracks returns the subtitle tracks in discovery order.
func (s *Source) SubtitleTracks() []Track {
	return s.tracksOf(TypeSubtitles)
}

func (s *Source) tracksOf(kind TrackType) []Track {
	var out []Track
	for _, t := range s.Tracks {
		if t.Type == kind {
			out = append(out, t)
		}
	}
	return out
}

// AudioStreamIndex returns the 0-based audio stream index (the value ffmpeg's
// -map 0:a:<idx> expects) of the first audio track matching the normalized
// language preference, else the first audio track. Returns -1 when the
// container has no audio.
func (s *Source) AudioStreamIndex(preferredLang string) int {
	first := -1
	idx := -1
	for _, t := range s.Tracks {
		if t.Type != TypeAudio {
			continue
		}
		idx++
		if first < 0 {
			first = idx
		}
		if preferredLang != "" && t.Language == preferredLang {
			return idx
		}
	}
	return first
}
