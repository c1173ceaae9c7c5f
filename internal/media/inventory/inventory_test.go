package inventory

import "testing"

const samplePayload = `{
  "tracks": [
    {"id": 0, "type": "video", "codec": "HEVC", "properties": {
      "codec_id": "V_MPEGH/ISO/HEVC", "language": "und",
      "default_track": true, "forced_track": false,
      "pixel_dimensions": "1920x1080", "minimum_timestamp": 0}},
    {"id": 1, "type": "audio", "codec": "AC-3", "properties": {
      "codec_id": "A_AC3", "language": "ENG", "track_name": "Surround",
      "default_track": true, "audio_channels": 6,
      "audio_sampling_frequency": 48000, "minimum_timestamp": 8000000}},
    {"id": 2, "type": "audio", "codec": "FLAC", "properties": {
      "codec_id": "A_FLAC", "language": "jpn",
      "audio_channels": 2, "audio_sampling_frequency": 48000,
      "minimum_timestamp": 0}},
    {"id": 3, "type": "subtitles", "codec": "SubRip", "properties": {
      "codec_id": "S_TEXT/UTF8", "language": "eng", "forced_track": true,
      "minimum_timestamp": 42000000}}
  ],
  "attachments": [
    {"id": 1, "file_name": "font.ttf", "content_type": "application/x-truetype-font"}
  ],
  "chapters": [{"num_entries": 12}]
}`

func TestParse(t *testing.T) {
	src, err := Parse(samplePayload)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(src.Tracks) != 4 {
		t.Fatalf("Parse() tracks = %d, want 4", len(src.Tracks))
	}

	video := src.Tracks[0]
	if video.Type != TypeVideo || video.Width != 1920 || video.Height != 1080 {
		t.Errorf("video track = %+v", video)
	}

	audio := src.Tracks[1]
	if audio.Language != "eng" {
		t.Errorf("audio language = %q, want lowercased eng", audio.Language)
	}
	if audio.Channels != 6 || audio.SampleRate != 48000 {
		t.Errorf("audio shape = %d ch %d Hz", audio.Channels, audio.SampleRate)
	}
	if audio.ContainerDelayMs != 8 {
		t.Errorf("audio container delay = %d, want 8", audio.ContainerDelayMs)
	}

	if d := src.Tracks[3].ContainerDelayMs; d != 0 {
		t.Errorf("subtitle container delay = %d, want 0", d)
	}

	if !src.HasChapters {
		t.Error("HasChapters = false, want true")
	}
	if len(src.Attachments) != 1 || src.Attachments[0].FileName != "font.ttf" {
		t.Errorf("attachments = %+v", src.Attachments)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	if _, err := Parse("{not json"); err == nil {
		t.Fatal("Parse() expected error for invalid JSON")
	}
}

func TestContainerDelayMs(t *testing.T) {
	tests := []struct {
		ns   int64
		want int
	}{
		{0, 0},
		{8000000, 8},
		{8500000, 9},
		{-8500000, -9},
		{499999, 0},
		{500000, 1},
	}
	for _, tt := range tests {
		if got := ContainerDelayMs(tt.ns); got != tt.want {
			t.Errorf("ContainerDelayMs(%d) = %d, want %d", tt.ns, got, tt.want)
		}
	}
}

func TestRelativizeAudioDelays(t *testing.T) {
	src := &Source{Tracks: []Track{
		{ID: 0, Type: TypeVideo, ContainerDelayMs: 5},
		{ID: 1, Type: TypeAudio, ContainerDelayMs: 13},
		{ID: 2, Type: TypeSubtitles, ContainerDelayMs: 0},
	}}
	relativizeAudioDelays(src)
	if got := src.Tracks[1].ContainerDelayMs; got != 8 {
		t.Errorf("audio delay relative to video = %d, want 8", got)
	}
	if got := src.Tracks[0].ContainerDelayMs; got != 5 {
		t.Errorf("video delay = %d, want unchanged 5", got)
	}
}

func TestAudioStreamIndex(t *testing.T) {
	src := &Source{Tracks: []Track{
		{ID: 0, Type: TypeVideo},
		{ID: 1, Type: TypeAudio, Language: "jpn"},
		{ID: 2, Type: TypeAudio, Language: "eng"},
	}}
	if got := src.AudioStreamIndex("eng"); got != 1 {
		t.Errorf("AudioStreamIndex(eng) = %d, want 1", got)
	}
	if got := src.AudioStreamIndex("fra"); got != 0 {
		t.Errorf("AudioStreamIndex(fra) = %d, want first audio 0", got)
	}
	if got := src.AudioStreamIndex(""); got != 0 {
		t.Errorf("AudioStreamIndex(\"\") = %d, want 0", got)
	}
	empty := &Source{}
	if got := empty.AudioStreamIndex("eng"); got != -1 {
		t.Errorf("AudioStreamIndex on empty = %d, want -1", got)
	}
}
