package model

import "strings"

// TranscriptionResult is the transcript file produced by a succeeded
// transcription job. Only Results.Transcripts is used downstream; the rest
// is decoded to keep the document shape intact.
type TranscriptionResult struct {
	JobName   string            `json:"jobName"`
	AccountID string            `json:"accountId"`
	Status    string            `json:"status"`
	Results   TranscriptResults `json:"results"`
}

type TranscriptResults struct {
	Transcripts   []Transcript     `json:"transcripts"`
	SpeakerLabels SpeakerLabels    `json:"speaker_labels"`
	Items         []TranscriptItem `json:"items"`
	AudioSegments []AudioSegment   `json:"audio_segments"`
}

type Transcript struct {
	Transcript string `json:"transcript"`
}

type SpeakerLabels struct {
	Segments     []SpeakerSegment `json:"segments"`
	ChannelLabel string           `json:"channel_label"`
	Speakers     int64            `json:"speakers"`
}

type SpeakerSegment struct {
	StartTime    string        `json:"start_time"`
	EndTime      string        `json:"end_time"`
	SpeakerLabel string        `json:"speaker_label"`
	Items        []SegmentItem `json:"items"`
}

type SegmentItem struct {
	SpeakerLabel string `json:"speaker_label"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// TranscriptItem is a pronunciation or punctuation item. Punctuation has no
// timestamps.
type TranscriptItem struct {
	ID           int64         `json:"id"`
	Type         string        `json:"type"`
	Alternatives []Alternative `json:"alternatives"`
	StartTime    *string       `json:"start_time,omitempty"`
	EndTime      *string       `json:"end_time,omitempty"`
	SpeakerLabel string        `json:"speaker_label"`
}

type Alternative struct {
	Confidence string `json:"confidence"`
	Content    string `json:"content"`
}

type AudioSegment struct {
	ID           int64   `json:"id"`
	Transcript   string  `json:"transcript"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	SpeakerLabel string  `json:"speaker_label"`
	Items        []int64 `json:"items"`
}

// Text joins every transcript entry with a single space. Entries are not
// trimmed.
func (x *TranscriptionResult) Text() string {
	texts := make([]string, len(x.Results.Transcripts))
	for i, t := range x.Results.Transcripts {
		texts[i] = t.Transcript
	}
	return strings.Join(texts, " ")
}
