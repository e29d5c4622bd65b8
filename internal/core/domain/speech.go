package domain

import "strings"

const (
	// DefaultVoice is used when a request does not name a voice.
	DefaultVoice = "en-US-Wavenet-D"

	ssmlOpen  = "<speak>"
	ssmlClose = "</speak>"
)

// InputMode selects which input field the synthesis provider receives.
// Plain text and SSML are mutually exclusive.
type InputMode string

const (
	InputText InputMode = "text"
	InputSSML InputMode = "ssml"
)

// Prosody overrides speaking rate and pitch for plain-text synthesis.
type Prosody struct {
	Rate  float64
	Pitch float64
}

// Mood names a prosody preset.
type Mood string

const (
	MoodDefault Mood = "default"
	MoodSad     Mood = "sad"
	MoodAngry   Mood = "angry"
	MoodExcited Mood = "excited"
)

var moodPresets = map[Mood]Prosody{
	MoodSad:     {Rate: 0.85, Pitch: -4.0},
	MoodAngry:   {Rate: 1.10, Pitch: -2.0},
	MoodExcited: {Rate: 1.15, Pitch: 2.0},
	MoodDefault: {Rate: 1.00, Pitch: 0.0},
}

// PresetFor returns the prosody for mood, falling back to MoodDefault.
func PresetFor(mood Mood) Prosody {
	if p, ok := moodPresets[mood]; ok {
		return p
	}
	return moodPresets[MoodDefault]
}

// WrapSpeak wraps text verbatim in a bare <speak> envelope.
func WrapSpeak(text string) string {
	return ssmlOpen + text + ssmlClose
}

// IsSpeakEnvelope reports whether s both starts with <speak> and ends with </speak>.
func IsSpeakEnvelope(s string) bool {
	return strings.HasPrefix(s, ssmlOpen) && strings.HasSuffix(s, ssmlClose)
}

// LanguageCode derives the language-region code from a voice name such as
// "en-US-Wavenet-D" by keeping its first two hyphen-separated segments.
func LanguageCode(voice string) string {
	parts := strings.Split(voice, "-")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, "-")
}
