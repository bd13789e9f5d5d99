package voice

import "strings"

// Channel says how a chat message was entered
type Channel string

const (
	ChannelText  Channel = "text"
	ChannelVoice Channel = "voice"
)

// ParseChannel maps a client-supplied value onto a channel, defaulting to text
func ParseChannel(s string) Channel {
	if strings.EqualFold(strings.TrimSpace(s), string(ChannelVoice)) {
		return ChannelVoice
	}
	return ChannelText
}

// Settings are the speech parameters handed to the client's synthesizer
type Settings struct {
	Language string  `json:"lang"`
	Rate     float64 `json:"rate"`
	Pitch    float64 `json:"pitch"`
	Volume   float64 `json:"volume"`
}

// DefaultSettings returns the narration parameters used when none are configured
func DefaultSettings() Settings {
	return Settings{Language: "en-US", Rate: 0.9, Pitch: 1.0, Volume: 0.8}
}

// Narration tells a client with text-to-speech support what to speak and how
type Narration struct {
	Text string `json:"text"`
	Settings
}

// Narrator produces narrations when voice output is enabled
type Narrator struct {
	enabled  bool
	settings Settings
}

// NewNarrator creates a narrator; zero settings fields take the defaults
func NewNarrator(enabled bool, settings Settings) *Narrator {
	def := DefaultSettings()
	if settings.Language == "" {
		settings.Language = def.Language
	}
	if settings.Rate <= 0 {
		settings.Rate = def.Rate
	}
	if settings.Pitch <= 0 {
		settings.Pitch = def.Pitch
	}
	if settings.Volume <= 0 {
		settings.Volume = def.Volume
	}
	return &Narrator{enabled: enabled, settings: settings}
}

// Enabled reports whether narration is switched on
func (n *Narrator) Enabled() bool {
	return n != nil && n.enabled
}

// Settings returns the configured speech parameters
func (n *Narrator) Settings() Settings {
	if n == nil {
		return DefaultSettings()
	}
	return n.settings
}

// Narrate returns nil unless voice is enabled and the client can speak
func (n *Narrator) Narrate(text string, clientSupportsSpeech bool) *Narration {
	if !n.Enabled() || !clientSupportsSpeech || strings.TrimSpace(text) == "" {
		return nil
	}
	return &Narration{Text: text, Settings: n.settings}
}
