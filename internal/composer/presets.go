// internal/composer/presets.go
package composer

import "strings"

// Tone selects the default message template used for recipients without a
// custom override in personalized mode.
type Tone string

const (
	ToneCasual   Tone = "casual"
	ToneFormal   Tone = "formal"
	ToneReminder Tone = "reminder"
)

// preset carries the default subject and body for one tone. Preset text uses
// the single-brace {name} grammar, which is deliberately simpler than the
// {{token}} grammar of card text since presets only ever need the name.
type preset struct {
	Subject  string
	TextBody string
}

var presets = map[Tone]preset{
	ToneCasual: {
		Subject:  "You're invited, {name}!",
		TextBody: "Hey {name}! We made a card for you, can't wait to see you there.",
	},
	ToneFormal: {
		Subject:  "An invitation for {name}",
		TextBody: "Dear {name}, you are cordially invited. We would be honored by your presence.",
	},
	ToneReminder: {
		Subject:  "A reminder for {name}",
		TextBody: "Hi {name}, a quick reminder about the upcoming event. We hope to see you!",
	},
}

// presetFor returns the preset for tone, defaulting to casual for unknown or
// empty tones.
func presetFor(tone Tone) preset {
	if p, ok := presets[tone]; ok {
		return p
	}
	return presets[ToneCasual]
}

// injectName resolves the {name} placeholder of preset text.
func injectName(text, name string) string {
	return strings.ReplaceAll(text, "{name}", name)
}
