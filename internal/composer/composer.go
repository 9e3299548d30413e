// Package composer turns a card template plus a message configuration into
// the per-recipient artifacts each transport needs. Email recipients get the
// rendered HTML card; chat and mms recipients get plain text with a short
// description of the card's media.
package composer

import (
	"fmt"
	"strings"

	"card-dispatch/internal/canvas"
	apperrors "card-dispatch/internal/common/errors"
	"card-dispatch/internal/guests"
	"card-dispatch/internal/variables"
)

// Mode selects how the message body is sourced.
type Mode string

const (
	// ModeGroup sends the same subject and body structure to every
	// recipient. Token substitution still runs per guest.
	ModeGroup Mode = "group"

	// ModePersonalized sources each recipient's message from their
	// Personalization entry, falling back to a tone preset.
	ModePersonalized Mode = "personalized"
)

// Personalization is one guest's message override in personalized mode.
// When Customized is false the Tone preset supplies the text.
type Personalization struct {
	Customized bool   `json:"customized"`
	Subject    string `json:"subject,omitempty"`
	Message    string `json:"message,omitempty"`
	Tone       Tone   `json:"tone,omitempty"`
}

// Request is the input to one composition pass.
type Request struct {
	Channel  guests.Channel
	Mode     Mode
	Subject  string
	Body     string
	Tone     Tone
	Template canvas.Template

	// RawHTML, when set, replaces template rendering for the email channel.
	// API callers that already hold a rendered artifact use it; tokens are
	// still substituted per guest.
	RawHTML string

	// PerGuest holds personalized-mode overrides keyed by guest ID.
	// Guests without an entry fall back to the Request Tone preset.
	PerGuest map[string]Personalization
}

// Rendered is the finished artifact for one recipient. HTML is populated for
// the email channel only.
type Rendered struct {
	Subject string
	Body    string
	HTML    string
}

// Compose produces one Rendered artifact per recipient, keyed by guest ID.
// Composition is all-or-nothing: any validation failure rejects the whole
// request before a single artifact is built.
func Compose(req Request, recipients []guests.Guest) (map[string]Rendered, error) {
	if !req.Channel.IsValid() {
		return nil, apperrors.NewNoChannelError()
	}
	if len(recipients) == 0 {
		return nil, apperrors.NewNoRecipientsError(string(req.Channel))
	}
	if req.Channel == guests.ChannelEmail && req.Mode == ModeGroup && strings.TrimSpace(req.Subject) == "" {
		return nil, apperrors.NewMissingSubjectError()
	}

	out := make(map[string]Rendered, len(recipients))
	for _, g := range recipients {
		r, err := composeFor(req, g)
		if err != nil {
			return nil, err
		}
		out[g.ID] = r
	}
	return out, nil
}

// composeFor builds the artifact for a single guest.
func composeFor(req Request, g guests.Guest) (Rendered, error) {
	subject, body := messageFor(req, g)

	subject = variables.Substitute(subject, g)
	body = variables.Substitute(body, g)

	r := Rendered{Subject: subject, Body: body}

	switch req.Channel {
	case guests.ChannelEmail:
		if req.RawHTML != "" {
			r.HTML = variables.Substitute(req.RawHTML, g)
			break
		}
		html, err := renderCardHTML(req.Template, g)
		if err != nil {
			return Rendered{}, err
		}
		r.HTML = html
	case guests.ChannelChat, guests.ChannelMMS:
		if fallback := textFallback(req.Template, g); fallback != "" {
			if r.Body != "" {
				r.Body += "\n\n"
			}
			r.Body += fallback
		}
	}

	return r, nil
}

// messageFor resolves the pre-substitution subject and body for one guest.
// Customized overrides are used as-is; everything else flows through a tone
// preset with {name} injected.
func messageFor(req Request, g guests.Guest) (subject, body string) {
	if req.Mode != ModePersonalized {
		return req.Subject, req.Body
	}

	p, ok := req.PerGuest[g.ID]
	if ok && p.Customized {
		return p.Subject, p.Message
	}

	tone := req.Tone
	if ok && p.Tone != "" {
		tone = p.Tone
	}
	pr := presetFor(tone)
	return injectName(pr.Subject, g.Name), injectName(pr.TextBody, g.Name)
}

// renderCardHTML clones the template, substitutes tokens in every text item
// for this guest, and renders the result. The shared template is never
// mutated.
func renderCardHTML(t canvas.Template, g guests.Guest) (string, error) {
	personal := t.Clone()
	for i := range personal.Items {
		if personal.Items[i].Kind == canvas.KindText {
			personal.Items[i].Content = variables.Substitute(personal.Items[i].Content, g)
		}
	}
	return canvas.RenderHTML(personal)
}

// textFallback describes the card for channels that cannot carry HTML: the
// substituted text lines in render order, then a media summary.
func textFallback(t canvas.Template, g guests.Guest) string {
	var lines []string
	photos, videos := 0, 0

	for _, it := range t.Items {
		switch it.Kind {
		case canvas.KindText:
			if content := variables.Substitute(it.Content, g); content != "" {
				lines = append(lines, content)
			}
		case canvas.KindImage:
			photos++
		case canvas.KindVideo, canvas.KindLoopMedia:
			videos++
		}
	}

	if summary := mediaSummary(photos, videos); summary != "" {
		lines = append(lines, summary)
	}
	return strings.Join(lines, "\n")
}

func mediaSummary(photos, videos int) string {
	var parts []string
	if photos > 0 {
		parts = append(parts, fmt.Sprintf("%d photo(s)", photos))
	}
	if videos > 0 {
		parts = append(parts, fmt.Sprintf("%d video(s)", videos))
	}
	if len(parts) == 0 {
		return ""
	}
	return "[card includes " + strings.Join(parts, " and ") + "]"
}
