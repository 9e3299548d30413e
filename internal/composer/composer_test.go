// internal/composer/composer_test.go
package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-dispatch/internal/canvas"
	apperrors "card-dispatch/internal/common/errors"
	"card-dispatch/internal/guests"
)

func cardTemplate() canvas.Template {
	return canvas.Template{
		Background: canvas.Background{Color: "#fff8f0"},
		Items: []canvas.Item{
			{Kind: canvas.KindText, Content: "Dear {{name}}, join us at {{location}}", OpacityPct: 100,
				Filters: canvas.Filters{BrightnessPct: 100, ContrastPct: 100, SaturationPct: 100}},
			{Kind: canvas.KindImage, SourceRef: "img://hero", OpacityPct: 100, WidthPx: 200, HeightPx: 200,
				Filters: canvas.Filters{BrightnessPct: 100, ContrastPct: 100, SaturationPct: 100}},
		},
	}
}

func emailGuest(id, name, email string) guests.Guest {
	return guests.Guest{ID: id, Name: name, Email: email, Location: "Paris", Valid: true}
}

func TestCompose_GroupEmail(t *testing.T) {
	req := Request{
		Channel:  guests.ChannelEmail,
		Mode:     ModeGroup,
		Subject:  "Invitation for {{name}}",
		Body:     "See you there, {{first_name}}!",
		Template: cardTemplate(),
	}
	recipients := []guests.Guest{
		emailGuest("g1", "Alice Martin", "alice@x.com"),
		emailGuest("g2", "Bob Stone", "bob@x.com"),
	}

	out, err := Compose(req, recipients)
	require.NoError(t, err)
	require.Len(t, out, 2)

	alice := out["g1"]
	assert.Equal(t, "Invitation for Alice Martin", alice.Subject)
	assert.Equal(t, "See you there, Alice!", alice.Body)
	assert.Contains(t, alice.HTML, "Dear Alice Martin, join us at Paris")
	assert.Contains(t, alice.HTML, "img://hero")

	bob := out["g2"]
	assert.Contains(t, bob.HTML, "Dear Bob Stone")
	assert.NotContains(t, bob.HTML, "Alice")
}

func TestCompose_SharedTemplateNotMutated(t *testing.T) {
	tmpl := cardTemplate()
	req := Request{
		Channel:  guests.ChannelEmail,
		Mode:     ModeGroup,
		Subject:  "hi",
		Template: tmpl,
	}

	_, err := Compose(req, []guests.Guest{emailGuest("g1", "Alice", "a@x.com")})
	require.NoError(t, err)

	assert.Equal(t, "Dear {{name}}, join us at {{location}}", tmpl.Items[0].Content)
}

func TestCompose_ChatTextFallback(t *testing.T) {
	req := Request{
		Channel:  guests.ChannelChat,
		Mode:     ModeGroup,
		Body:     "Hi {{first_name}}",
		Template: cardTemplate(),
	}
	g := guests.Guest{ID: "g1", Name: "Alice Martin", Phone: "5551234567", Location: "Paris", Valid: true}

	out, err := Compose(req, []guests.Guest{g})
	require.NoError(t, err)

	r := out["g1"]
	assert.Empty(t, r.HTML)
	assert.Contains(t, r.Body, "Hi Alice")
	assert.Contains(t, r.Body, "Dear Alice Martin, join us at Paris")
	assert.Contains(t, r.Body, "[card includes 1 photo(s)]")
}

func TestCompose_PersonalizedPresets(t *testing.T) {
	req := Request{
		Channel: guests.ChannelChat,
		Mode:    ModePersonalized,
		Tone:    ToneFormal,
		PerGuest: map[string]Personalization{
			"g2": {Customized: true, Message: "Bob, bring the cake"},
			"g3": {Tone: ToneReminder},
		},
	}
	recipients := []guests.Guest{
		{ID: "g1", Name: "Alice", Phone: "5551234567", Valid: true},
		{ID: "g2", Name: "Bob", Phone: "5551234568", Valid: true},
		{ID: "g3", Name: "Carol", Phone: "5551234569", Valid: true},
	}

	out, err := Compose(req, recipients)
	require.NoError(t, err)

	// no override: request tone preset with name injected
	assert.Contains(t, out["g1"].Body, "Dear Alice")

	// customized override used as-is
	assert.Equal(t, "Bob, bring the cake", out["g2"].Body)

	// per-guest tone beats request tone
	assert.Contains(t, out["g3"].Body, "reminder")
	assert.Contains(t, out["g3"].Body, "Carol")
}

func TestCompose_RawHTMLBypassesTemplate(t *testing.T) {
	req := Request{
		Channel: guests.ChannelEmail,
		Mode:    ModeGroup,
		Subject: "hi",
		RawHTML: "<p>Hello {{name}}</p>",
	}

	out, err := Compose(req, []guests.Guest{emailGuest("g1", "Alice", "a@x.com")})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello Alice</p>", out["g1"].HTML)
}

func TestCompose_ValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		req        Request
		recipients []guests.Guest
		wantCode   apperrors.ErrorCode
	}{
		{
			name:     "invalid channel",
			req:      Request{Channel: "fax", Mode: ModeGroup},
			wantCode: apperrors.ErrCodeNoChannel,
			recipients: []guests.Guest{
				emailGuest("g1", "Alice", "a@x.com"),
			},
		},
		{
			name:       "zero recipients",
			req:        Request{Channel: guests.ChannelEmail, Mode: ModeGroup, Subject: "hi"},
			recipients: nil,
			wantCode:   apperrors.ErrCodeNoRecipients,
		},
		{
			name:       "email without subject",
			req:        Request{Channel: guests.ChannelEmail, Mode: ModeGroup, Subject: "   "},
			recipients: []guests.Guest{emailGuest("g1", "Alice", "a@x.com")},
			wantCode:   apperrors.ErrCodeMissingSubject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compose(tt.req, tt.recipients)
			require.Error(t, err)

			var stdErr *apperrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestCompose_MissingAssetSurfacesTemplateError(t *testing.T) {
	tmpl := cardTemplate()
	tmpl.Items[1].SourceRef = ""

	req := Request{
		Channel:  guests.ChannelEmail,
		Mode:     ModeGroup,
		Subject:  "hi",
		Template: tmpl,
	}

	_, err := Compose(req, []guests.Guest{emailGuest("g1", "Alice", "a@x.com")})
	require.Error(t, err)
	assert.True(t, apperrors.IsTemplate(err))
}

func TestPresetFor_UnknownToneFallsBackToCasual(t *testing.T) {
	p := presetFor(Tone("aggressive"))
	assert.Equal(t, presets[ToneCasual], p)

	p = presetFor("")
	assert.Equal(t, presets[ToneCasual], p)
}

func TestInjectName(t *testing.T) {
	assert.Equal(t, "Hey Alice!", injectName("Hey {name}!", "Alice"))
	assert.Equal(t, "no placeholder", injectName("no placeholder", "Alice"))
}
