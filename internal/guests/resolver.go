// internal/guests/resolver.go
package guests

import (
	"strings"

	apperrors "card-dispatch/internal/common/errors"
)

// MaxRecipients caps a single dispatch. Exceeding it rejects the whole batch;
// there is never a partial send.
const MaxRecipients = 500

// minPhoneDigits is the digit count a chat/mms contact must reach once
// formatting characters are stripped.
const minPhoneDigits = 10

// ResolveValidRecipients filters the guest list down to entries that are both
// upstream-valid and carry a well-formed contact for the chosen channel.
// Input order is preserved. More than MaxRecipients resolved entries is a
// validation error and no subset is returned.
func ResolveValidRecipients(list []Guest, channel Channel) ([]Guest, error) {
	if !channel.IsValid() {
		return nil, apperrors.NewNoChannelError()
	}

	resolved := make([]Guest, 0, len(list))
	for _, g := range list {
		if !g.Valid {
			continue
		}
		if !hasContactFor(g, channel) {
			continue
		}
		resolved = append(resolved, g)
	}

	if len(resolved) > MaxRecipients {
		return nil, apperrors.NewTooManyRecipientsError(len(resolved), MaxRecipients)
	}

	return resolved, nil
}

func hasContactFor(g Guest, channel Channel) bool {
	switch channel {
	case ChannelEmail:
		return strings.Contains(g.Email, "@")
	case ChannelChat, ChannelMMS:
		return digitCount(g.Phone) >= minPhoneDigits
	}
	return false
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
