// internal/guests/guest.go
package guests

// Channel identifies how a guest is reached.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelChat  Channel = "chat"
	ChannelMMS   Channel = "mms"
)

// IsValid reports whether c names a supported delivery channel.
func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelChat, ChannelMMS:
		return true
	}
	return false
}

// Guest is one entry of the event guest list. Valid is the upstream
// eligibility flag and is independent of whether the contact field is
// well-formed for a given channel.
type Guest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email,omitempty"`
	Phone    string  `json:"phone,omitempty"`
	Location string  `json:"location,omitempty"`
	Date     string  `json:"date,omitempty"`
	Time     string  `json:"time,omitempty"`
	Channel  Channel `json:"channel,omitempty"`
	Valid    bool    `json:"valid"`
}
