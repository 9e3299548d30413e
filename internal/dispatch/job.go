// internal/dispatch/job.go
package dispatch

import (
	"sync"
	"time"

	"card-dispatch/internal/composer"
	"card-dispatch/internal/guests"
)

// State is the lifecycle state of one message. sent, failed and cancelled are
// terminal; a message never leaves a terminal state.
type State string

const (
	StatePending   State = "pending"
	StateSent      State = "sent"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == StateSent || s == StateFailed || s == StateCancelled
}

// MessageStatus is the externally visible state of one message.
type MessageStatus struct {
	ID                string         `json:"id"`
	GuestID           string         `json:"guestId"`
	GuestName         string         `json:"guestName"`
	To                string         `json:"to"`
	Channel           guests.Channel `json:"channel"`
	Status            State          `json:"status"`
	Error             string         `json:"error,omitempty"`
	ErrorCode         string         `json:"errorCode,omitempty"`
	ProviderMessageID string         `json:"providerMessageId,omitempty"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// Summary is the externally visible state of one job. The per-state counts
// always sum to Total.
type Summary struct {
	JobID           string          `json:"jobId"`
	Channel         guests.Channel  `json:"channel"`
	Total           int             `json:"total"`
	Sent            int             `json:"sent"`
	Failed          int             `json:"failed"`
	Pending         int             `json:"pending"`
	Cancelled       int             `json:"cancelled"`
	Done            bool            `json:"done"`
	PartialDelivery bool            `json:"partialDelivery"`
	Messages        []MessageStatus `json:"messages"`
	CreatedAt       time.Time       `json:"createdAt"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
}

// message is one unit of work. claimed marks that a worker has picked it up
// and a cancel can no longer win the race for it.
type message struct {
	id       string
	guest    guests.Guest
	to       string
	rendered composer.Rendered

	state      State
	claimed    bool
	errMsg     string
	errCode    string
	providerID string
	updatedAt  time.Time
}

// job owns its messages. All state transitions happen under mu; workers and
// the public API never touch a message without it.
type job struct {
	mu sync.Mutex

	id        string
	channel   guests.Channel
	request   composer.Request
	messages  []*message
	createdAt time.Time

	terminal    int
	completedAt *time.Time
}

// claim marks m in-flight if it is still pending. Returns false when the
// message was cancelled or already handled.
func (j *job) claim(m *message) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if m.state != StatePending || m.claimed {
		return false
	}
	m.claimed = true
	return true
}

// finish moves a claimed message to its terminal state. Returns true when
// this was the job's last open message.
func (j *job) finish(m *message, state State, errMsg, errCode, providerID string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if m.state.Terminal() {
		return false
	}
	m.state = state
	m.errMsg = errMsg
	m.errCode = errCode
	m.providerID = providerID
	m.updatedAt = time.Now().UTC()

	j.terminal++
	if j.terminal == len(j.messages) {
		now := time.Now().UTC()
		j.completedAt = &now
		return true
	}
	return false
}

// cancelPending flips every unclaimed pending message to cancelled and
// returns how many it cancelled plus whether the job just completed.
func (j *job) cancelPending() (int, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	cancelled := 0
	now := time.Now().UTC()
	for _, m := range j.messages {
		if m.state == StatePending && !m.claimed {
			m.state = StateCancelled
			m.updatedAt = now
			j.terminal++
			cancelled++
		}
	}

	done := false
	if j.terminal == len(j.messages) && j.completedAt == nil {
		j.completedAt = &now
		done = true
	}
	return cancelled, done
}

// failedGuests returns the recipients of failed messages in job order.
func (j *job) failedGuests() []guests.Guest {
	j.mu.Lock()
	defer j.mu.Unlock()

	var out []guests.Guest
	for _, m := range j.messages {
		if m.state == StateFailed {
			out = append(out, m.guest)
		}
	}
	return out
}

// summaryOf snapshots a single message under the job lock.
func (j *job) summaryOf(m *message) MessageStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return MessageStatus{
		ID:                m.id,
		GuestID:           m.guest.ID,
		GuestName:         m.guest.Name,
		To:                m.to,
		Channel:           j.channel,
		Status:            m.state,
		Error:             m.errMsg,
		ErrorCode:         m.errCode,
		ProviderMessageID: m.providerID,
		UpdatedAt:         m.updatedAt,
	}
}

// summary snapshots the job under its lock.
func (j *job) summary() Summary {
	j.mu.Lock()
	defer j.mu.Unlock()

	s := Summary{
		JobID:       j.id,
		Channel:     j.channel,
		Total:       len(j.messages),
		Messages:    make([]MessageStatus, 0, len(j.messages)),
		CreatedAt:   j.createdAt,
		CompletedAt: j.completedAt,
	}

	for _, m := range j.messages {
		switch m.state {
		case StateSent:
			s.Sent++
		case StateFailed:
			s.Failed++
		case StateCancelled:
			s.Cancelled++
		default:
			s.Pending++
		}
		s.Messages = append(s.Messages, MessageStatus{
			ID:                m.id,
			GuestID:           m.guest.ID,
			GuestName:         m.guest.Name,
			To:                m.to,
			Channel:           j.channel,
			Status:            m.state,
			Error:             m.errMsg,
			ErrorCode:         m.errCode,
			ProviderMessageID: m.providerID,
			UpdatedAt:         m.updatedAt,
		})
	}

	s.Done = s.Pending == 0
	s.PartialDelivery = s.Done && s.Sent > 0 && s.Failed > 0
	return s
}
