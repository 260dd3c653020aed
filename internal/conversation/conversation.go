// Package conversation drives the box-and-book dialogue: one finite state
// machine instance per chat, backed by the catalogue service.
package conversation

import (
	"boxbot/internal/catalog"
)

// State is a position in the cataloguing dialogue.
type State int

const (
	// StateSelectBox waits for the user to pick an existing box or ask
	// for a new one.
	StateSelectBox State = iota
	// StateAddBoxName waits for the name of the box to create.
	StateAddBoxName
	// StateCollectDescription waits for delimited book data or a barcode
	// photo.
	StateCollectDescription
	// StateCollectCover waits for a cover photo or /skip.
	StateCollectCover
	// StateCancelled ends the session.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateSelectBox:
		return "SELECT_BOX"
	case StateAddBoxName:
		return "ADD_BOX_NAME"
	case StateCollectDescription:
		return "COLLECT_DESCRIPTION"
	case StateCollectCover:
		return "COLLECT_COVER"
	case StateCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

// Session is one chat's transient dialogue state. Sessions are never
// shared across chats; the engine owns them behind its lock.
type Session struct {
	ChatID int64
	UserID int64
	State  State
	// Box is the active box books are filed into.
	Box catalog.Box
	// BookID refers to the book awaiting its cover.
	BookID int64
}

// Event is one inbound chat interaction, already stripped of transport
// details.
type Event struct {
	ChatID int64
	UserID int64
	// Command is the bare command name ("start", "cancel"), empty for
	// plain text or photo messages.
	Command string
	// Args is the raw argument string after the command.
	Args string
	Text string
	// Photo holds the downloaded attachment bytes.
	Photo []byte
	// PhotoFailed marks an attachment that was advertised but could not
	// be downloaded or decoded by the transport.
	PhotoFailed bool
}

// Reply is one outbound message for the transport to render.
type Reply struct {
	Text string
	// Keyboard offers one-time reply options when non-empty.
	Keyboard []string
	// RemoveKeyboard clears a previously offered keyboard.
	RemoveKeyboard bool
	Photo          []byte
}

// NewBoxCaption is the synthetic selection offered next to real box names.
const NewBoxCaption = "Add new box"
