package session

// EventKind names the mutation that produced an event.
type EventKind string

const (
	EventSubscribed       EventKind = "subscribed"
	EventJobSelected      EventKind = "job_selected"
	EventFilesUploaded    EventKind = "files_uploaded"
	EventFileSelected     EventKind = "file_selected"
	EventAnalysisFinished EventKind = "analysis_finished"
	EventChatSent         EventKind = "chat_sent"
	EventChatReplied      EventKind = "chat_replied"
)

// Event is a state-changed notification carrying the resulting snapshot.
type Event struct {
	Kind  EventKind
	State State
}

// deliver replaces any unread event in ch with ev. Only the owner goroutine
// sends, so after draining there is room.
func deliver(ch chan Event, ev Event) {
	select {
	case ch <- ev:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- ev:
	default:
	}
}
