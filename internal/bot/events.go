package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type EventKind int

const (
	EventIgnored EventKind = iota
	EventVoice
	EventVideo
	EventVideoNote
	EventVideoChatStarted
	EventPointsQuery
	EventTopQuery
	EventAddPoints
	EventChatID
	EventAnnounce
)

func (k EventKind) String() string {
	switch k {
	case EventVoice:
		return "voice"
	case EventVideo:
		return "video"
	case EventVideoNote:
		return "video_note"
	case EventVideoChatStarted:
		return "video_chat_started"
	case EventPointsQuery:
		return "speakpoints"
	case EventTopQuery:
		return "top"
	case EventAddPoints:
		return "addpoints"
	case EventChatID:
		return "chatid"
	case EventAnnounce:
		return "announce"
	default:
		return "ignored"
	}
}

// Event is the platform-independent view of an incoming message.
type Event struct {
	Kind     EventKind
	ChatID   int64
	UserID   int64
	Name     string
	Duration int
	Args     string
}

// Classify maps a Telegram message to an Event. Messages without a sender
// are ignored.
func Classify(msg *Message) Event {
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return Event{Kind: EventIgnored}
	}
	ev := Event{
		ChatID: msg.Chat.ID,
		UserID: msg.From.ID,
		Name:   displayName(msg.From),
	}
	switch {
	case msg.Voice != nil:
		ev.Kind = EventVoice
		ev.Duration = msg.Voice.Duration
	case msg.Video != nil:
		ev.Kind = EventVideo
		ev.Duration = msg.Video.Duration
	case msg.VideoNote != nil:
		ev.Kind = EventVideoNote
		ev.Duration = msg.VideoNote.Duration
	case msg.videoChatStarted():
		ev.Kind = EventVideoChatStarted
	case msg.IsCommand():
		ev.Kind = commandKind(msg.Command())
		ev.Args = strings.TrimSpace(msg.CommandArguments())
	case msg.Text != "":
		ev.Kind = textKind(msg.Text)
	}
	return ev
}

func commandKind(cmd string) EventKind {
	switch strings.ToLower(cmd) {
	case "addpoints":
		return EventAddPoints
	case "chatid":
		return EventChatID
	case "announce":
		return EventAnnounce
	case "speakpoints":
		return EventPointsQuery
	case "top":
		return EventTopQuery
	}
	return EventIgnored
}

func textKind(text string) EventKind {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "speakpoints":
		return EventPointsQuery
	case "top":
		return EventTopQuery
	}
	return EventIgnored
}

// displayName prefers the handle and falls back to the first name.
func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return u.FirstName
}
