package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"speakpoints-bot/internal/ledger"
	"speakpoints-bot/pkg/store"
)

const (
	voicePoints     = 1
	videoPoints     = 2
	videoChatPoints = 5
	leaderboardSize = 10
)

var medals = []string{"🥇", "🥈", "🥉"}

// Response is what the bot sends back for one event. An empty Text means
// no reply. Announce, when set, goes to AnnounceChatID instead of the
// originating chat.
type Response struct {
	Text           string
	Announce       string
	AnnounceChatID int64
}

// Policy decides whether and how much to credit for each event.
type Policy struct {
	keeper         *store.Keeper
	privileges     PrivilegeChecker
	minDuration    int
	exemptAdmins   bool
	announceChatID int64
}

func NewPolicy(cfg *Config, keeper *store.Keeper, privileges PrivilegeChecker) *Policy {
	return &Policy{
		keeper:         keeper,
		privileges:     privileges,
		minDuration:    cfg.MinDuration,
		exemptAdmins:   cfg.ExemptAdmins,
		announceChatID: cfg.AnnounceChatID,
	}
}

func (p *Policy) Handle(ctx context.Context, ev Event) (Response, error) {
	switch ev.Kind {
	case EventVoice:
		return p.credit(ctx, ev, voicePoints)
	case EventVideo, EventVideoNote:
		return p.credit(ctx, ev, videoPoints)
	case EventVideoChatStarted:
		return p.credit(ctx, ev, videoChatPoints)
	case EventPointsQuery:
		return p.points(ctx, ev)
	case EventTopQuery:
		return p.top(ctx)
	case EventAddPoints:
		return p.addPoints(ctx, ev)
	case EventChatID:
		return Response{Text: fmt.Sprintf("Chat ID: %d", ev.ChatID)}, nil
	case EventAnnounce:
		return p.announce(ctx, ev)
	}
	return Response{}, nil
}

func (p *Policy) credit(ctx context.Context, ev Event, amount int) (Response, error) {
	if p.exemptAdmins && p.isPrivileged(ctx, ev) {
		return Response{}, nil
	}
	if ev.Kind != EventVideoChatStarted && ev.Duration < p.minDuration {
		return Response{Text: tooShortText(ev, p.minDuration)}, nil
	}

	userID := strconv.FormatInt(ev.UserID, 10)
	var total int
	err := p.keeper.Update(ctx, func(l *ledger.Ledger) error {
		l.GetOrCreate(userID, ev.Name)
		r, err := l.AddPoints(userID, amount)
		if err != nil {
			return err
		}
		total = r.Points
		return nil
	})
	if err != nil {
		return Response{}, fmt.Errorf("credit %s: %w", ev.Kind, err)
	}
	return Response{Text: creditText(ev, amount, total)}, nil
}

func (p *Policy) points(ctx context.Context, ev Event) (Response, error) {
	userID := strconv.FormatInt(ev.UserID, 10)
	var text string
	err := p.keeper.View(ctx, func(l *ledger.Ledger) error {
		r, ok := l.Get(userID)
		if !ok {
			text = "You have 0 SpeakPoints."
			return nil
		}
		text = fmt.Sprintf("🏆 %s, you have %d SpeakPoints.", mention(ev.Name, userID), r.Points)
		return nil
	})
	if err != nil {
		return Response{}, fmt.Errorf("speakpoints: %w", err)
	}
	return Response{Text: text}, nil
}

func (p *Policy) top(ctx context.Context) (Response, error) {
	var standings []ledger.Standing
	err := p.keeper.View(ctx, func(l *ledger.Ledger) error {
		standings = l.Top(leaderboardSize)
		return nil
	})
	if err != nil {
		return Response{}, fmt.Errorf("top: %w", err)
	}
	return Response{Text: leaderboardText(standings)}, nil
}

func (p *Policy) addPoints(ctx context.Context, ev Event) (Response, error) {
	if !p.isPrivileged(ctx, ev) {
		return Response{Text: "⛔ Only chat admins can adjust SpeakPoints."}, nil
	}
	const usage = "Usage: /addpoints <name> <amount>"
	args := strings.Fields(ev.Args)
	if len(args) != 2 {
		return Response{Text: usage}, nil
	}
	amount, err := strconv.Atoi(args[1])
	if err != nil {
		return Response{Text: usage}, nil
	}

	var target ledger.UserRecord
	err = p.keeper.Update(ctx, func(l *ledger.Ledger) error {
		r, err := l.FindByName(args[0])
		if err != nil {
			return err
		}
		r, err = l.AddPoints(r.UserID, amount)
		if err != nil {
			return err
		}
		target = *r
		return nil
	})
	if errors.Is(err, ledger.ErrUserNotFound) {
		return Response{Text: fmt.Sprintf("User %s not found.", args[0])}, nil
	}
	if err != nil {
		return Response{}, fmt.Errorf("addpoints: %w", err)
	}
	return Response{Text: fmt.Sprintf("✅ %s now has %d SpeakPoints (%+d).", mention(target.Name, target.UserID), target.Points, amount)}, nil
}

func (p *Policy) announce(ctx context.Context, ev Event) (Response, error) {
	if !p.isPrivileged(ctx, ev) {
		return Response{Text: "⛔ Only chat admins can send announcements."}, nil
	}
	if p.announceChatID == 0 {
		return Response{Text: "Announcements are not configured."}, nil
	}
	if ev.Args == "" {
		return Response{Text: "Usage: /announce <text>"}, nil
	}
	return Response{
		Text:           "📣 Announcement sent.",
		Announce:       ev.Args,
		AnnounceChatID: p.announceChatID,
	}, nil
}

// isPrivileged denies on lookup errors.
func (p *Policy) isPrivileged(ctx context.Context, ev Event) bool {
	if p.privileges == nil {
		return false
	}
	ok, err := p.privileges.IsPrivileged(ctx, ev.ChatID, ev.UserID)
	if err != nil {
		log.Printf("privilege check error for user %d in chat %d: %v", ev.UserID, ev.ChatID, err)
		return false
	}
	return ok
}

func mention(name, userID string) string {
	if name == "" {
		return "user " + userID
	}
	return "@" + name
}

func tooShortText(ev Event, minDuration int) string {
	who := mention(ev.Name, strconv.FormatInt(ev.UserID, 10))
	if ev.Kind == EventVoice {
		return fmt.Sprintf("🎤 %s, your voice is less than %d seconds.\nPlease expand your answer.", who, minDuration)
	}
	return fmt.Sprintf("🎥 %s, your video is less than %d seconds.\nPlease expand your answer.", who, minDuration)
}

func creditText(ev Event, amount, total int) string {
	who := mention(ev.Name, strconv.FormatInt(ev.UserID, 10))
	switch ev.Kind {
	case EventVoice:
		return fmt.Sprintf("👏 Very good, %s +%d SpeakPoint\nTotal: %d SpeakPoints", who, amount, total)
	case EventVideoChatStarted:
		return fmt.Sprintf("🎥 %s joined the video chat, awesome! +%d SpeakPoints\nTotal: %d SpeakPoints", who, amount, total)
	default:
		return fmt.Sprintf("🔥 Excellent, %s +%d SpeakPoints\nTotal: %d SpeakPoints", who, amount, total)
	}
}

func leaderboardText(standings []ledger.Standing) string {
	if len(standings) == 0 {
		return "No SpeakPoints yet."
	}
	var b strings.Builder
	b.WriteString("🏆 Leaderboard:\n\n")
	for _, s := range standings {
		marker := fmt.Sprintf("%d.", s.Rank)
		if s.Rank <= len(medals) {
			marker = medals[s.Rank-1]
		}
		fmt.Fprintf(&b, "%s %s — %d SpeakPoints\n", marker, mention(s.Record.Name, s.Record.UserID), s.Record.Points)
	}
	return b.String()
}
