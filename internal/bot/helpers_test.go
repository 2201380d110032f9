package bot

import (
	"context"
	"strings"
	"testing"

	"speakpoints-bot/internal/ledger"
	"speakpoints-bot/pkg/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const testChatID int64 = -1001

type fakePrivileges struct {
	admins map[int64]bool
	err    error
	calls  int
}

func (f *fakePrivileges) IsPrivileged(ctx context.Context, chatID, userID int64) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.admins[userID], nil
}

func testConfig() *Config {
	return &Config{MinDuration: 20, AdminIDs: map[int64]bool{}}
}

func testPolicy(cfg *Config, priv PrivilegeChecker) (*Policy, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewPolicy(cfg, store.NewKeeper(st), priv), st
}

func seedLedger(t *testing.T, st *store.MemoryStore, records ...ledger.UserRecord) {
	t.Helper()
	l := ledger.New()
	for _, r := range records {
		l.GetOrCreate(r.UserID, r.Name).Points = r.Points
	}
	if err := st.Save(context.Background(), l); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}
}

func loadLedger(t *testing.T, st store.Store) *ledger.Ledger {
	t.Helper()
	l, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	return l
}

func user(id int64, username, first string) *tgbotapi.User {
	return &tgbotapi.User{ID: id, UserName: username, FirstName: first}
}

func baseMsg(from *tgbotapi.User) *Message {
	return &Message{Message: tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: testChatID}, From: from}}
}

func voiceMsg(from *tgbotapi.User, seconds int) *Message {
	m := baseMsg(from)
	m.Voice = &tgbotapi.Voice{Duration: seconds}
	return m
}

func videoMsg(from *tgbotapi.User, seconds int) *Message {
	m := baseMsg(from)
	m.Video = &tgbotapi.Video{Duration: seconds}
	return m
}

func videoNoteMsg(from *tgbotapi.User, seconds int) *Message {
	m := baseMsg(from)
	m.VideoNote = &tgbotapi.VideoNote{Duration: seconds}
	return m
}

func videoChatMsg(from *tgbotapi.User) *Message {
	m := baseMsg(from)
	m.VideoChatStarted = &struct{}{}
	return m
}

func voiceChatMsg(from *tgbotapi.User) *Message {
	m := baseMsg(from)
	m.VoiceChatStarted = &tgbotapi.VoiceChatStarted{}
	return m
}

func textMsg(from *tgbotapi.User, text string) *Message {
	m := baseMsg(from)
	m.Text = text
	return m
}

func commandMsg(from *tgbotapi.User, text string) *Message {
	m := textMsg(from, text)
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmdLen = i
	}
	m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	return m
}
