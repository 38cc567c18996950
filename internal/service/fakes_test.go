package service

import (
	"context"
	"sync"

	"github.com/alonebown/crewdesk/internal/chat"
)

// fakeMessenger records outgoing traffic for assertions. Setting directErr
// makes every direct delivery fail, standing in for a user who blocked the
// bot.
type fakeMessenger struct {
	mu        sync.Mutex
	directs   map[int64][]string
	sent      map[int64][]string
	posts     []buttonPost
	nextID    int
	directErr error
}

type buttonPost struct {
	chatID int64
	text   string
	rows   [][]chat.Button
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		directs: make(map[int64][]string),
		sent:    make(map[int64][]string),
	}
}

func (f *fakeMessenger) SendDirect(ctx context.Context, userID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.directErr != nil {
		return f.directErr
	}
	f.directs[userID] = append(f.directs[userID], text)
	return nil
}

func (f *fakeMessenger) Send(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[chatID] = append(f.sent[chatID], text)
	return nil
}

func (f *fakeMessenger) SendWithButtons(ctx context.Context, chatID int64, text string, rows [][]chat.Button) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.posts = append(f.posts, buttonPost{chatID: chatID, text: text, rows: rows})
	return f.nextID, nil
}

func (f *fakeMessenger) EditButtons(ctx context.Context, chatID int64, messageID int, text string, rows [][]chat.Button) error {
	return nil
}

func (f *fakeMessenger) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return nil
}

func (f *fakeMessenger) lastPost() (buttonPost, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.posts) == 0 {
		return buttonPost{}, false
	}
	return f.posts[len(f.posts)-1], true
}

func (f *fakeMessenger) directTexts(userID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.directs[userID]))
	copy(out, f.directs[userID])
	return out
}

// fakeDownloader serves fixed bytes for any URL and records what was fetched.
type fakeDownloader struct {
	mu        sync.Mutex
	data      []byte
	requested []string
}

func (f *fakeDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, url)
	return f.data, nil
}

func (f *fakeDownloader) urls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requested))
	copy(out, f.requested)
	return out
}

// fakeDirectory serves a static member list.
type fakeDirectory struct {
	members []chat.Member
	err     error
}

func (f *fakeDirectory) Members(ctx context.Context, chatID int64) ([]chat.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.members, nil
}
