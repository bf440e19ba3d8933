package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"media-approve/internal/chat"
	"media-approve/internal/models"
	"media-approve/internal/services/gallery"
	"media-approve/pkg/botErrors"
)

type fakeStore struct {
	mu        sync.Mutex
	approved  map[string]models.ApprovedMedia
	stats     map[string]int64
	failURL   map[string]bool
	records   int
	increment int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		approved: map[string]models.ApprovedMedia{},
		stats:    map[string]int64{},
		failURL:  map[string]bool{},
	}
}

func (s *fakeStore) IsApproved(_ context.Context, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.approved[url]
	return ok
}

func (s *fakeStore) RecordApproval(_ context.Context, url, src, review, approver string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records++
	if s.failURL[url] {
		return fmt.Errorf("%w: injected", botErrors.ErrStorage)
	}
	if _, ok := s.approved[url]; !ok {
		s.approved[url] = models.ApprovedMedia{URL: url, OriginalMessageID: src, PendingMessageID: review, ApproverID: approver}
	}
	return nil
}

func (s *fakeStore) IncrementStat(_ context.Context, userID string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if count <= 0 {
		return nil
	}
	s.increment++
	s.stats[userID] += int64(count)
	return nil
}

type sentMessage struct {
	ChatID   string
	ID       string
	Text     string
	Controls *chat.Controls
}

type fakeSender struct {
	mu       sync.Mutex
	seq      int
	messages map[string]*sentMessage
	notices  map[string][]string
	edits    int
	failEdit bool
	failSend bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{messages: map[string]*sentMessage{}, notices: map[string][]string{}}
}

func (f *fakeSender) Send(_ context.Context, chatID, text string, controls *chat.Controls) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return "", fmt.Errorf("%w: injected", botErrors.ErrDelivery)
	}
	f.seq++
	id := strconv.Itoa(f.seq)
	f.messages[id] = &sentMessage{ChatID: chatID, ID: id, Text: text, Controls: controls}
	return id, nil
}

func (f *fakeSender) Edit(_ context.Context, ref chat.MessageRef, text string, controls *chat.Controls) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEdit {
		return fmt.Errorf("%w: injected", botErrors.ErrDelivery)
	}
	f.edits++
	m, ok := f.messages[ref.MessageID]
	if !ok {
		m = &sentMessage{ChatID: ref.ChatID, ID: ref.MessageID}
		f.messages[ref.MessageID] = m
	}
	m.Text, m.Controls = text, controls
	return nil
}

func (f *fakeSender) Notify(_ context.Context, userID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices[userID] = append(f.notices[userID], text)
	return nil
}

func (f *fakeSender) message(id string) sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.messages[id]
}

type fakeDirectory struct {
	mu      sync.Mutex
	members map[string]map[string]bool
	calls   int
}

func (d *fakeDirectory) add(group string, users ...string) {
	if d.members == nil {
		d.members = map[string]map[string]bool{}
	}
	if d.members[group] == nil {
		d.members[group] = map[string]bool{}
	}
	for _, u := range users {
		d.members[group][u] = true
	}
}

func (d *fakeDirectory) IsMember(_ context.Context, group, user string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return d.members[group][user], nil
}

type fakeUploader struct {
	mu      sync.Mutex
	results map[string]bool
	panics  map[string]bool
	calls   []gallery.Item
	delay   time.Duration
}

func (u *fakeUploader) Upload(_ context.Context, item gallery.Item) gallery.Result {
	u.mu.Lock()
	u.calls = append(u.calls, item)
	ok := u.results[item.URL]
	boom := u.panics[item.URL]
	delay := u.delay
	u.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if boom {
		panic("uploader exploded")
	}
	if ok {
		return gallery.Result{OK: true, Detail: "imported"}
	}
	return gallery.Result{Detail: "both phases failed", Err: botErrors.ErrGalleryConnection}
}

func (u *fakeUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.calls)
}

type fakeCooldown struct {
	busy map[string]bool
}

func (c *fakeCooldown) Acquire(_ context.Context, userID string) (bool, time.Duration, error) {
	if c.busy == nil {
		c.busy = map[string]bool{}
	}
	if c.busy[userID] {
		return false, 7 * time.Second, nil
	}
	c.busy[userID] = true
	return true, 0, nil
}

func (c *fakeCooldown) Release(_ context.Context, userID string) error {
	delete(c.busy, userID)
	return nil
}

type fakeLedger struct {
	mu       sync.Mutex
	resolved map[chat.MessageRef]models.ReviewStatus
}

func (l *fakeLedger) MarkResolved(_ context.Context, ref chat.MessageRef, status models.ReviewStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.resolved == nil {
		l.resolved = map[chat.MessageRef]models.ReviewStatus{}
	}
	l.resolved[ref] = status
	return nil
}

func (l *fakeLedger) Resolution(_ context.Context, ref chat.MessageRef) (models.ReviewStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resolved[ref], nil
}
