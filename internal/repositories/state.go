package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"media-approve/internal/chat"
	"media-approve/internal/models"
	"media-approve/pkg/botErrors"
	rdb "media-approve/pkg/db/redis"
)

const (
	dialogPrefix   = "deny_dialog:"
	cooldownPrefix = "submit_cooldown:"
	ledgerPrefix   = "review_resolved:"
)

// DenyDialog is an open request for a denial reason.
type DenyDialog struct {
	Ref  chat.MessageRef `json:"ref"`
	Text string          `json:"text"`
}

// DialogRepository keeps one open deny dialog per reviewer.
type DialogRepository struct {
	store *rdb.Store
	ttl   time.Duration
}

func NewDialogRepository(store *rdb.Store, ttl time.Duration) *DialogRepository {
	return &DialogRepository{store: store, ttl: ttl}
}

// Open replaces any dialog the reviewer already had.
func (r *DialogRepository) Open(ctx context.Context, reviewerID string, d DenyDialog) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return r.store.SetValue(ctx, dialogPrefix+reviewerID, string(raw), r.ttl)
}

func (r *DialogRepository) Get(ctx context.Context, reviewerID string) (*DenyDialog, error) {
	raw, err := r.store.GetValue(ctx, dialogPrefix+reviewerID)
	return decodeDialog(raw, err)
}

// Take closes the reviewer's dialog and returns what it held.
func (r *DialogRepository) Take(ctx context.Context, reviewerID string) (*DenyDialog, error) {
	raw, err := r.store.Take(ctx, dialogPrefix+reviewerID)
	return decodeDialog(raw, err)
}

func decodeDialog(raw string, err error) (*DenyDialog, error) {
	if errors.Is(err, rdb.ErrNotFound) {
		return nil, botErrors.ErrNoDialog
	}
	if err != nil {
		return nil, err
	}
	var d DenyDialog
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode dialog: %w", err)
	}
	return &d, nil
}

func (r *DialogRepository) Close(ctx context.Context, reviewerID string) error {
	return r.store.Delete(ctx, dialogPrefix+reviewerID)
}

// CooldownRepository rate limits submissions per user.
type CooldownRepository struct {
	store  *rdb.Store
	period time.Duration
}

func NewCooldownRepository(store *rdb.Store, period time.Duration) *CooldownRepository {
	return &CooldownRepository{store: store, period: period}
}

// Acquire starts a cooldown for userID. When one is already running it returns
// false and the time left.
func (r *CooldownRepository) Acquire(ctx context.Context, userID string) (bool, time.Duration, error) {
	if r.period <= 0 {
		return true, 0, nil
	}
	key := cooldownPrefix + userID
	ok, err := r.store.SetIfAbsent(ctx, key, "1", r.period)
	if err != nil || ok {
		return ok, 0, err
	}
	left, err := r.store.TTL(ctx, key)
	if err != nil {
		return false, 0, err
	}
	if left < 0 {
		left = r.period
	}
	return false, left, nil
}

// Release lets a user retry at once after a submission that produced nothing.
func (r *CooldownRepository) Release(ctx context.Context, userID string) error {
	return r.store.Delete(ctx, cooldownPrefix+userID)
}

// LedgerRepository remembers resolved review messages so a stale view cannot be
// decided twice.
type LedgerRepository struct {
	store *rdb.Store
	ttl   time.Duration
}

func NewLedgerRepository(store *rdb.Store, ttl time.Duration) *LedgerRepository {
	return &LedgerRepository{store: store, ttl: ttl}
}

func (r *LedgerRepository) key(ref chat.MessageRef) string {
	return ledgerPrefix + ref.ChatID + ":" + ref.MessageID
}

func (r *LedgerRepository) MarkResolved(ctx context.Context, ref chat.MessageRef, status models.ReviewStatus) error {
	return r.store.SetValue(ctx, r.key(ref), string(status), r.ttl)
}

// Resolution returns the recorded status, or "" when the message was never resolved.
func (r *LedgerRepository) Resolution(ctx context.Context, ref chat.MessageRef) (models.ReviewStatus, error) {
	v, err := r.store.GetValue(ctx, r.key(ref))
	if errors.Is(err, rdb.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return models.ReviewStatus(v), nil
}
