package callbacks

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"media-approve/internal/chat"
	"media-approve/internal/models"
	"media-approve/internal/repositories"
	"media-approve/internal/services"
	"media-approve/pkg/botErrors"
)

type fakeReviews struct {
	onApprove  func()
	approveErr error
	denyErr    error
	checkErr   error
	approved   []bool
	denied     []string
}

func (f *fakeReviews) Approve(_ context.Context, in services.Interaction, mirror bool) (*services.ApprovalOutcome, error) {
	if f.onApprove != nil {
		f.onApprove()
	}
	if f.approveErr != nil {
		return nil, f.approveErr
	}
	f.approved = append(f.approved, mirror)
	return &services.ApprovalOutcome{Submission: models.PendingSubmission{SubmitterID: "sub@example.org"}, Recorded: 2}, nil
}

func (f *fakeReviews) CheckDeny(context.Context, services.Interaction) error {
	return f.checkErr
}

func (f *fakeReviews) Deny(_ context.Context, in services.Interaction, reason string) (*services.DenialOutcome, error) {
	if f.denyErr != nil {
		return nil, f.denyErr
	}
	f.denied = append(f.denied, in.Ref.MessageID+":"+reason)
	return &services.DenialOutcome{Submission: models.PendingSubmission{SubmitterID: "sub@example.org"}, Reason: reason}, nil
}

type memDialogs struct {
	mu   sync.Mutex
	open map[string]repositories.DenyDialog
}

func (d *memDialogs) Open(_ context.Context, id string, dlg repositories.DenyDialog) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open[id] = dlg
	return nil
}

func (d *memDialogs) Get(_ context.Context, id string) (*repositories.DenyDialog, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dlg, ok := d.open[id]
	if !ok {
		return nil, botErrors.ErrNoDialog
	}
	return &dlg, nil
}

func (d *memDialogs) Take(ctx context.Context, id string) (*repositories.DenyDialog, error) {
	dlg, err := d.Get(ctx, id)
	if err == nil {
		_ = d.Close(ctx, id)
	}
	return dlg, err
}

func (d *memDialogs) Close(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.open, id)
	return nil
}

type fakeOutput struct {
	answers []string
	notices []string
	sent    []string
	cancel  []bool
}

func (o *fakeOutput) Answer(_ context.Context, _, text string) error {
	o.answers = append(o.answers, text)
	return nil
}

func (o *fakeOutput) Send(_ context.Context, chatID, text string, c *chat.Controls) (string, error) {
	o.sent = append(o.sent, chatID+":"+text)
	o.cancel = append(o.cancel, c != nil && c.DenyCancel)
	return "prompt-1", nil
}

func (o *fakeOutput) Edit(context.Context, chat.MessageRef, string, *chat.Controls) error {
	return nil
}

func (o *fakeOutput) Notify(_ context.Context, userID, text string) error {
	o.notices = append(o.notices, userID+":"+text)
	return nil
}

type fakeNotifier struct {
	approved, denied int
}

func (n *fakeNotifier) SendApproved(context.Context, models.PendingSubmission, string, int) {
	n.approved++
}

func (n *fakeNotifier) SendDenied(context.Context, models.PendingSubmission, string, string) {
	n.denied++
}

type fixture struct {
	h        *Handler
	reviews  *fakeReviews
	dialogs  *memDialogs
	out      *fakeOutput
	notifier *fakeNotifier
}

func newFixture() *fixture {
	f := &fixture{
		reviews:  &fakeReviews{},
		dialogs:  &memDialogs{open: map[string]repositories.DenyDialog{}},
		out:      &fakeOutput{},
		notifier: &fakeNotifier{},
	}
	f.h = NewHandler(Config{DenyReasonMin: 5, DenyReasonMax: 1000, DialogTTL: "5 minutes"}, f.reviews, f.dialogs, f.out, f.out, f.notifier)
	return f
}

var reviewer = chat.User{ID: "rev@example.org"}

func press(data string) chat.Callback {
	return chat.Callback{
		QueryID: "q1",
		From:    reviewer,
		Data:    data,
		Ref:     chat.MessageRef{ChatID: "review@chat.agent", MessageID: "m1"},
		Text:    "body",
	}
}

func TestApproveButtons(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.h.Handle(ctx, press(chat.DataApprove))
	f.h.Handle(ctx, press(chat.DataApproveSkipGallery))

	require.Equal(t, []bool{true, false}, f.reviews.approved)
	require.Equal(t, 2, f.notifier.approved)
	require.Equal(t, []string{"Approving…", "Approving…"}, f.out.answers)
	require.Len(t, f.out.notices, 2)
}

func TestApproveAcknowledgedBeforeWork(t *testing.T) {
	f := newFixture()
	f.reviews.onApprove = func() {
		require.Equal(t, []string{"Approving…"}, f.out.answers)
	}
	f.h.Handle(context.Background(), press(chat.DataApprove))
	require.Len(t, f.reviews.approved, 1)
}

func TestApproveErrorIsReportedPrivately(t *testing.T) {
	f := newFixture()
	f.reviews.approveErr = botErrors.ErrNoAccess

	f.h.Handle(context.Background(), press(chat.DataApprove))
	require.Equal(t, []string{"Approving…"}, f.out.answers)
	require.Equal(t, []string{"rev@example.org:You do not have permission to do this."}, f.out.notices)
	require.Zero(t, f.notifier.approved)
}

func TestDenyDialogFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.h.Handle(ctx, press(chat.DataDeny))
	require.Len(t, f.out.sent, 1)
	require.Equal(t, []bool{true}, f.out.cancel)

	f.reviews.denyErr = fmt.Errorf("%w: need more", botErrors.ErrReasonTooShort)
	require.True(t, f.h.CompleteDeny(ctx, reviewer, "no"))
	_, err := f.dialogs.Get(ctx, reviewer.ID)
	require.NoError(t, err, "dialog stays open after a short reason")

	f.reviews.denyErr = nil
	require.True(t, f.h.CompleteDeny(ctx, reviewer, "out of focus"))
	require.Equal(t, []string{"m1:out of focus"}, f.reviews.denied)
	require.Equal(t, 1, f.notifier.denied)

	require.False(t, f.h.CompleteDeny(ctx, reviewer, "anything"))
}

func TestDenyRefusedDoesNotOpenDialog(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.reviews.checkErr = botErrors.ErrAlreadyProcessed

	f.h.Handle(ctx, press(chat.DataDeny))
	require.Equal(t, []string{"This request has already been processed."}, f.out.answers)
	require.False(t, f.h.CompleteDeny(ctx, reviewer, "too late now"))
}

func TestDenyCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.h.Handle(ctx, press(chat.DataDenyCancel))
	require.Equal(t, "There is no denial waiting for a reason.", f.out.answers[0])

	f.h.Handle(ctx, press(chat.DataDeny))
	f.h.Handle(ctx, press(chat.DataDenyCancel))
	require.False(t, f.h.CompleteDeny(ctx, reviewer, "some reason"))
	require.Empty(t, f.reviews.denied)
}

func TestNoopAndUnknown(t *testing.T) {
	f := newFixture()
	f.h.Handle(context.Background(), press(chat.DataNoop))
	f.h.Handle(context.Background(), press("/whatever"))
	require.Equal(t, []string{"This option is disabled.", ""}, f.out.answers)
}
