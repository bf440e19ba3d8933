package notifier

import (
	"context"
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"media-approve/internal/chat"
	"media-approve/internal/models"
)

type notice struct{ user, text string }

type recordingSender struct {
	notices []notice
	fail    bool
}

func (s *recordingSender) Send(context.Context, string, string, *chat.Controls) (string, error) {
	return "", nil
}

func (s *recordingSender) Edit(context.Context, chat.MessageRef, string, *chat.Controls) error {
	return nil
}

func (s *recordingSender) Notify(_ context.Context, userID, text string) error {
	if s.fail {
		return errors.New("down")
	}
	s.notices = append(s.notices, notice{userID, text})
	return nil
}

func TestSendApproved(t *testing.T) {
	s := &recordingSender{}
	n := New(s)
	sub := models.PendingSubmission{SubmitterID: "sub@example.org", TicketNumber: "42"}

	n.SendApproved(context.Background(), sub, "rev@example.org", 3)
	require.Len(t, s.notices, 1)
	require.Equal(t, "sub@example.org", s.notices[0].user)
	require.Equal(t, "✅ @[rev@example.org] approved your submission (3 file(s)) from ticket #42.", s.notices[0].text)
}

func TestSendDeniedSkipsSelfReview(t *testing.T) {
	s := &recordingSender{}
	n := New(s)
	sub := models.PendingSubmission{SubmitterID: "rev@example.org"}

	n.SendDenied(context.Background(), sub, "rev@example.org", "blurry")
	require.Empty(t, s.notices)

	sub.SubmitterID = "sub@example.org"
	n.SendDenied(context.Background(), sub, "rev@example.org", "blurry")
	require.Contains(t, s.notices[0].text, "Reason: blurry")
}

func TestSendFailureIsLogged(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	s := &recordingSender{fail: true}

	New(s).SendDenied(context.Background(), models.PendingSubmission{SubmitterID: "a"}, "b", "reason")
	require.Empty(t, s.notices)
	require.NotNil(t, hook.LastEntry())
	require.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	require.Equal(t, "submitter notice failed", hook.LastEntry().Message)
}
