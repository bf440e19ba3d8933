package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"media-approve/internal/chat"
	"media-approve/pkg/botErrors"
)

func attachments(n int, contentType string) []chat.Attachment {
	out := make([]chat.Attachment, n)
	for i := range out {
		out[i] = chat.Attachment{
			URL:         fmt.Sprintf("https://files.example.org/%s/%d", contentType, i),
			Filename:    fmt.Sprintf("file%d", i),
			ContentType: contentType,
		}
	}
	return out
}

func requireReason(t *testing.T, err error, reason botErrors.ValidationReason, skipped int) {
	t.Helper()
	var verr *botErrors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, reason, verr.Reason)
	require.Equal(t, skipped, verr.Skipped)
}

func TestValidateNoAttachments(t *testing.T) {
	v := NewValidator(newFakeStore(), 10)
	_, err := v.Validate(context.Background(), chat.Message{ID: "1"})
	requireReason(t, err, botErrors.NoAttachments, 0)
}

func TestValidateNoEligibleMedia(t *testing.T) {
	v := NewValidator(newFakeStore(), 10)
	msg := chat.Message{ID: "1", Attachments: append(attachments(2, "application/pdf"), attachments(1, "")...)}
	_, err := v.Validate(context.Background(), msg)
	requireReason(t, err, botErrors.NoEligibleMedia, 0)
	require.Equal(t, "No image/video attachments found.", err.Error())
}

func TestValidateAllAlreadyApproved(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	media := attachments(3, "image/jpeg")
	for _, a := range media {
		require.NoError(t, store.RecordApproval(ctx, a.URL, "src", "rev", "r"))
	}
	msg := chat.Message{Attachments: append(media, attachments(1, "text/plain")...)}

	_, err := NewValidator(store, 10).Validate(ctx, msg)
	requireReason(t, err, botErrors.AllAlreadyApproved, 3)
	require.Equal(t, "All 3 image/video attachment(s) already approved.", err.Error())
}

func TestValidateFiltersAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	images := attachments(3, "image/png")
	videos := attachments(2, "video/mp4")
	require.NoError(t, store.RecordApproval(ctx, images[1].URL, "src", "rev", "r"))

	msg := chat.Message{Attachments: []chat.Attachment{images[0], {URL: "x", ContentType: "audio/ogg"}, images[1], videos[0], images[2], videos[1]}}
	got, err := NewValidator(store, 10).Validate(ctx, msg)
	require.NoError(t, err)

	var urls []string
	for _, d := range got {
		urls = append(urls, d.URL)
	}
	require.Equal(t, []string{images[0].URL, videos[0].URL, images[2].URL, videos[1].URL}, urls)
	require.Zero(t, store.increment)
}

func TestValidateTruncates(t *testing.T) {
	got, err := NewValidator(newFakeStore(), 0).Validate(context.Background(), chat.Message{Attachments: attachments(14, "image/gif")})
	require.NoError(t, err)
	require.Len(t, got, DefaultMaxFiles)

	got, err = NewValidator(newFakeStore(), 2).Validate(context.Background(), chat.Message{Attachments: attachments(5, "image/gif")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "file0", got[0].Filename)
}
