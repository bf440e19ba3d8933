package commands

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"media-approve/internal/models"
	"media-approve/pkg/botErrors"
)

func TestHelpMentionsGalleryState(t *testing.T) {
	require.Contains(t, Help(true, "10 seconds"), "mirrors them to the gallery")
	require.Contains(t, Help(false, "10 seconds"), "disabled, gallery mirroring is off")
	require.Contains(t, Help(false, "10 seconds"), "one submission per 10 seconds")
}

func TestErrorText(t *testing.T) {
	require.Equal(t, "No image/video attachments found.", ErrorText(&botErrors.ValidationError{Reason: botErrors.NoEligibleMedia}))
	require.Equal(t, "Please wait 3 seconds before submitting again.", ErrorText(fmt.Errorf("wrapped: %w", &botErrors.CooldownError{Remaining: "3 seconds"})))
	require.Equal(t, "Another reviewer is handling this request right now.", ErrorText(botErrors.ErrReviewInProgress))
	require.Equal(t, "This request has already been processed.", ErrorText(fmt.Errorf("%w: already denied", botErrors.ErrAlreadyProcessed)))
	require.Contains(t, ErrorText(botErrors.ErrNoAccess), "permission")
	require.Contains(t, ErrorText(botErrors.ErrParse), "check it manually")
	require.Contains(t, ErrorText(fmt.Errorf("boom")), "Something went wrong")
}

func TestStats(t *testing.T) {
	require.Equal(t, "Nothing has been approved yet.", Stats(nil))
	text := Stats([]models.UserApprovalStat{{UserID: "a@example.org", ApprovedUploadCount: 7}, {UserID: "b@example.org", ApprovedUploadCount: 2}})
	require.Contains(t, text, "1. @[a@example.org] – 7")
	require.Contains(t, text, "2. @[b@example.org] – 2")
}
