package commands

import (
	"fmt"
	"strings"

	"media-approve/internal/models"
	"media-approve/internal/utils"
)

func Submitted(files int) string {
	return fmt.Sprintf("Submitted %d file(s) for approval.", files)
}

func DenyPrompt(min, max int, ttl string) string {
	return fmt.Sprintf("Send me the reason for denying this request (%d–%d characters) within %s, or press Cancel.", min, max, ttl)
}

const (
	DenyCancelled = "Denial cancelled, the request stays pending."
	NoDenyDialog  = "There is no denial waiting for a reason."
	Disabled      = "This option is disabled."
	Approving     = "Approving…"
)

func Denied(reason string) string {
	return "Request denied.\nReason: " + reason
}

// Stats renders the top authors list.
func Stats(stats []models.UserApprovalStat) string {
	if len(stats) == 0 {
		return "Nothing has been approved yet."
	}
	var sb strings.Builder
	sb.WriteString("Approved files per author:")
	for i, s := range stats {
		fmt.Fprintf(&sb, "\n%d. %s – %d", i+1, utils.CreateUserLink(s.UserID), s.ApprovedUploadCount)
	}
	return sb.String()
}

func UserStat(userID string, count int64) string {
	return fmt.Sprintf("%s has %d approved file(s).", utils.CreateUserLink(userID), count)
}
