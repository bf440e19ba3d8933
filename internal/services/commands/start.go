package commands

import (
	"fmt"
	"strings"
)

// Help is the reply to /start and /help.
func Help(mirrorEnabled bool, cooldown string) string {
	var sb strings.Builder
	sb.WriteString("Hi! I collect media for review and, once approved, keep track of it.\n\n")
	sb.WriteString("Submitting (submitter group only):\n")
	sb.WriteString("/upload – reply to or forward a message with images or videos and send /upload. ")
	sb.WriteString("You can also send files with the caption /upload. /submit does the same.\n")
	fmt.Fprintf(&sb, "Only image/video files are taken, already approved files are skipped, one submission per %s.\n\n", cooldown)

	sb.WriteString("Reviewing (reviewer group only), buttons on each request:\n")
	sb.WriteString("✅ Approve – records the files")
	if mirrorEnabled {
		sb.WriteString(" and mirrors them to the gallery.\n")
		sb.WriteString("🖼 Approve (Skip Gallery) – records the files without mirroring.\n")
	} else {
		sb.WriteString(".\n")
		sb.WriteString("🖼 Approve (Skip Gallery) – disabled, gallery mirroring is off.\n")
	}
	sb.WriteString("❌ Deny – asks you for a reason, then closes the request.\n\n")
	sb.WriteString("/stats – approved files per author (reviewers only)\n")
	sb.WriteString("/help – this message")
	return sb.String()
}

const Unknown = "I did not understand that.\nSend /help to see what I can do."

const NoSource = "Reply to (or forward) a message with media and send /upload, or attach files with the caption /upload."
