package utils

import (
	"regexp"
	"strings"

	"media-approve/internal/models"
)

var (
	emailRe  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	digitsRe = regexp.MustCompile(`\d+`)
)

// TicketNumber returns the first run of digits in a chat name.
func TicketNumber(chatName string) string {
	if m := digitsRe.FindString(chatName); m != "" {
		return m
	}
	return models.UnknownTicket
}

// CreateUserLink renders messenger mentions, comma separated.
func CreateUserLink(ids ...string) string {
	if len(ids) == 0 {
		return ""
	}
	links := make([]string, len(ids))
	for i, id := range ids {
		links[i] = "@[" + id + "]"
	}
	return strings.Join(links, ", ")
}

// ParseUserLink is the inverse of CreateUserLink for a single mention.
func ParseUserLink(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "@[") || !strings.HasSuffix(s, "]") {
		return "", false
	}
	return s[2 : len(s)-1], true
}

// InCommunity reports whether a user ID is an address of the community domain.
func InCommunity(userID, communityID string) bool {
	userID = strings.Trim(strings.TrimSpace(userID), "@[]")
	if !emailRe.MatchString(userID) {
		return false
	}
	domain := userID[strings.LastIndex(userID, "@")+1:]
	return strings.EqualFold(domain, strings.TrimPrefix(communityID, "@"))
}
