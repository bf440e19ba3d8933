package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTicketNumber(t *testing.T) {
	require.Equal(t, "1234", TicketNumber("ticket-1234-photos"))
	require.Equal(t, "7", TicketNumber("t7x99"))
	require.Equal(t, "unknown", TicketNumber("general"))
	require.Equal(t, "unknown", TicketNumber(""))
}

func TestUserLinks(t *testing.T) {
	require.Equal(t, "", CreateUserLink())
	require.Equal(t, "@[a@example.org]", CreateUserLink("a@example.org"))
	require.Equal(t, "@[a@example.org], @[b@example.org]", CreateUserLink("a@example.org", "b@example.org"))

	id, ok := ParseUserLink(" @[a@example.org] ")
	require.True(t, ok)
	require.Equal(t, "a@example.org", id)

	_, ok = ParseUserLink("a@example.org")
	require.False(t, ok)
}

func TestInCommunity(t *testing.T) {
	require.True(t, InCommunity("alice@example.org", "example.org"))
	require.True(t, InCommunity("alice@Example.org", "@example.org"))
	require.False(t, InCommunity("alice@other.org", "example.org"))
	require.False(t, InCommunity("not-an-id", "example.org"))
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 0, 0, time.FixedZone("X", 3*3600))
	require.Equal(t, "2024-03-05 11:07 UTC", FormatTimestamp(ts))
}

func TestFormatRemaining(t *testing.T) {
	require.Equal(t, "7 seconds", FormatRemaining(7*time.Second))
	require.Equal(t, "1 second", FormatRemaining(100*time.Millisecond))
}
