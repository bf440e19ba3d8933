package logging

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestInitLevel(t *testing.T) {
	Init("debug")
	require.Equal(t, log.DebugLevel, log.GetLevel())

	Init("nonsense")
	require.Equal(t, log.InfoLevel, log.GetLevel())
}

func TestReviewFields(t *testing.T) {
	entry := Review("chat", "42")
	require.Equal(t, "chat", entry.Data["review_chat"])
	require.Equal(t, "42", entry.Data["review_message"])
}
