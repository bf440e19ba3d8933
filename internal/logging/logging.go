package logging

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Init configures the process-wide logger. Unknown levels fall back to info.
func Init(level string) {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("unknown log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// Review returns an entry carrying the identity of a review message.
func Review(chatID, messageID string) *log.Entry {
	return log.WithFields(log.Fields{
		"review_chat":    chatID,
		"review_message": messageID,
	})
}
