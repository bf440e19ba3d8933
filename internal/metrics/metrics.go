package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "media_approve_submissions_total",
	Help: "Submission attempts by outcome",
}, []string{"outcome"})

var Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "media_approve_transitions_total",
	Help: "Review decisions by target status and outcome",
}, []string{"status", "outcome"})

var ApprovedItems = promauto.NewCounter(prometheus.CounterOpts{
	Name: "media_approve_approved_items_total",
	Help: "Attachments recorded as approved",
})

var GalleryPhases = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "media_approve_gallery_phase_total",
	Help: "Gallery calls by phase and result",
}, []string{"phase", "result"})

var UploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "media_approve_gallery_upload_seconds",
	Help:    "Time spent mirroring one attachment",
	Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
})
