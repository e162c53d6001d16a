package jobs

// Payloads stay minimal and ID-based; the worker loads details from the DB.

// VideoProcessPayload flips an uploaded video through
// UPLOADING -> PROCESSING -> COMPLETED.
type VideoProcessPayload struct {
	VideoID   string `json:"videoId"`
	UserID    string `json:"userId"`
	RequestID string `json:"requestId,omitempty"` // correlation
}

// VideoExportPayload renders an export artifact for a completed video.
type VideoExportPayload struct {
	VideoID string `json:"videoId"`
	UserID  string `json:"userId"`
	Format  string `json:"format"`
	Quality string `json:"quality"`
}

// PaymentExpirePayload marks a payment EXPIRED if it is still pending when
// the job runs. Scheduled at creation time with a delayed run_at.
type PaymentExpirePayload struct {
	PaymentID string `json:"paymentId"`
}
