package jobs

type JobType string

const (
	JobVideoProcess  JobType = "video.process"
	JobVideoExport   JobType = "video.export"
	JobPaymentExpire JobType = "payment.expire"
)

// IsValid checks the type against the known constants.
func (t JobType) IsValid() bool {
	switch t {
	case JobVideoProcess, JobVideoExport, JobPaymentExpire:
		return true
	default:
		return false
	}
}
