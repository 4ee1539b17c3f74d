package inventory

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient, non-blocking message for the user. Notices are
// queued until taken with App.TakeNotices.
type Notice struct {
	Kind    NoticeKind
	Message string
}

const (
	msgLoadFailed   = "Failed to load toys"
	msgSaveFailed   = "Failed to save toy"
	msgDeleteFailed = "Failed to delete toy"
	msgAdded        = "Toy added successfully!"
	msgUpdated      = "Toy updated successfully!"
	msgDeleted      = "Toy deleted successfully!"
)
