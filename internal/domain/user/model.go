package user

// Principal is the authenticated identity attached to a request by the
// account provider. UserID is the stable id all documents are keyed by.
type Principal struct {
	UserID string
	Email  string
	Name   string
}
