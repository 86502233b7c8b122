package batch

import (
	"fmt"

	"lastmile/internal/pkg/errs"
)

// Status is the lifecycle state of a Batch.
type Status int

const (
	// Unknown is the zero value and never valid.
	Unknown Status = iota
	// Open batches accept order reservations.
	Open
	// Closed batches are final.
	Closed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown: "Unknown",
		Open:    "Open",
		Closed:  "Closed",
	}
}

// Validate rejects Unknown and values outside the enum.
func (s Status) Validate() error {
	if s != Open && s != Closed {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid batch status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// ParseStatus converts the persisted name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if name == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid batch status", s))
}
