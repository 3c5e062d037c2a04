package enums

import "fmt"

// InquiryStatus tracks the lifecycle of a buyer inquiry.
type InquiryStatus string

const (
	InquiryStatusNew       InquiryStatus = "new"
	InquiryStatusReplied   InquiryStatus = "replied"
	InquiryStatusClosed    InquiryStatus = "closed"
	InquiryStatusConverted InquiryStatus = "converted"
)

var validInquiryStatuses = []InquiryStatus{
	InquiryStatusNew,
	InquiryStatusReplied,
	InquiryStatusClosed,
	InquiryStatusConverted,
}

// String implements fmt.Stringer.
func (s InquiryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InquiryStatus.
func (s InquiryStatus) IsValid() bool {
	for _, candidate := range validInquiryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the inquiry can no longer change.
func (s InquiryStatus) IsTerminal() bool {
	return s == InquiryStatusClosed || s == InquiryStatusConverted
}

// ParseInquiryStatus converts raw input into an InquiryStatus.
func ParseInquiryStatus(value string) (InquiryStatus, error) {
	for _, candidate := range validInquiryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inquiry status %q", value)
}
