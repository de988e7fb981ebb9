package enums

import "fmt"

// DownloadType tags a download audit record with its shape.
type DownloadType string

const (
	DownloadTypeSingle    DownloadType = "SINGLE"
	DownloadTypeSelection DownloadType = "SELECTION"
	DownloadTypeAll       DownloadType = "ALL"
)

var validDownloadTypes = []DownloadType{
	DownloadTypeSingle,
	DownloadTypeSelection,
	DownloadTypeAll,
}

func (d DownloadType) String() string {
	return string(d)
}

// IsValid reports whether the type is known.
func (d DownloadType) IsValid() bool {
	for _, candidate := range validDownloadTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDownloadType converts raw input into a DownloadType.
func ParseDownloadType(value string) (DownloadType, error) {
	for _, candidate := range validDownloadTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid download type %q", value)
}
