package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// entity and quantity names appear as URL path segments,
// so the accepted alphabet is restricted.
var nameRegexp = regexp.MustCompile(`^[-a-zA-Z0-9@:%._+~#=]{1,256}$`)

// release tags appear as URL path segments too, and are used
// in file names of release dumps.
var tagRegexp = regexp.MustCompile(`^[a-zA-Z0-9_.]{1,32}$`)

// upper bound of the JSON metadata attached to a data file, in bytes.
const MaxMetadataLen = 32768

// ValidateName checks an entity/quantity name.
//
// The error wraps ErrValidation.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return fmt.Errorf(`%w: invalid characters in name "%s"`, ErrValidation, name)
	}
	return nil
}

// ValidateTag checks a release tag.
//
// The error wraps ErrValidation.
func ValidateTag(tag string) error {
	if !tagRegexp.MatchString(tag) {
		return fmt.Errorf(`%w: invalid characters in release tag "%s"`, ErrValidation, tag)
	}
	return nil
}

// ValidateMetadata checks a data-file metadata blob:
// it is empty, or well-formed JSON no longer than MaxMetadataLen.
//
// The error wraps ErrValidation.
func ValidateMetadata(metadata string) error {
	if metadata == "" {
		return nil
	}
	if MaxMetadataLen < len(metadata) {
		return fmt.Errorf(
			"%w: metadata is %d bytes long (max. %d)",
			ErrValidation, len(metadata), MaxMetadataLen,
		)
	}
	if !json.Valid([]byte(metadata)) {
		return fmt.Errorf("%w: metadata is not valid JSON", ErrValidation)
	}
	return nil
}
