package isobox

import "fmt"

// ErrBoxNotFound is returned when LookFor exhausts its sibling-scan budget
// or runs past end-of-file without matching the requested box type.
type ErrBoxNotFound struct {
	Key string
}

func (e *ErrBoxNotFound) Error() string {
	return fmt.Sprintf("%s atom could not be found", e.Key)
}

// ErrExtendedSizeBox is returned for the 64-bit largesize (size==1) and
// to-end-of-file (size==0) box forms; see DESIGN.md's Open Question 1 on
// why these are rejected rather than mis-parsed as 32-bit.
type ErrExtendedSizeBox struct {
	Key string
}

func (e *ErrExtendedSizeBox) Error() string {
	return fmt.Sprintf("%s: extended-size box not supported", e.Key)
}

// ErrMalformedContainer reports a box size too small to hold its own 8-byte
// header. A skipped box whose size runs past the file end surfaces as the
// reader's seek error instead.
type ErrMalformedContainer struct {
	Detail string
}

func (e *ErrMalformedContainer) Error() string {
	return fmt.Sprintf("malformed container: %s", e.Detail)
}
