package errors

import (
	"errors"
	"fmt"

	"quorum/contexts/assembly-voting/voting-service/domain/entities"
)

var (
	ErrAlreadyActive     = errors.New("another voting session is active")
	ErrDevice            = errors.New("device communication failed")
	ErrInvalidStartInput = errors.New("invalid session start input")
	ErrNoActiveSession   = errors.New("no active voting session for target")
	ErrSessionActive     = errors.New("voting session for target is still active")
	ErrInvalidVoteValue  = errors.New("invalid vote value")
	ErrKeypadUnknown     = errors.New("keypad is not registered")
	ErrUserUnknown       = errors.New("keypad is not bound to a participant")
	ErrUnknownPollKind   = errors.New("no poll kind recorded for target")
)

// AlreadyActiveError carries the blocking session so callers can render
// "another X is running". errors.Is(err, ErrAlreadyActive) matches.
type AlreadyActiveError struct {
	Mode   entities.SessionMode
	Target string
}

func (e *AlreadyActiveError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("another voting session is active: %s", e.Mode)
	}
	return fmt.Sprintf("another voting session is active: %s for target %s", e.Mode, e.Target)
}

func (e *AlreadyActiveError) Is(target error) bool {
	return target == ErrAlreadyActive
}

type DeviceFailure string

const (
	DeviceTimeout     DeviceFailure = "timeout"
	DeviceRejected    DeviceFailure = "rejected"
	DeviceUnreachable DeviceFailure = "unreachable"
)

// DeviceError wraps a failed device round trip with the device's own
// message. errors.Is(err, ErrDevice) matches.
type DeviceError struct {
	Failure DeviceFailure
	Message string
}

func (e *DeviceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("device communication failed: %s", e.Failure)
	}
	return fmt.Sprintf("device communication failed (%s): %s", e.Failure, e.Message)
}

func (e *DeviceError) Is(target error) bool {
	return target == ErrDevice
}
