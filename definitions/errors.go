package definitions

import (
	"errors"

	"hush/internal/size"
)

var (
	ErrInvalidSizeLiteral = size.ErrInvalid
	ErrFileNotFound       = errors.New("file not found")
	ErrPathNotRelocatable = errors.New("path not relocatable")
	ErrManifestMalformed  = errors.New("malformed manifest line")
	ErrDigestMismatch     = errors.New("digest mismatch")
	ErrIoFailure          = errors.New("i/o failure")
	ErrPartialCompletion  = errors.New("partial completion")
)

// Kind classifies an error against the taxonomy above.
type Kind uint8

const (
	KindNone Kind = iota
	KindInvalidSizeLiteral
	KindFileNotFound
	KindPathNotRelocatable
	KindManifestMalformed
	KindDigestMismatch
	KindIoFailure
	KindPartialCompletion
)

var kindErrs = []struct {
	kind Kind
	err  error
}{
	{KindInvalidSizeLiteral, ErrInvalidSizeLiteral},
	{KindFileNotFound, ErrFileNotFound},
	{KindPathNotRelocatable, ErrPathNotRelocatable},
	{KindManifestMalformed, ErrManifestMalformed},
	{KindDigestMismatch, ErrDigestMismatch},
	{KindIoFailure, ErrIoFailure},
	{KindPartialCompletion, ErrPartialCompletion},
}

// KindOf reports the taxonomy kind of err. Unclassified errors count as
// I/O failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, ke := range kindErrs {
		if errors.Is(err, ke.err) {
			return ke.kind
		}
	}
	return KindIoFailure
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidSizeLiteral:
		return "invalid_size_literal"
	case KindFileNotFound:
		return "file_not_found"
	case KindPathNotRelocatable:
		return "path_not_relocatable"
	case KindManifestMalformed:
		return "manifest_malformed"
	case KindDigestMismatch:
		return "digest_mismatch"
	case KindIoFailure:
		return "io_failure"
	case KindPartialCompletion:
		return "partial_completion"
	default:
		return "unknown"
	}
}

// MarshalText lets Kind appear by name in JSON reports.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
