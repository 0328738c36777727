package types

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Error tags classify terminal failures of download and extract operations.
// Every failure is still fatal for its operation; the tag only tells the host
// what kind of failure it was.
var (
	ErrTagTransport    = goerr.NewTag("transport")
	ErrTagFilesystem   = goerr.NewTag("filesystem")
	ErrTagArchive      = goerr.NewTag("archive")
	ErrTagInvalidInput = goerr.NewTag("invalid")
)

// ErrorKind is the string form of an error tag exposed to API clients
type ErrorKind string

const (
	ErrorKindTransport  ErrorKind = "transport"
	ErrorKindFilesystem ErrorKind = "filesystem"
	ErrorKindArchive    ErrorKind = "archive"
	ErrorKindInvalid    ErrorKind = "invalid"
	ErrorKindUnknown    ErrorKind = "unknown"
)

// KindOf returns the kind of the outermost tagged error in err's chain
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch {
		case goerr.HasTag(e, ErrTagInvalidInput):
			return ErrorKindInvalid
		case goerr.HasTag(e, ErrTagArchive):
			return ErrorKindArchive
		case goerr.HasTag(e, ErrTagFilesystem):
			return ErrorKindFilesystem
		case goerr.HasTag(e, ErrTagTransport):
			return ErrorKindTransport
		}
	}
	return ErrorKindUnknown
}
