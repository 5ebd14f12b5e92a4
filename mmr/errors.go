// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"fmt"
)

// Kind classifies MMR errors. Verification failures and storage failures never share a kind.
type Kind int

const (
	KindInvalidNumericOp Kind = iota + 1
	KindPush
	KindGetRoot
	KindCommit
	KindGenerateProof
	KindVerify
	KindLeafNotFound
	KindInvalidLeafIndex
	KindInvalidBestKnownLeafCount
)

func (k Kind) String() string {
	switch k {
	case KindInvalidNumericOp:
		return "invalid numeric operation"
	case KindPush:
		return "push"
	case KindGetRoot:
		return "get root"
	case KindCommit:
		return "commit"
	case KindGenerateProof:
		return "generate proof"
	case KindVerify:
		return "verify"
	case KindLeafNotFound:
		return "leaf not found"
	case KindInvalidLeafIndex:
		return "invalid leaf index"
	case KindInvalidBestKnownLeafCount:
		return "invalid best known leaf count"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error returned by MMR operations.
// errors.Is matches on kind, so callers compare against the Err* values.
type Error struct {
	kind  Kind
	cause error
}

var (
	ErrInvalidNumericOp          = &Error{kind: KindInvalidNumericOp}
	ErrPush                      = &Error{kind: KindPush}
	ErrGetRoot                   = &Error{kind: KindGetRoot}
	ErrCommit                    = &Error{kind: KindCommit}
	ErrGenerateProof             = &Error{kind: KindGenerateProof}
	ErrVerify                    = &Error{kind: KindVerify}
	ErrLeafNotFound              = &Error{kind: KindLeafNotFound}
	ErrInvalidLeafIndex          = &Error{kind: KindInvalidLeafIndex}
	ErrInvalidBestKnownLeafCount = &Error{kind: KindInvalidBestKnownLeafCount}
)

func newError(kind Kind, cause error) *Error {
	return &Error{kind: kind, cause: cause}
}

func errorf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, cause: fmt.Errorf(format, args...)}
}

// Kind returns the kind of the error.
func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Error() string {
	if e.cause == nil {
		return "mmr: " + e.kind.String()
	}
	return fmt.Sprintf("mmr: %v: %v", e.kind, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an MMR error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == e.kind
}

// reclassify keeps err's kind if it is already an MMR error, otherwise wraps it into kind.
func reclassify(kind Kind, err error) error {
	if _, ok := err.(*Error); ok {
		return err
	}
	return newError(kind, err)
}
