// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "fmt"

type Kind int

const (
	KindNotStash Kind = iota + 1
	KindNotController
	KindAlreadyBonded
	KindAlreadyPaired
	KindBadState
	KindNotEnoughFunds
	KindNoMoreChunks
	KindNoUnlockChunk
	KindInsufficientBond
	KindInvalidValue
)

func (k Kind) String() string {
	switch k {
	case KindNotStash:
		return "not a stash"
	case KindNotController:
		return "not a controller"
	case KindAlreadyBonded:
		return "already bonded"
	case KindAlreadyPaired:
		return "already paired"
	case KindBadState:
		return "bad state"
	case KindNotEnoughFunds:
		return "not enough funds"
	case KindNoMoreChunks:
		return "no more unlocking chunks"
	case KindNoUnlockChunk:
		return "no unlocking chunk"
	case KindInsufficientBond:
		return "insufficient bond"
	case KindInvalidValue:
		return "invalid value"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a ledger consistency error. errors.Is matches on kind.
type Error struct {
	kind  Kind
	cause error
}

var (
	ErrNotStash         = &Error{kind: KindNotStash}
	ErrNotController    = &Error{kind: KindNotController}
	ErrAlreadyBonded    = &Error{kind: KindAlreadyBonded}
	ErrAlreadyPaired    = &Error{kind: KindAlreadyPaired}
	ErrBadState         = &Error{kind: KindBadState}
	ErrNotEnoughFunds   = &Error{kind: KindNotEnoughFunds}
	ErrNoMoreChunks     = &Error{kind: KindNoMoreChunks}
	ErrNoUnlockChunk    = &Error{kind: KindNoUnlockChunk}
	ErrInsufficientBond = &Error{kind: KindInsufficientBond}
	ErrInvalidValue     = &Error{kind: KindInvalidValue}
)

func errorf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, cause: fmt.Errorf(format, args...)}
}

func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Error() string {
	if e.cause == nil {
		return "staking: " + e.kind.String()
	}
	return fmt.Sprintf("staking: %v: %v", e.kind, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == e.kind
}
