package codes

import (
	"errors"
	"strconv"

	"creditpool/core"

	"github.com/twitchtv/twirp"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"

	// InvalidArguments invalid arguments
	InvalidArguments = 100001
)

// From convert a ledger error into a twirp error carrying its numeric code
func From(err error) twirp.Error {
	if twerr, ok := err.(twirp.Error); ok {
		return twerr
	}

	var code core.ErrorCode
	if !errors.As(err, &code) {
		return twirp.InternalErrorWith(err)
	}

	return twirp.NewError(twirpCode(code), code.Reason()).WithMeta(CustomCodeKey, code.String())
}

func twirpCode(code core.ErrorCode) twirp.ErrorCode {
	switch code {
	case core.ErrUnauthorized, core.ErrOperationForbidden:
		return twirp.PermissionDenied
	case core.ErrLoanActive, core.ErrNoActiveLoan, core.ErrProfileNotInitialized,
		core.ErrCollateralLocked, core.ErrPolicyMismatch, core.ErrPoolEmpty,
		core.ErrNoFees, core.ErrReentrantCall:
		return twirp.FailedPrecondition
	case core.ErrTransferRejected:
		return twirp.Aborted
	case core.ErrUnknown:
		return twirp.Internal
	default:
		return twirp.InvalidArgument
	}
}

// Get get error code
func Get(twerr twirp.Error) int {
	if v := twerr.Meta(CustomCodeKey); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			return code
		}
	}

	switch twerr.Code() {
	case twirp.InvalidArgument:
		return InvalidArguments
	default:
		return twirp.ServerHTTPStatusFromErrorCode(twerr.Code())
	}
}
