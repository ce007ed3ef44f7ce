package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100001
	// ErrInvalidIdentity invalid identity
	ErrInvalidIdentity ErrorCode = 100002
	// ErrReentrantCall a ledger operation was invoked while another one is in progress on the same call chain
	ErrReentrantCall ErrorCode = 100003

	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100101
	// ErrInsufficientShares shares exceed balance
	ErrInsufficientShares ErrorCode = 100102
	// ErrExceedsLimit amount exceeds the resolved borrow limit
	ErrExceedsLimit ErrorCode = 100103
	// ErrInsufficientLiquidity insufficient liquidity
	ErrInsufficientLiquidity ErrorCode = 100104
	// ErrInsufficientRepayment payment below principal plus interest
	ErrInsufficientRepayment ErrorCode = 100105
	// ErrDustDeposit deposit too small to mint a share
	ErrDustDeposit ErrorCode = 100106
	// ErrPoolEmpty shares outstanding against a zero pool value
	ErrPoolEmpty ErrorCode = 100107
	// ErrInsufficientCollateral collateral withdrawal exceeds balance
	ErrInsufficientCollateral ErrorCode = 100108
	// ErrNoFees no treasury fees to withdraw
	ErrNoFees ErrorCode = 100109

	// ErrLoanActive loan already active
	ErrLoanActive ErrorCode = 100200
	// ErrNoActiveLoan no active loan
	ErrNoActiveLoan ErrorCode = 100201
	// ErrProfileNotInitialized credit profile not initialized
	ErrProfileNotInitialized ErrorCode = 100202
	// ErrUnauthorized caller not authorized
	ErrUnauthorized ErrorCode = 100203
	// ErrCollateralLocked collateral backs an active loan
	ErrCollateralLocked ErrorCode = 100204
	// ErrPolicyMismatch operation not available under the configured limit policy
	ErrPolicyMismatch ErrorCode = 100205

	// ErrTransferRejected outbound transfer rejected
	ErrTransferRejected ErrorCode = 100300
)

var errorReasons = map[ErrorCode]string{
	ErrUnknown:                "unknown",
	ErrOperationForbidden:     "operation forbidden",
	ErrInvalidIdentity:        "invalid identity",
	ErrReentrantCall:          "reentrant call",
	ErrInvalidAmount:          "invalid amount",
	ErrInsufficientShares:     "shares exceed balance",
	ErrExceedsLimit:           "amount exceeds borrow limit",
	ErrInsufficientLiquidity:  "insufficient liquidity",
	ErrInsufficientRepayment:  "insufficient repayment",
	ErrDustDeposit:            "deposit too small",
	ErrPoolEmpty:              "pool value is zero",
	ErrInsufficientCollateral: "insufficient collateral",
	ErrNoFees:                 "no treasury fees",
	ErrLoanActive:             "loan already active",
	ErrNoActiveLoan:           "no active loan",
	ErrProfileNotInitialized:  "profile not initialized",
	ErrUnauthorized:           "unauthorized",
	ErrCollateralLocked:       "collateral locked by active loan",
	ErrPolicyMismatch:         "not supported by limit policy",
	ErrTransferRejected:       "transfer rejected",
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

// Reason stable human readable reason
func (e ErrorCode) Reason() string {
	if r, ok := errorReasons[e]; ok {
		return r
	}

	return errorReasons[ErrUnknown]
}

func (e ErrorCode) Error() string {
	return e.String() + ": " + e.Reason()
}
