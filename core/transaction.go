package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/yiplee/structs"
)

// ActionType ledger notification type
type ActionType int

const (
	// ActionTypeDefault default
	ActionTypeDefault ActionType = iota
	// ActionTypeProfileInitialized credit profile created
	ActionTypeProfileInitialized
	// ActionTypeScoreUpdated credit score recomputed
	ActionTypeScoreUpdated
	// ActionTypeDeposit liquidity deposited
	ActionTypeDeposit
	// ActionTypeWithdraw liquidity withdrawn
	ActionTypeWithdraw
	// ActionTypeBorrow loan opened
	ActionTypeBorrow
	// ActionTypeRepay loan settled
	ActionTypeRepay
	// ActionTypeFeeWithdrawal treasury fees withdrawn
	ActionTypeFeeWithdrawal
	// ActionTypeCollateralDeposit collateral deposited
	ActionTypeCollateralDeposit
	// ActionTypeCollateralWithdraw collateral withdrawn
	ActionTypeCollateralWithdraw
	// ActionTypeRepayRefund overpayment returned
	ActionTypeRepayRefund
	// ActionTypePoolAuthorized pool capability issued
	ActionTypePoolAuthorized
)

var actionTypeNames = map[ActionType]string{
	ActionTypeDefault:            "default",
	ActionTypeProfileInitialized: "profile_initialized",
	ActionTypeScoreUpdated:       "score_updated",
	ActionTypeDeposit:            "deposit",
	ActionTypeWithdraw:           "withdraw",
	ActionTypeBorrow:             "borrow",
	ActionTypeRepay:              "repay",
	ActionTypeFeeWithdrawal:      "fee_withdrawal",
	ActionTypeCollateralDeposit:  "collateral_deposit",
	ActionTypeCollateralWithdraw: "collateral_withdraw",
	ActionTypeRepayRefund:        "repay_refund",
	ActionTypePoolAuthorized:     "pool_authorized",
}

func (a ActionType) String() string {
	if n, ok := actionTypeNames[a]; ok {
		return n
	}

	return "unknown"
}

// ParseActionType parse action name
func ParseActionType(name string) (ActionType, bool) {
	for a, n := range actionTypeNames {
		if n == name {
			return a, true
		}
	}

	return ActionTypeDefault, false
}

// MarshalJSON action as its name
func (a ActionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON action from its name
func (a *ActionType) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}

	*a, _ = ParseActionType(name)
	return nil
}

// TransactionExtraData extra data
type TransactionExtraData map[string]interface{}

// NewTransactionExtra new transaction extra instance
func NewTransactionExtra() TransactionExtraData {
	d := make(TransactionExtraData)
	return d
}

// NewTransactionExtraFrom copy the exported fields of a struct, keyed by json tag
func NewTransactionExtraFrom(v interface{}) TransactionExtraData {
	return TransactionExtraData(structs.Map(v))
}

// Put put data
func (t TransactionExtraData) Put(key string, value interface{}) TransactionExtraData {
	t[key] = value
	return t
}

// Format format as []byte by default
func (t TransactionExtraData) Format() []byte {
	bs, e := json.Marshal(t)
	if e != nil {
		return []byte("{}")
	}

	return bs
}

// Transaction append only ledger notification
type Transaction struct {
	ID        int64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Action    ActionType     `json:"action"`
	TraceID   string         `sql:"size:36;index:idx_transactions_trace_id" json:"trace_id"`
	Identity  string         `sql:"size:64;index:idx_transactions_identity" json:"identity"`
	Amount    string         `sql:"size:80" json:"amount"`
	Data      types.JSONText `sql:"type:TEXT" json:"data"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// NewTransaction build a notification
func NewTransaction(action ActionType, traceID, identity, amount string, extra TransactionExtraData) *Transaction {
	if extra == nil {
		extra = NewTransactionExtra()
	}

	return &Transaction{
		Action:   action,
		TraceID:  traceID,
		Identity: identity,
		Amount:   amount,
		Data:     extra.Format(),
	}
}

// TransactionStore transaction store interface
type TransactionStore interface {
	List(ctx context.Context, fromID int64, limit int) ([]*Transaction, error)
	ListByIdentity(ctx context.Context, identity string, fromID int64, limit int) ([]*Transaction, error)
}
