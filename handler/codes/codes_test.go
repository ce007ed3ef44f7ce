package codes

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"creditpool/core"

	"github.com/stretchr/testify/assert"
	"github.com/twitchtv/twirp"
)

func TestFrom(t *testing.T) {
	for _, c := range []struct {
		err    error
		status int
		code   int
	}{
		{core.ErrExceedsLimit, http.StatusBadRequest, 100103},
		{fmt.Errorf("borrow: %w", core.ErrLoanActive), http.StatusPreconditionFailed, 100200},
		{core.ErrUnauthorized, http.StatusForbidden, 100203},
		{core.ErrTransferRejected, http.StatusConflict, 100300},
		{errors.New("db gone"), http.StatusInternalServerError, http.StatusInternalServerError},
		{twirp.InvalidArgumentError("amount", "required"), http.StatusBadRequest, InvalidArguments},
	} {
		twerr := From(c.err)
		assert.Equal(t, c.status, twirp.ServerHTTPStatusFromErrorCode(twerr.Code()), c.err.Error())
		assert.Equal(t, c.code, Get(twerr), c.err.Error())
	}
}
