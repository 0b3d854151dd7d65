package handlers

import (
	"net/http"

	"github.com/chris/caronaexpress/pkg/api"
	"github.com/chris/caronaexpress/pkg/handlers/ledger"
	"github.com/chris/caronaexpress/pkg/handlers/respond"
	"github.com/chris/caronaexpress/pkg/handlers/rides"
	"github.com/chris/caronaexpress/pkg/handlers/wallets"
)

// ApiHandler implements the generated server interface by delegating each
// resource to its own handler.
type ApiHandler struct {
	*rides.RidesHandler
	*ledger.LedgerHandler
	*wallets.WalletsHandler
}

// NewApiHandler creates a new ApiHandler from the per-resource handlers.
func NewApiHandler(r *rides.RidesHandler, l *ledger.LedgerHandler, w *wallets.WalletsHandler) *ApiHandler {
	return &ApiHandler{RidesHandler: r, LedgerHandler: l, WalletsHandler: w}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// ParamError reports a path or query parameter the generated binding
// rejected, in the same JSON shape as every other error.
func ParamError(w http.ResponseWriter, r *http.Request, err error) {
	respond.BadRequest(w, err.Error())
}
