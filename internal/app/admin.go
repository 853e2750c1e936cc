package app

import (
	"net/http"
	"time"

	"github.com/sejinpark/cinetick/api"
)

// CleanupLockedSeatsHandler triggers an on-demand sweep, the manual
// counterpart of the scheduled one. It bypasses the sweeper lease: an
// administrator asking for a sweep should get one even if another instance
// just ran.
func (app *application) CleanupLockedSeatsHandler(w http.ResponseWriter, r *http.Request) {
	swept, expired, err := app.sweeper.RunOnce(r.Context(), time.Now())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.CleanupResponse{
		CleanedCount:        swept,
		ExpiredReservations: expired,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
