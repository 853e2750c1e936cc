package app

import (
	"errors"
	"net/http"

	"github.com/sejinpark/cinetick/api"
	"github.com/sejinpark/cinetick/internal/domain"
)

func (app *application) GetSeatMapByScreening(w http.ResponseWriter, r *http.Request) {
	screeningID, err := app.readIDParam(r, "screeningId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	seatMap, err := app.ledger.GetSeatMap(r.Context(), screeningID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := toSeatMapResponse(seatMap)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) LockSeatsHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	screeningID, err := app.readIDParam(r, "screeningId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var req api.LockSeatsRequest

	err = app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ttl := app.config.booking.seatLockTTL

	result, err := app.ledger.Lock(r.Context(), screeningID, req.SeatIds, app.ownerToken(r), ttl)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if !result.AllLocked {
		logger.Info(
			"seat lock rejected on contention",
			"screening_id", screeningID,
			"conflicting_seats", result.ConflictingSeatIDs,
		)
		app.seatConflictResponse(w, r, result.ConflictingSeatIDs)
		return
	}

	resp := api.LockSeatsResponse{
		Success:       true,
		LockedSeatIds: result.LockedSeatIDs,
		HoldSeconds:   int(ttl.Seconds()),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) UnlockSeatsHandler(w http.ResponseWriter, r *http.Request) {
	screeningID, err := app.readIDParam(r, "screeningId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var req api.UnlockSeatsRequest

	err = app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	released, err := app.ledger.Release(r.Context(), screeningID, req.SeatIds, app.ownerToken(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UnlockSeatsResponse{
		Success:       true,
		ReleasedCount: released,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(seatMap *domain.ScreeningSeatMap) api.SeatMapResponse {
	return api.SeatMapResponse{
		ScreeningId: seatMap.ScreeningID,
		TheaterId:   seatMap.TheaterID,
		TheaterName: seatMap.TheaterName,
		MovieTitle:  seatMap.MovieTitle,
		StartTime:   seatMap.StartTime,
		BasePrice:   seatMap.BasePrice,
		SeatRows:    toSeatRows(seatMap.Seats),
	}
}

func toSeatRows(seats []domain.ScreeningSeat) []api.SeatRow {
	// Seats are pre-sorted by Row,Column (ascending).
	// This allows us to process them in a single pass without additional sorting or mapping.

	if len(seats) == 0 {
		return nil
	}

	var seatRows []api.SeatRow
	currentRow := api.SeatRow{Row: seats[0].Seat.Row}

	for _, v := range seats {
		if v.Seat.Row != currentRow.Row {
			seatRows = append(seatRows, currentRow)
			currentRow = api.SeatRow{Row: v.Seat.Row}
		}

		currentRow.Seats = append(currentRow.Seats, api.Seat{
			Id:         v.Seat.ID,
			Row:        v.Seat.Row,
			Column:     v.Seat.Col,
			Type:       v.Seat.Type,
			ExtraPrice: v.Seat.ExtraPrice,
			Available:  v.Status == domain.SeatAvailable,
		})
	}

	seatRows = append(seatRows, currentRow)

	return seatRows
}
