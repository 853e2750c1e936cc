package app

import (
	"fmt"
	"net/http"

	"github.com/sejinpark/cinetick/api"
	"github.com/sejinpark/cinetick/internal/domain"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 50
)

func (app *application) GetUserReservationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.readIDParam(r, "userId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	pagination := domain.Pagination{
		Page:     readQueryInt(r, "page", defaultPage),
		PageSize: readQueryInt(r, "pageSize", defaultPageSize),
	}

	if pagination.Page < 1 || pagination.PageSize < 1 || pagination.PageSize > maxPageSize {
		app.badRequestResponse(w, r, fmt.Errorf("invalid pagination parameters"))
		return
	}

	summaries, metadata, err := app.reservationRepo.GetSummariesByUserID(r.Context(), userID, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserReservationsResponse{
		Reservations: make([]api.ReservationSummary, 0, len(summaries)),
		Metadata: api.Metadata{
			CurrentPage:  metadata.CurrentPage,
			FirstPage:    metadata.FirstPage,
			LastPage:     metadata.LastPage,
			PageSize:     metadata.PageSize,
			TotalRecords: metadata.TotalRecords,
		},
	}

	for _, s := range summaries {
		resp.Reservations = append(resp.Reservations, api.ReservationSummary{
			Id:          s.ReservationID,
			MovieTitle:  s.MovieTitle,
			TheaterName: s.TheaterName,
			Date:        s.ScreeningDate,
			Status:      string(s.Status),
			TotalPrice:  s.TotalAmount,
			CreatedAt:   s.CreatedAt,
		})
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
