package app

import (
	"net/http"

	"github.com/sejinpark/cinetick/api"
)

func (app *application) GetScreeningsByTheater(w http.ResponseWriter, r *http.Request) {
	theaterID, err := app.readIDParam(r, "theaterId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	screenings, err := app.screeningRepo.GetByTheaterID(r.Context(), theaterID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ScreeningsResponse{
		Screenings: make([]api.Screening, 0, len(screenings)),
	}

	for _, s := range screenings {
		resp.Screenings = append(resp.Screenings, api.Screening{
			Id:         s.ID,
			MovieId:    s.MovieID,
			MovieTitle: s.MovieTitle,
			TheaterId:  s.TheaterID,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			BasePrice:  s.BasePrice,
		})
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
