package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"weekly-planner/internal/app"
	"weekly-planner/internal/fuel"
)

type quoteRequest struct {
	Fuel        fuel.Type   `json:"fuel"`
	Price       fuel.Number `json:"price"`
	Consumption fuel.Number `json:"consumption"`
}

type compareRequest struct {
	Distance fuel.Number    `json:"distance"`
	Quotes   []quoteRequest `json:"quotes"`
}

type tripRequest struct {
	Fuel        fuel.Type   `json:"fuel"`
	Distance    fuel.Number `json:"distance"`
	Consumption fuel.Number `json:"consumption"`
	Price       fuel.Number `json:"price"`
	RoundTrip   bool        `json:"round_trip"`
	Passengers  fuel.Number `json:"passengers"`
}

type economyRequest struct {
	Distance fuel.Number `json:"distance"`
	Liters   fuel.Number `json:"liters"`
	Price    fuel.Number `json:"price"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	in := fuel.CompareInput{Distance: req.Distance.Float()}
	for _, q := range req.Quotes {
		t, err := fuel.ParseType(string(q.Fuel))
		if err != nil {
			s.badRequest(w, err)
			return
		}
		in.Quotes = append(in.Quotes, fuel.Quote{Fuel: t, Price: q.Price.Float(), Consumption: q.Consumption.Float()})
	}
	writeJSON(w, http.StatusOK, s.app.CompareFuels(r.Context(), userID(r), in))
}

func (s *Server) handleTrip(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	t := fuel.Gasoline
	if req.Fuel != "" {
		parsed, err := fuel.ParseType(string(req.Fuel))
		if err != nil {
			s.badRequest(w, err)
			return
		}
		t = parsed
	}

	result := s.app.Trip(r.Context(), userID(r), t, fuel.TripInput{
		Distance:    req.Distance.Float(),
		Consumption: req.Consumption.Float(),
		Price:       req.Price.Float(),
		RoundTrip:   req.RoundTrip,
		Passengers:  int(req.Passengers.Float()),
	})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEconomy(w http.ResponseWriter, r *http.Request) {
	var req economyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	result := s.app.Economy(r.Context(), userID(r), fuel.EconomyInput{
		Distance: req.Distance.Float(),
		Liters:   req.Liters.Float(),
		Price:    req.Price.Float(),
	})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	h := s.app.History(r.Context(), userID(r))
	if h == nil {
		h = fuel.History{}
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.app.ClearHistory(r.Context(), userID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveHistoryEntry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.RemoveHistoryEntry(r.Context(), userID(r), r.PathValue("id")))
}

func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.app.ImportHistory(r.Context(), userID(r), http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.badRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

func (s *Server) handleExport(format app.ExportFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="historico.%s"`, format))
		if err := s.app.ExportHistory(r.Context(), userID(r), format, w); err != nil {
			s.writeError(w, r, err)
		}
	}
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"theme": s.app.Theme(r.Context(), userID(r))})
}

func (s *Server) handlePutTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.app.SaveTheme(r.Context(), userID(r), req.Theme)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetFuelTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]fuel.Type{"fuel_types": s.app.FuelTypes(r.Context(), userID(r))})
}

func (s *Server) handlePutFuelTypes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FuelTypes []fuel.Type `json:"fuel_types"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.app.SaveFuelTypes(r.Context(), userID(r), req.FuelTypes)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetInputs(w http.ResponseWriter, r *http.Request) {
	form, err := s.app.Inputs(r.Context(), userID(r), r.PathValue("kind"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if form == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(form)
}

func (s *Server) handlePutInputs(w http.ResponseWriter, r *http.Request) {
	var form json.RawMessage
	if err := decodeJSON(w, r, &form); err != nil {
		s.badRequest(w, err)
		return
	}
	if err := s.app.SaveInputs(r.Context(), userID(r), r.PathValue("kind"), form); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
