package server

import (
	"errors"
	"net/http"

	"weekly-planner/internal/meal"
	"weekly-planner/internal/planner"
)

type slotRequest struct {
	MealType string `json:"meal_type"`
	Day      int    `json:"day"`
	Meal     string `json:"meal,omitempty"`
}

func (req slotRequest) mealType() (meal.Type, error) {
	return meal.ParseType(req.MealType)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	view, err := s.app.Plan(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleNewWeek(w http.ResponseWriter, r *http.Request) {
	view, err := s.app.NewWeek(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	t, err := req.mealType()
	if err != nil {
		s.badRequest(w, err)
		return
	}

	view, err := s.app.Swap(r.Context(), userID(r), t, req.Day)
	if errors.Is(err, planner.ErrNoEligibleOption) {
		writeJSON(w, http.StatusConflict, view)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	t, err := req.mealType()
	if err != nil {
		s.badRequest(w, err)
		return
	}

	view, err := s.app.Assign(r.Context(), userID(r), t, req.Day, req.Meal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSetProtein(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tag     string `json:"tag"`
		Enabled *bool  `json:"enabled"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	ctx, user := r.Context(), userID(r)
	var err error
	var view any
	if req.Enabled == nil {
		view, err = s.app.ToggleProtein(ctx, user, req.Tag)
	} else {
		view, err = s.app.SetProtein(ctx, user, req.Tag, *req.Enabled)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	view, err := s.app.SeedFromHTML(r.Context(), userID(r), http.MaxBytesReader(w, r.Body, 4<<20))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	post, err := s.app.Publish(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleShoppingList(w http.ResponseWriter, r *http.Request) {
	list, err := s.app.ShoppingList(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	catalog := s.app.Catalog()
	resp := make(map[meal.Type][]meal.Option, len(meal.Types))
	for _, t := range meal.Types {
		resp[t] = catalog.Options(t)
	}
	writeJSON(w, http.StatusOK, resp)
}
