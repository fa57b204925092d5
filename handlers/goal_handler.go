package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fitQuestAPI/middleware"
	"fitQuestAPI/services"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type GoalHandler struct {
	goalService *services.GoalService
}

func NewGoalHandler(goalService *services.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

func (h *GoalHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	goals, err := h.goalService.ListGoals(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) AddGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req services.GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Kind == "" {
		respondWithError(w, http.StatusBadRequest, "kind is required")
		return
	}

	goals, err := h.goalService.AddGoal(ctx, clerkID, &req)
	if err != nil {
		log.Printf("AddGoal Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to add goal")
		return
	}

	respondWithJSON(w, http.StatusCreated, goals)
}

func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	goalID := mux.Vars(r)["id"]
	if goalID == "" {
		respondWithError(w, http.StatusBadRequest, "goal id is required")
		return
	}

	var req services.GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	goals, err := h.goalService.UpdateGoal(ctx, clerkID, goalID, &req)
	if err != nil {
		log.Printf("UpdateGoal Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update goal")
		return
	}

	respondWithJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	goalID := mux.Vars(r)["id"]
	if goalID == "" {
		respondWithError(w, http.StatusBadRequest, "goal id is required")
		return
	}

	goals, err := h.goalService.DeleteGoal(ctx, clerkID, goalID)
	if err != nil {
		log.Printf("DeleteGoal Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete goal")
		return
	}

	respondWithJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) ToggleGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	goalID := mux.Vars(r)["id"]
	if goalID == "" {
		respondWithError(w, http.StatusBadRequest, "goal id is required")
		return
	}

	goals, err := h.goalService.ToggleGoal(ctx, clerkID, goalID)
	if err != nil {
		log.Printf("ToggleGoal Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to toggle goal")
		return
	}

	respondWithJSON(w, http.StatusOK, goals)
}
