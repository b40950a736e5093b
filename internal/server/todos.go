package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Tomlord1122/user-todo-api/internal/service"
)

const deletedMessage = "deleted"

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDParam(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	params := service.ListTodosParams{
		Month: lastQueryValue(query, "month"),
		Day:   lastQueryValue(query, "day"),
	}
	if sortBy := lastQueryValue(query, "sort_by"); sortBy != nil {
		params.SortBy = *sortBy
	}

	todos, err := s.todoService.ListTodos(r.Context(), userID, params)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, todos)
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userIDParam(w, r)
	if !ok {
		return
	}

	todo, err := s.todoService.CreateTodo(r.Context(), userID, s.bodyDecoder(w, r))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, todo)
}

// getTodoHandler serves the detail, check and review reads, which all return
// the same record.
func (s *Server) getTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, todoID, ok := s.todoParams(w, r)
	if !ok {
		return
	}

	todo, err := s.todoService.GetTodo(r.Context(), userID, todoID)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, todoID, ok := s.todoParams(w, r)
	if !ok {
		return
	}

	todo, err := s.todoService.UpdateTodo(r.Context(), userID, todoID, s.bodyDecoder(w, r))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, todoID, ok := s.todoParams(w, r)
	if !ok {
		return
	}

	if err := s.todoService.DeleteTodo(r.Context(), userID, todoID); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithMessage(w, http.StatusNoContent, deletedMessage)
}

func (s *Server) checkTodoHandler(w http.ResponseWriter, r *http.Request) {
	userID, todoID, ok := s.todoParams(w, r)
	if !ok {
		return
	}

	todo, err := s.todoService.SetChecked(r.Context(), userID, todoID, s.bodyDecoder(w, r))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) setReviewHandler(w http.ResponseWriter, r *http.Request) {
	userID, todoID, ok := s.todoParams(w, r)
	if !ok {
		return
	}

	todo, err := s.todoService.SetReview(r.Context(), userID, todoID, s.bodyDecoder(w, r))
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) clearReviewHandler(w http.ResponseWriter, r *http.Request) {
	userID, todoID, ok := s.todoParams(w, r)
	if !ok {
		return
	}

	if err := s.todoService.ClearReview(r.Context(), userID, todoID); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}

	respondWithMessage(w, http.StatusNoContent, deletedMessage)
}

// maxIDBits bounds path ids to the BIGINT range of the id columns.
const maxIDBits = 63

// userIDParam parses the user id path parameter. The route only matches
// digits, so a parse failure means the id is out of range and cannot exist.
func (s *Server) userIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, maxIDBits)
	if err != nil {
		respondWithError(w, http.StatusNotFound, service.ErrUserNotFound.Error())
		return 0, false
	}
	return uint(id), true
}

func (s *Server) todoParams(w http.ResponseWriter, r *http.Request) (uint, uint, bool) {
	userID, ok := s.userIDParam(w, r)
	if !ok {
		return 0, 0, false
	}
	todoID, err := strconv.ParseUint(chi.URLParam(r, "todoID"), 10, maxIDBits)
	if err != nil {
		// The user still has to exist for a todo lookup to reach "todo not found".
		if _, err := s.todoService.ResolveUser(r.Context(), userID); err != nil {
			s.respondWithServiceError(w, r, err)
			return 0, 0, false
		}
		respondWithError(w, http.StatusNotFound, service.ErrTodoNotFound.Error())
		return 0, 0, false
	}
	return userID, uint(todoID), true
}

// lastQueryValue returns the last value of key, or nil when the key is absent.
func lastQueryValue(query map[string][]string, key string) *string {
	values, ok := query[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[len(values)-1]
	return &v
}
