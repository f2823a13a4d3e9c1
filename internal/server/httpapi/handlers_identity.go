package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/goalkeeper/internal/common"
	"github.com/dmitrijs2005/goalkeeper/internal/server/services"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	st := sessionFrom(r.Context())
	user, sess, err := s.identity.Register(r.Context(), st.sess, services.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.saveSession(w, r, sess); err != nil {
		s.writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, newUserResponse(user, false))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.identity.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// any guest token the session carried is dropped
	if err := s.saveSession(w, r, services.Session{UserID: user.ID}); err != nil {
		s.writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newUserResponse(user, false))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.saveSession(w, r, services.Session{}); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConvertGuest(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	st := sessionFrom(r.Context())
	user, sess, err := s.identity.Promote(r.Context(), st.sess, services.PromoteRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.saveSession(w, r, sess); err != nil {
		s.writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newUserResponse(user, false))
}

// handleCurrentUser never creates a guest.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context())
	if st.sess.IsZero() {
		respondJSON(w, http.StatusOK, anonymousResponse{IsAnonymous: true})
		return
	}

	user, err := s.identity.Current(r.Context(), st.sess)
	if errors.Is(err, common.ErrorNotFound) {
		respondJSON(w, http.StatusOK, anonymousResponse{IsAnonymous: true})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newUserResponse(user, st.sess.UserID == ""))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	st := sessionFrom(r.Context())
	user, err := s.identity.UpdateProfile(r.Context(), st.sess, services.ProfileRequest{
		DisplayName: req.DisplayName,
		TimeZone:    req.TimeZone,
		Email:       req.Email,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newUserResponse(user, false))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context())
	if err := s.identity.DeleteAccount(r.Context(), st.sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.saveSession(w, r, services.Session{}); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
