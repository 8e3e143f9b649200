package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/usecase"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/response"
)

type CommunityHandler struct {
	uc     *usecase.CommunityUsecase
	logger *zap.Logger
}

func NewCommunityHandler(uc *usecase.CommunityUsecase, logger *zap.Logger) *CommunityHandler {
	return &CommunityHandler{uc: uc, logger: logger}
}

func (h *CommunityHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	feed, err := h.uc.Home(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, feed)
}

func (h *CommunityHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	kind := domain.EventKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = domain.EventsAll
	}
	events, err := h.uc.ListEvents(r.Context(), kind)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, events)
}

func (h *CommunityHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.uc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, event)
}

func (h *CommunityHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var e domain.Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.uc.CreateEvent(r.Context(), &e)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *CommunityHandler) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.uc.ListJobs(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, jobs)
}

func (h *CommunityHandler) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	var j domain.Job
	if err := json.NewDecoder(r.Body).Decode(&j); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.uc.CreateJob(r.Context(), &j)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *CommunityHandler) HandleListDonors(w http.ResponseWriter, r *http.Request) {
	f := domain.DonorFilter{
		BloodGroup: r.URL.Query().Get("blood_group"),
		City:       r.URL.Query().Get("city"),
	}
	donors, err := h.uc.ListDonors(r.Context(), f)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, donors)
}

func (h *CommunityHandler) HandleRegisterDonor(w http.ResponseWriter, r *http.Request) {
	var d domain.BloodDonor
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	registered, err := h.uc.RegisterDonor(r.Context(), &d)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, registered)
}

func (h *CommunityHandler) HandleListDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.uc.ListDonations(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, donations)
}

func (h *CommunityHandler) HandleRecordDonation(w http.ResponseWriter, r *http.Request) {
	var d domain.Donation
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	recorded, err := h.uc.RecordDonation(r.Context(), &d)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, recorded)
}

func (h *CommunityHandler) HandleListMatrimonial(w http.ResponseWriter, r *http.Request) {
	f := domain.MatrimonialFilter{
		Gender: r.URL.Query().Get("gender"),
		City:   r.URL.Query().Get("city"),
		Gotra:  r.URL.Query().Get("gotra"),
	}
	profiles, err := h.uc.ListMatrimonial(r.Context(), f)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, profiles)
}

func (h *CommunityHandler) HandleGetMatrimonial(w http.ResponseWriter, r *http.Request) {
	profile, err := h.uc.GetMatrimonial(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

func (h *CommunityHandler) HandleCreateMatrimonial(w http.ResponseWriter, r *http.Request) {
	var m domain.MatrimonialProfile
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.uc.CreateMatrimonial(r.Context(), &m)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *CommunityHandler) HandleRequestContact(w http.ResponseWriter, r *http.Request) {
	req, err := h.uc.RequestContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, req)
}

func (h *CommunityHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.uc.ListMembers(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, members)
}

func (h *CommunityHandler) HandleListPostHolders(w http.ResponseWriter, r *http.Request) {
	holders, err := h.uc.ListPostHolders(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, holders)
}
