package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PeriodHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
}

type periodHandlerImpl struct {
	lifecycle payroll.LifecycleService
}

func NewPeriodHandler(lifecycle payroll.LifecycleService) PeriodHandler {
	return &periodHandlerImpl{lifecycle: lifecycle}
}

// periodParams reads {year} and {month} from the route. It writes the error
// response itself and reports false when either is not a number.
func periodParams(w http.ResponseWriter, r *http.Request) (month, year int, ok bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		response.BadRequest(w, "Invalid year", nil)
		return 0, 0, false
	}
	month, err = strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		response.BadRequest(w, "Invalid month", nil)
		return 0, 0, false
	}
	return month, year, true
}

func (h *periodHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.lifecycle.CreatePeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll period created", result)
}

func (h *periodHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	month, year, ok := periodParams(w, r)
	if !ok {
		return
	}

	result, err := h.lifecycle.GetPeriod(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *periodHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	month, year, ok := periodParams(w, r)
	if !ok {
		return
	}

	result, err := h.lifecycle.ListRuns(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
