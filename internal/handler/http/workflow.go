package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/handler/http/response"
)

// WorkflowHandler exposes the closing session operations. Each request carries
// the session state and each response, failed ones included, returns it.
type WorkflowHandler interface {
	Open(w http.ResponseWriter, r *http.Request)
	Validate(w http.ResponseWriter, r *http.Request)
	ProcessAttendance(w http.ResponseWriter, r *http.Request)
	Recalculate(w http.ResponseWriter, r *http.Request)
	SaveAttendance(w http.ResponseWriter, r *http.Request)
	ProcessPayroll(w http.ResponseWriter, r *http.Request)
	Clean(w http.ResponseWriter, r *http.Request)
}

type workflowHandlerImpl struct {
	workflowService workflow.Service
}

func NewWorkflowHandler(workflowService workflow.Service) WorkflowHandler {
	return &workflowHandlerImpl{workflowService: workflowService}
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

func respond(w http.ResponseWriter, result interface{}, err error) {
	if err != nil {
		response.HandleErrorWithData(w, err, result)
		return
	}
	response.Success(w, result)
}

func (h *workflowHandlerImpl) Open(w http.ResponseWriter, r *http.Request) {
	var req workflow.OpenRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.workflowService.Open(r.Context(), req)
	respond(w, result, err)
}

func (h *workflowHandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	var req workflow.StateRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.workflowService.Validate(r.Context(), req)
	respond(w, result, err)
}

func (h *workflowHandlerImpl) ProcessAttendance(w http.ResponseWriter, r *http.Request) {
	var req workflow.StateRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.workflowService.ProcessAttendance(r.Context(), req)
	respond(w, result, err)
}

func (h *workflowHandlerImpl) Recalculate(w http.ResponseWriter, r *http.Request) {
	var req workflow.RecalculateRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.workflowService.Recalculate(r.Context(), req)
	respond(w, result, err)
}

func (h *workflowHandlerImpl) SaveAttendance(w http.ResponseWriter, r *http.Request) {
	var req workflow.SaveAttendanceRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.workflowService.SaveAttendance(r.Context(), req)
	respond(w, result, err)
}

func (h *workflowHandlerImpl) ProcessPayroll(w http.ResponseWriter, r *http.Request) {
	var req workflow.ProcessPayrollRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.workflowService.ProcessPayroll(r.Context(), req)
	respond(w, result, err)
}

func (h *workflowHandlerImpl) Clean(w http.ResponseWriter, r *http.Request) {
	var req workflow.CleanRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.workflowService.Clean(r.Context(), req)
	respond(w, result, err)
}
