package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/jira-worklog/internal/domain"
	"github.com/shaiso/jira-worklog/internal/mq"
	"github.com/shaiso/jira-worklog/internal/repo"
)

const defaultListLimit = 50

// ListSteps возвращает зарегистрированные типы шагов.
// GET /api/v1/steps
func (h *Handler) ListSteps(w http.ResponseWriter, r *http.Request) {
	infos := h.executor.Registry().Describe()

	result := make([]StepResponse, len(infos))
	for i, info := range infos {
		result[i] = StepFromInfo(info)
	}

	writeList(w, result)
}

// CreateInvocation вызывает шаг.
// POST /api/v1/steps/{type}/invocations
//
// Синхронный вызов отвечает 200 с финальным статусом (SUCCEEDED или FAILED).
// С "async": true вызов публикуется в очередь и API отвечает 202 (PENDING).
func (h *Handler) CreateInvocation(w http.ResponseWriter, r *http.Request) {
	stepType := r.PathValue("type")
	if _, err := h.executor.Registry().Get(stepType); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req CreateInvocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, badRequest("invalid request body"))
		return
	}

	inv := domain.NewInvocation(stepType, NormalizeInputs(req.Inputs))

	if req.Async && h.publisher == nil {
		writeError(w, h.logger, errNoQueue)
		return
	}

	if err := h.executor.Create(r.Context(), inv); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if req.Async {
		payload := mq.InvokePayload{
			InvocationID: inv.ID,
			StepType:     inv.StepType,
			Inputs:       inv.Inputs,
		}
		if err := h.publisher.PublishInvoke(r.Context(), payload); err != nil {
			writeError(w, h.logger, err)
			return
		}

		h.logger.Info("invocation queued", "invocation_id", inv.ID, "step_type", inv.StepType)
		writeData(w, http.StatusAccepted, InvocationFromDomain(*inv))
		return
	}

	if err := h.executor.Execute(r.Context(), inv); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusOK, InvocationFromDomain(*inv))
}

// ListInvocations возвращает вызовы с фильтрацией.
// GET /api/v1/invocations?step_type=...&status=...&limit=...&offset=...
func (h *Handler) ListInvocations(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, h.logger, errNoStore)
		return
	}

	q := r.URL.Query()
	filter := repo.InvocationFilter{
		StepType: q.Get("step_type"),
		Limit:    defaultListLimit,
	}

	if status := q.Get("status"); status != "" {
		filter.Status = domain.InvocationStatus(status)
		if !filter.Status.IsValid() {
			writeError(w, h.logger, badRequest("invalid status"))
			return
		}
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			writeError(w, h.logger, badRequest("invalid limit"))
			return
		}
		filter.Limit = limit
	}

	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			writeError(w, h.logger, badRequest("invalid offset"))
			return
		}
		filter.Offset = offset
	}

	invocations, err := h.store.List(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result := make([]InvocationResponse, len(invocations))
	for i, inv := range invocations {
		result[i] = InvocationFromDomain(inv)
	}

	writeList(w, result)
}

// GetInvocation возвращает вызов по ID.
// GET /api/v1/invocations/{id}
func (h *Handler) GetInvocation(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, h.logger, errNoStore)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, badRequest("invalid invocation id"))
		return
	}

	inv, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusOK, InvocationFromDomain(*inv))
}
