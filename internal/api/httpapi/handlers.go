// Package httpapi exposes the workflow engines over HTTP. Each entity family
// gets one resource collection with identical operation shapes.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/harborworks/marinedesk/internal/errors"
	"github.com/harborworks/marinedesk/internal/identity"
	"github.com/harborworks/marinedesk/internal/platform/requestctx"
	"github.com/harborworks/marinedesk/internal/workflow"
	"github.com/harborworks/marinedesk/internal/workflow/engine"
	"github.com/harborworks/marinedesk/internal/workflow/storage"
)

// Service is the engine surface the HTTP layer depends on.
type Service interface {
	Create(ctx context.Context, actor identity.Identity, input engine.CreateInput) (workflow.Record, error)
	Get(ctx context.Context, actor identity.Identity, recordID string) (workflow.Record, error)
	List(ctx context.Context, actor identity.Identity, input engine.ListInput) (storage.RecordPage, error)
	Update(ctx context.Context, actor identity.Identity, recordID string, input engine.UpdateInput) (workflow.Record, error)
	Decide(ctx context.Context, actor identity.Identity, recordID string, decision workflow.Decision, note string) (workflow.Record, error)
	Assign(ctx context.Context, actor identity.Identity, recordID string, assignment workflow.Assignment) (workflow.Record, error)
	Delete(ctx context.Context, actor identity.Identity, recordID string) error
}

var _ Service = (*engine.Engine)(nil)

// resource serves one entity family's collection.
type resource struct {
	svc Service
}

func (res *resource) routes(r chi.Router) {
	r.Post("/", res.create)
	r.Get("/", res.list)
	r.Get("/{recordID}", res.get)
	r.Put("/{recordID}", res.update)
	r.Delete("/{recordID}", res.delete)
	r.Post("/{recordID}/decision", res.decide)
	r.Post("/{recordID}/assignment", res.assign)
}

func callerFrom(r *http.Request) (identity.Identity, error) {
	caller, ok := requestctx.IdentityFromContext(r.Context())
	if !ok {
		return identity.Identity{}, apperrors.New(apperrors.CodeUnauthenticated, "caller identity is missing")
	}
	return caller, nil
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidArgument, "request body is not valid JSON", err)
	}
	return nil
}

func (res *resource) create(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body createRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	record, err := res.svc.Create(r.Context(), caller, toCreateInput(body))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordBody(record))
}

func (res *resource) get(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := res.svc.Get(r.Context(), caller, chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordBody(record))
}

func (res *resource) list(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	input, err := listInputFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := res.svc.List(r.Context(), caller, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageBody(page))
}

func listInputFromQuery(r *http.Request) (engine.ListInput, error) {
	query := r.URL.Query()
	input := engine.ListInput{
		CounterpartID: query.Get("counterpart_id"),
		VesselID:      query.Get("vessel_id"),
		PageToken:     query.Get("page_token"),
	}
	if label := query.Get("status"); label != "" {
		status := workflow.StatusFromLabel(label)
		if status == workflow.StatusUnspecified {
			return engine.ListInput{}, apperrors.WithMetadata(
				apperrors.CodeInvalidArgument,
				"unknown status filter",
				map[string]string{"Status": label},
			)
		}
		input.Status = status
	}
	if raw := query.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 0 {
			return engine.ListInput{}, apperrors.New(apperrors.CodeInvalidArgument, "page_size must be a non-negative integer")
		}
		input.PageSize = size
	}
	return input, nil
}

func (res *resource) update(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body updateRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	record, err := res.svc.Update(r.Context(), caller, chi.URLParam(r, "recordID"), toUpdateInput(body))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordBody(record))
}

func (res *resource) decide(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body decisionRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	decision := workflow.DecisionFromLabel(body.Decision)
	record, err := res.svc.Decide(r.Context(), caller, chi.URLParam(r, "recordID"), decision, body.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordBody(record))
}

func (res *resource) assign(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body assignmentRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	record, err := res.svc.Assign(r.Context(), caller, chi.URLParam(r, "recordID"), toAssignment(body))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordBody(record))
}

func (res *resource) delete(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := res.svc.Delete(r.Context(), caller, chi.URLParam(r, "recordID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
