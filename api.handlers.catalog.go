package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// RecordHandler serves the CRUD endpoints of one catalog kind.
type RecordHandler[T Record[T]] struct {
	api          *APIHandler
	name         string
	plural       string
	title        string
	service      RecordServiceProvider[T]
	decodeCreate func(r *http.Request) (T, error)
	decodeUpdate func(r *http.Request) (T, error)
}

// NewRecordHandler provides a handler decoding request bodies as T.
// The names are used in messages and logs.
func NewRecordHandler[T Record[T]](api *APIHandler, name, plural string, service RecordServiceProvider[T]) *RecordHandler[T] {
	return &RecordHandler[T]{
		api:          api,
		name:         name,
		plural:       plural,
		title:        strings.ToUpper(name[:1]) + name[1:],
		service:      service,
		decodeCreate: DecodeRequestBody[T],
		decodeUpdate: DecodeRequestBody[T],
	}
}

func decodeBorrowingRequest(r *http.Request) (Borrowing, error) {
	req, err := DecodeRequestBody[BorrowingRequest](r)
	return req.Borrowing(), err
}

func decodeBorrowingUpdateRequest(r *http.Request) (Borrowing, error) {
	req, err := DecodeRequestBody[BorrowingUpdateRequest](r)
	return req.Borrowing(), err
}

// statusFromError maps service errors to response status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRecord), errors.Is(err, errInvalidIDParam):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail logs the error and sends the error response. Validation and lookup
// failures carry the error message as data.
func (h *RecordHandler[T]) fail(w http.ResponseWriter, r *http.Request, status int, message string, err error, fields ...zap.Field) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	fields = append(fields, zap.String("request.id", requestID), zap.Error(err))
	var data interface{} = EmptyData
	if status < http.StatusInternalServerError {
		h.api.logger.Warn(message, fields...)
		data = err.Error()
	} else {
		h.api.logger.Error(message, fields...)
	}
	if err = WriteErrorResponse(r.Context(), w, NewAPIError(requestID, status, message, data)); err != nil {
		h.api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (h *RecordHandler[T]) succeed(w http.ResponseWriter, r *http.Request, status int, message string, total *int, data interface{}) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	if err := WriteResponse(r.Context(), w, GenericResponse(requestID, status, message, total, data)); err != nil {
		h.api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (h *RecordHandler[T]) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rec, err := h.decodeCreate(r)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "failed to create the "+h.name, err)
		return
	}

	rec, err = h.service.Add(r.Context(), rec)
	if err != nil {
		h.fail(w, r, statusFromError(err), "failed to create the "+h.name, err)
		return
	}
	h.api.logger.Info("success to create "+h.name,
		zap.Int64(h.name+".id", rec.RecordID()),
		zap.String("request.id", GetValueFromContext(r.Context(), RequestIDContextKey)),
	)
	h.succeed(w, r, http.StatusCreated, h.title+" created successfully.", nil, rec)
}

func (h *RecordHandler[T]) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	recs, err := h.service.GetAll(r.Context())
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, "failed to get all "+h.plural, err)
		return
	}
	total := len(recs)
	h.succeed(w, r, http.StatusOK, "All "+h.plural+" fetched successfully.", &total, recs)
}

func (h *RecordHandler[T]) GetOne(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := readIDParam(ps)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "invalid "+h.name+" id", err, zap.String(h.name+".id", ps.ByName("id")))
		return
	}
	rec, err := h.service.GetOne(r.Context(), id)
	if err != nil {
		status := statusFromError(err)
		message := "failed to get the " + h.name
		if status == http.StatusNotFound {
			message = h.name + " does not exist"
		}
		h.fail(w, r, status, message, err, zap.Int64(h.name+".id", id))
		return
	}
	h.succeed(w, r, http.StatusOK, h.title+" fetched successfully.", nil, rec)
}

func (h *RecordHandler[T]) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := readIDParam(ps)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "invalid "+h.name+" id", err, zap.String(h.name+".id", ps.ByName("id")))
		return
	}
	rec, err := h.decodeUpdate(r)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "failed to update the "+h.name, err, zap.Int64(h.name+".id", id))
		return
	}

	rec, err = h.service.Update(r.Context(), id, rec)
	if err != nil {
		status := statusFromError(err)
		message := "failed to update the " + h.name
		if status == http.StatusNotFound {
			message = h.name + " does not exist"
		}
		h.fail(w, r, status, message, err, zap.Int64(h.name+".id", id))
		return
	}
	h.api.logger.Info("success to update "+h.name,
		zap.Int64(h.name+".id", id),
		zap.String("request.id", GetValueFromContext(r.Context(), RequestIDContextKey)),
	)
	h.succeed(w, r, http.StatusOK, h.title+" updated successfully.", nil, rec)
}

func (h *RecordHandler[T]) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := readIDParam(ps)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "invalid "+h.name+" id", err, zap.String(h.name+".id", ps.ByName("id")))
		return
	}
	rec, err := h.service.GetOne(r.Context(), id)
	if err == nil {
		err = h.service.Delete(r.Context(), id)
	}
	if err != nil {
		status := statusFromError(err)
		message := "failed to delete the " + h.name
		if status == http.StatusNotFound {
			message = h.name + " does not exist"
		}
		h.fail(w, r, status, message, err, zap.Int64(h.name+".id", id))
		return
	}
	h.api.logger.Info("success to delete "+h.name,
		zap.Int64(h.name+".id", id),
		zap.String("request.id", GetValueFromContext(r.Context(), RequestIDContextKey)),
	)
	h.succeed(w, r, http.StatusOK, h.title+" deleted successfully.", nil, rec)
}
