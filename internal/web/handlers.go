package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/proposals/internal/core"
)

const (
	maxValueBody = 64 << 10

	// multipartOverhead covers headers and non-file parts of an upload.
	multipartOverhead = 1 << 20
)

type valueRequest struct {
	Value string `json:"value"`
}

type attachmentRequest struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	DataURL  string `json:"dataUrl"`
}

type healthResponse struct {
	Status string `json:"status"`
	Forms  int    `json:"forms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthResponse{Status: "ok", Forms: s.sessions.Len()})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, core.AvailableOptions())
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.sessions.Create()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondForm(w, r, ctrl, ctrl.State(), http.StatusCreated)
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.form(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondForm(w, r, ctrl, ctrl.State(), http.StatusOK)
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "formID"))
	if err != nil {
		s.respondError(w, r, ErrFormNotFound)
		return
	}
	if err := s.sessions.Delete(id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.form(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req valueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	field := core.TopLevelField(chi.URLParam(r, "field"))
	f := ctrl.SetField(s.requestContext(r), field, req.Value)
	s.respondForm(w, r, ctrl, f, http.StatusOK)
}

func (s *Server) handleSelectAttachment(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.form(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	att, err := s.readAttachment(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	f := ctrl.SelectAttachment(s.requestContext(r), att)
	s.respondForm(w, r, ctrl, f, http.StatusOK)
}

func (s *Server) handleClearAttachment(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.form(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	f := ctrl.ClearAttachment(s.requestContext(r))
	s.respondForm(w, r, ctrl, f, http.StatusOK)
}

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.form(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	f := ctrl.AddRecord(s.requestContext(r))
	s.respondForm(w, r, ctrl, f, http.StatusOK)
}

func (s *Server) handleRemoveRecord(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.form(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	id, err := recordID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	f := ctrl.RemoveRecord(s.requestContext(r), id)
	s.respondForm(w, r, ctrl, f, http.StatusOK)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.form(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	id, err := recordID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	var req valueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	field := core.RecordField(chi.URLParam(r, "field"))
	f := ctrl.UpdateRecord(s.requestContext(r), id, field, req.Value)
	s.respondForm(w, r, ctrl, f, http.StatusOK)
}

// handleSubmit runs the whole submission before responding.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.form(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	f := ctrl.Submit(s.requestContext(r))
	s.respondForm(w, r, ctrl, f, http.StatusOK)
}

// form looks up the controller named by the formID parameter.
func (s *Server) form(r *http.Request) (*core.Controller, error) {
	id, err := uuid.Parse(chi.URLParam(r, "formID"))
	if err != nil {
		return nil, ErrFormNotFound
	}
	return s.sessions.Get(id)
}

func (s *Server) requestContext(r *http.Request) context.Context {
	return WithRequestMetadata(r.Context(), r, s.translator.ResolveTag(r))
}

// respondForm writes the form state. Error messages turn a 200 into 422 for
// JSON clients; HTMX clients always get 200 so the alert is swapped in.
func (s *Server) respondForm(w http.ResponseWriter, r *http.Request, ctrl *core.Controller, f core.Form, status int) {
	tag := s.translator.ResolveTag(r)
	if isHTMX(r) {
		s.renderAlert(w, r, tag, f.Message, http.StatusOK)
		return
	}
	if status == http.StatusOK && f.Message.Kind == core.KindError {
		status = http.StatusUnprocessableEntity
	}
	writeJSONStatus(w, status, s.formView(ctrl.ID().String(), tag, f))
}

func (s *Server) maxAttachmentSize() int64 {
	if s.cfg.Attachment.MaxSize > 0 {
		return s.cfg.Attachment.MaxSize
	}
	return core.MaxAttachmentSize
}

// readAttachment accepts a multipart "file" part or a JSON data URL. Files
// over the size limit are not buffered; the returned attachment only
// carries a size past the limit so selection rejects it.
func (s *Server) readAttachment(w http.ResponseWriter, r *http.Request) (core.Attachment, error) {
	maxSize := s.maxAttachmentSize()
	tooLarge := core.Attachment{Size: maxSize + 1}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		limit := int64(base64.StdEncoding.EncodedLen(int(maxSize))) + maxValueBody
		r.Body = http.MaxBytesReader(w, r.Body, limit)

		var req attachmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return tooLarge, nil
			}
			return core.Attachment{}, fmt.Errorf("%w: decode attachment: %v", errBadRequest, err)
		}
		att, err := core.AttachmentFromDataURL(req.Name, req.MimeType, req.DataURL)
		if err != nil {
			return core.Attachment{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return att, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		return core.Attachment{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return core.Attachment{}, fmt.Errorf("%w: no file part", errBadRequest)
		}
		if err != nil {
			return core.Attachment{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		name := part.FileName()
		data, err := io.ReadAll(io.LimitReader(part, maxSize+1))
		part.Close()
		if err != nil {
			return core.Attachment{}, fmt.Errorf("%w: read file: %v", errBadRequest, err)
		}
		if int64(len(data)) > maxSize {
			tooLarge.Name = name
			return tooLarge, nil
		}

		ct := part.Header.Get("Content-Type")
		if ct == "" {
			ct = core.MediaTypeFor(name)
		}
		return core.Attachment{
			Handle:    core.BytesHandle(data),
			Name:      name,
			MediaType: ct,
			Size:      int64(len(data)),
		}, nil
	}
}

func recordID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "recordID"))
	if err != nil {
		return 0, fmt.Errorf("%w: record id: %v", errBadRequest, err)
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxValueBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
