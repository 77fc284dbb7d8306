package controllers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/trackwise-backend/api/responses"
	"github.com/angelmondragon/trackwise-backend/api/validators"
	"github.com/angelmondragon/trackwise-backend/internal/leads"
	"github.com/angelmondragon/trackwise-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/types"
)

const (
	csvFormField        = "file"
	multipartMemory     = 1 << 20
	msgNoFile           = "Nenhum arquivo enviado"
	msgOnlyCSV          = "Apenas arquivos CSV são permitidos"
	msgFileTooLarge     = "Arquivo muito grande"
	msgInvalidUpload    = "Upload inválido"
	msgLeadsUnavailable = "lead service unavailable"
)

// ImportCSV ingests a multipart CSV upload into the leads table.
func ImportCSV(svc leads.Service, upload config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgLeadsUnavailable))
			return
		}

		if upload.MaxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, upload.MaxBytes)
		}
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgFileTooLarge))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgInvalidUpload))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile(csvFormField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgNoFile))
			return
		}
		defer file.Close()

		if !allowedExtension(header.Filename, upload.AllowedExtensions) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, msgOnlyCSV))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"file_name": header.Filename, "file_size": header.Size})
		}

		result, err := svc.Import(ctx, file)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func allowedExtension(name string, allowed []string) bool {
	if len(allowed) == 0 {
		allowed = []string{".csv"}
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range allowed {
		if ext == strings.ToLower(strings.TrimSpace(candidate)) {
			return true
		}
	}
	return false
}

// ListLeads returns a page of leads filtered by the optional search term.
func ListLeads(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgLeadsUnavailable))
			return
		}

		params := leads.ListParams{
			Params: validators.ParsePage(r),
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
		}
		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// TrackingLookup is the public lookup by tracking code.
func TrackingLookup(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgLeadsUnavailable))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		lead, err := svc.GetByTracking(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lead)
	}
}

func UpdateLead(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgLeadsUnavailable))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body leads.UpdateLeadRequest
		if err := validators.DecodeJSONBodyLenient(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Update(r.Context(), id, body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, leads.MsgLeadUpdated)
	}
}

func DeleteLead(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgLeadsUnavailable))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, leads.MsgLeadDeleted)
	}
}

func DeleteAllLeads(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msgLeadsUnavailable))
			return
		}

		deleted, err := svc.DeleteAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.DeletedBody{Message: leads.MsgAllLeadsDeleted, Deleted: deleted})
	}
}
