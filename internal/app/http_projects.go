package app

import (
	"net/http"
	"strconv"
	"strings"

	"curriculum/api/internal/curriculum"
	"curriculum/api/internal/export"
	"curriculum/api/internal/generator"
)

func (s *HTTPServer) handleProject(w http.ResponseWriter, r *http.Request, projectID string, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			project, err := s.service.GetProject(r.Context(), projectID)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"project": project})
		case http.MethodPut:
			var body SaveProjectInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			project, err := s.service.SaveProject(r.Context(), projectID, body)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"project": project})
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
		return
	}

	if len(rest) == 2 && rest[0] == "scenes" && r.Method == http.MethodPatch {
		var body ScenePatchInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.writeUpdate(w, r)(s.service.UpdateScene(r.Context(), projectID, rest[1], body))
		return
	}

	if len(rest) != 1 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
		return
	}

	switch route := rest[0]; {
	case route == "sessions" && r.Method == http.MethodPost:
		s.writeUpdate(w, r)(s.service.AddSession(r.Context(), projectID))

	case route == "nodes":
		s.handleNodes(w, r, projectID)

	case route == "reorder" && r.Method == http.MethodPost:
		var body ReorderInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.writeUpdate(w, r)(s.service.Reorder(r.Context(), projectID, body))

	case route == "generate" && r.Method == http.MethodPost:
		var body struct {
			Brief generator.Brief `json:"brief"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.writeUpdate(w, r)(s.service.Generate(r.Context(), projectID, body.Brief))

	case route == "import" && r.Method == http.MethodPost:
		raw, err := readBody(r)
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.writeUpdate(w, r)(s.service.Import(r.Context(), projectID, raw))

	case route == "draft" && r.Method == http.MethodDelete:
		project, err := s.service.DiscardDraft(r.Context(), projectID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"project": project})

	case route == "rows" && r.Method == http.MethodGet:
		rows, err := s.service.Rows(r.Context(), projectID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rows": rows})

	case route == "summaries" && r.Method == http.MethodGet:
		summaries, err := s.service.Summaries(r.Context(), projectID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"summaries": summaries})

	case route == "totals" && r.Method == http.MethodGet:
		totals, err := s.service.Totals(r.Context(), projectID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, totals)

	case route == "gates" && r.Method == http.MethodGet:
		report, err := s.service.Gates(r.Context(), projectID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, report)

	case route == "export" && r.Method == http.MethodGet:
		s.handleExport(w, r, projectID)

	case route == "search" && r.Method == http.MethodGet:
		q := r.URL.Query()
		method := curriculum.ABCMethod(strings.TrimSpace(q.Get("abcMethod")))
		if method != "" && !method.Valid() {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "abcMethod is not a known method", nil)
			return
		}
		resp, err := s.service.Search(r.Context(), projectID, q.Get("q"), method, queryInt(r, "limit", 20), queryInt(r, "offset", 0))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)

	case route == "history" && r.Method == http.MethodGet:
		view, err := s.service.History(r.Context(), projectID, queryInt(r, "limit", defaultHistoryLimit))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)

	case route == "compare" && r.Method == http.MethodGet:
		from := strings.TrimSpace(r.URL.Query().Get("from"))
		to := strings.TrimSpace(r.URL.Query().Get("to"))
		if from == "" || to == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "from and to commit hashes are required", nil)
			return
		}
		view, err := s.service.Compare(r.Context(), projectID, from, to)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	}
}

func (s *HTTPServer) handleNodes(w http.ResponseWriter, r *http.Request, projectID string) {
	switch r.Method {
	case http.MethodPost:
		var body AddChildInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.writeUpdate(w, r)(s.service.AddChild(r.Context(), projectID, body))
	case http.MethodPatch:
		var body RenameNodeInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.writeUpdate(w, r)(s.service.RenameNode(r.Context(), projectID, body))
	case http.MethodDelete:
		var body DeleteNodeInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.writeUpdate(w, r)(s.service.DeleteNode(r.Context(), projectID, body))
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	}
}

// writeUpdate adapts a (TreeUpdate, error) pair to a response.
func (s *HTTPServer) writeUpdate(w http.ResponseWriter, r *http.Request) func(TreeUpdate, error) {
	return func(update TreeUpdate, err error) {
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, update)
	}
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request, projectID string) {
	format, ok := export.ParseFormat(r.URL.Query().Get("format"))
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "format must be one of json, csv, html, pdf, docx", nil)
		return
	}
	upload := queryBool(r, "upload")
	out, err := s.service.Export(r.Context(), projectID, format, upload)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if upload {
		writeJSON(w, http.StatusOK, map[string]any{
			"filename": out.Result.Filename,
			"artifact": out.Artifact,
		})
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=\""+out.Result.Filename+"\"")
	w.Header().Set("Content-Type", out.Result.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Result.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Result.Data)
}
