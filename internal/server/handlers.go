package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/display"
	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/layout"
	"github.com/matzehuels/decksmith/pkg/pipeline"
	"github.com/matzehuels/decksmith/pkg/setcatalog"
)

type formatView struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Cols        int     `json:"cols"`
	Rows        int     `json:"rows"`
	CellWidth   float64 `json:"cell_width_mm"`
	CellHeight  float64 `json:"cell_height_mm"`
	Rotate      bool    `json:"rotate"`
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	var out []formatView
	for _, f := range layout.Formats() {
		out = append(out, formatView{
			ID:          f.ID,
			Label:       f.Label,
			Description: f.Description,
			Cols:        f.Cols,
			Rows:        f.Rows,
			CellWidth:   f.CellWidth,
			CellHeight:  f.CellHeight,
			Rotate:      f.Rotate,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSets(w http.ResponseWriter, r *http.Request) {
	if s.sets == nil {
		writeError(w, errors.New(errors.ErrCodeInternal, "set catalog is not configured"))
		return
	}
	limit := setcatalog.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	sets, err := s.sets.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if sets == nil {
		sets = []setcatalog.Set{}
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleCardNamed(w http.ResponseWriter, r *http.Request) {
	if s.runner.Lookup == nil {
		writeError(w, errors.New(errors.ErrCodeInternal, "card lookup is not configured"))
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "name is required"))
		return
	}
	var (
		p   deck.Printing
		err error
	)
	if set := r.URL.Query().Get("set"); set != "" {
		if err := errors.ValidateSetCode(set); err != nil {
			writeError(w, err)
			return
		}
		p, err = s.runner.Lookup.ByNameInSet(r.Context(), name, strings.ToLower(set))
	} else {
		p, err = s.runner.Lookup.ByName(r.Context(), name)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// importRequest is the body of POST /v1/import.
type importRequest struct {
	Name         string `json:"name"`
	List         string `json:"list"`
	PreferredSet string `json:"preferred_set,omitempty"`
	NoTokens     bool   `json:"no_tokens,omitempty"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode import request"))
		return
	}
	opts := pipeline.ImportOptions{NoTokens: req.NoTokens}
	if req.PreferredSet != "" {
		ps, err := s.preferredSet(r, req.PreferredSet)
		if err != nil {
			writeError(w, err)
			return
		}
		opts.PreferredSet = ps
	}

	res, err := s.runner.Import(r.Context(), req.Name, req.List, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Unresolved == nil {
		res.Unresolved = []string{}
	}
	writeJSON(w, http.StatusOK, res)
}

// preferredSet resolves a set code to its catalog entry; unknown codes are
// rejected when a set catalog is available.
func (s *Server) preferredSet(r *http.Request, code string) (*deck.PreferredSet, error) {
	if err := errors.ValidateSetCode(code); err != nil {
		return nil, err
	}
	if s.sets == nil {
		return deck.NewPreferredSet(code, ""), nil
	}
	set, ok, err := s.sets.Find(r.Context(), code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidSet, "unknown set %q", code)
	}
	return deck.NewPreferredSet(set.Code, set.Name), nil
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Format: q.Get("format"),
		Unique: q.Get("unique") == "true",
		Upload: q.Get("upload") == "true",
	}

	d, err := deck.Decode(r.Body, deck.ExtJSON)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := checkImageRefs(d, s.cfg.ImageHosts); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.runner.Export(r.Context(), d, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	if res.Location != "" {
		writeJSON(w, http.StatusCreated, res)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Name+`"`)
	w.Header().Set("X-Decksmith-Failed", strconv.Itoa(res.Stats.Failed))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = bytes.NewReader(res.Data).WriteTo(w)
}

// checkImageRefs rejects decks whose artwork points anywhere but an allowed
// http(s) host.
func checkImageRefs(d *deck.Deck, hosts []string) error {
	check := func(ref string) error {
		if ref == display.Placeholder {
			return nil
		}
		return errors.ValidateRemoteImageRef(ref, hosts)
	}
	for _, it := range d.Cards {
		if err := check(display.ItemFront(it)); err != nil {
			return err
		}
		if back, ok := display.ItemBack(it); ok {
			if err := check(back); err != nil {
				return err
			}
		}
		for _, tok := range it.Tokens {
			if err := check(display.TokenImage(tok)); err != nil {
				return err
			}
		}
	}
	return nil
}
