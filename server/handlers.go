package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dtkav/casemap/aggregate"
	"github.com/dtkav/casemap/usecase"
)

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	items, err := s.list.Items(r.Context())
	if err != nil {
		internalError(w, r, "get-usecase-data", err)
		return
	}
	if items == nil {
		items = []aggregate.Record{}
	}
	writeJSON(w, http.StatusOK, items)
}

func parseItemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("itemId")), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// loadItem fetches an item and its attachments side by side.
func (s *Server) loadItem(ctx context.Context, id int64) (aggregate.Record, []usecase.Attachment, error) {
	var (
		item aggregate.Record
		atts []usecase.Attachment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		item, err = s.list.Item(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		atts, err = s.list.Attachments(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return item, atts, nil
}

func (s *Server) writeItemError(w http.ResponseWriter, r *http.Request, where string, err error) {
	switch {
	case s.isNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Item not found"})
	case errors.Is(err, usecase.ErrNoAttachments):
		writeText(w, http.StatusNotFound, "No attachments found for this item")
	case errors.Is(err, usecase.ErrNoImage):
		writeText(w, http.StatusNotFound, "No image attachments found for this item")
	default:
		internalError(w, r, where, err)
	}
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(r)
	if !ok {
		writeText(w, http.StatusBadRequest, "Missing or invalid itemId")
		return
	}

	item, atts, err := s.loadItem(r.Context(), id)
	if err != nil {
		s.writeItemError(w, r, "get-usecase-image", err)
		return
	}
	chosen, err := usecase.PickImage(usecase.ImageReference(item), atts)
	if err != nil {
		s.writeItemError(w, r, "get-usecase-image", err)
		return
	}
	body, err := s.list.Download(r.Context(), chosen.ServerRelativeURL)
	if err != nil {
		internalError(w, r, "get-usecase-image", err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", usecase.ContentType(chosen.FileName))
	h.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", chosen.FileName))
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) handleCover(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(r)
	if !ok {
		writeText(w, http.StatusBadRequest, "Missing or invalid itemId")
		return
	}
	disposition := "inline"
	switch strings.ToLower(r.URL.Query().Get("download")) {
	case "1", "true":
		disposition = "attachment"
	}

	item, atts, err := s.loadItem(r.Context(), id)
	if err != nil {
		s.writeItemError(w, r, "export-usecase-cover-image", err)
		return
	}
	chosen, err := usecase.PickCover(usecase.ImageReference(item), atts)
	if err != nil {
		s.writeItemError(w, r, "export-usecase-cover-image", err)
		return
	}
	if !usecase.IsImage(chosen.FileName) {
		writeText(w, http.StatusBadRequest, "Chosen attachment is not an image")
		return
	}
	body, err := s.list.Download(r.Context(), chosen.ServerRelativeURL)
	if err != nil {
		internalError(w, r, "export-usecase-cover-image", err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", usecase.ContentType(chosen.FileName))
	h.Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, usecase.ExportName(chosen.FileName)))
	h.Set("Cache-Control", "no-store")
	h.Set("X-Source-Filename", chosen.FileName)
	h.Set("X-Item-Id", strconv.FormatInt(id, 10))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// intParam reads an optional integer query parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return n, nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	opts := s.chart
	var err error
	if opts.PieTopN, err = intParam(r, "pieTopN", opts.PieTopN); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	if opts.CountryTopN, err = intParam(r, "countryTopN", opts.CountryTopN); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.list.Items(r.Context())
	if err != nil {
		internalError(w, r, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, aggregate.Build(items, opts))
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	items, err := s.list.Items(r.Context())
	if err != nil {
		internalError(w, r, "library", err)
		return
	}
	matched := usecase.Filter(items, aggregate.ParseQuery(r.URL.RawQuery), s.chart)
	if matched == nil {
		matched = []aggregate.Record{}
	}
	writeJSON(w, http.StatusOK, matched)
}
