package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"gregoryjjb/ringtool/puzzles"
)

/////////////////////
// Response helpers

func RespondInternalServiceError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(err.Error()))
}

func RespondNotFoundError(w http.ResponseWriter, body string) {
	w.WriteHeader(http.StatusNotFound)
	if body == "" {
		body = "Not found"
	}
	RespondText(w, body)
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusBadRequest)
	RespondText(w, message)
}

func RespondText(w http.ResponseWriter, body string) {
	w.Write([]byte(body))
}

func RespondJSON(w http.ResponseWriter, body any) {
	RespondJSONStatus(w, http.StatusOK, body)
}

func RespondJSONStatus(w http.ResponseWriter, status int, body any) {
	js, err := json.Marshal(body)
	if err != nil {
		RespondInternalServiceError(w, err)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

// RespondError picks a status from the error's sentinel.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, puzzles.ErrUnknownPuzzle), errors.Is(err, ErrNotExist):
		RespondNotFoundError(w, err.Error())
	case errors.Is(err, ErrValidation):
		RespondBadRequest(w, err.Error())
	case errors.Is(err, ErrQueueFull), errors.Is(err, ErrStopped):
		w.WriteHeader(http.StatusServiceUnavailable)
		RespondText(w, err.Error())
	default:
		RespondInternalServiceError(w, err)
	}
}

type BuildInfo struct {
	Version    string    `json:"version"`
	BuildTime  time.Time `json:"build_time"`
	CommitHash string    `json:"commit_hash"`
}

type puzzleInfo struct {
	*puzzles.Puzzle
	// Params are the defaults after config overrides
	Params puzzles.Params `json:"params"`
}

func puzzleInfos(config *Config) []puzzleInfo {
	all := puzzles.All()
	infos := make([]puzzleInfo, 0, len(all))
	for _, pz := range all {
		infos = append(infos, puzzleInfo{
			Puzzle: pz,
			Params: pz.Defaults.Merge(config.PuzzleDefaults(pz.Name)),
		})
	}
	return infos
}

func NewRouter(config *Config, buildInfo BuildInfo, runner *Runner, storage *Storage) http.Handler {
	slog := log.With().Str("component", "server").Logger()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware(&slog))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		tmpl, err := GetIndexTemplate()
		if err != nil {
			RespondInternalServiceError(w, err)
			return
		}

		data := struct {
			Puzzles []puzzleInfo
			Runs    []Run
			Build   BuildInfo
		}{puzzleInfos(config), runner.History(), buildInfo}

		w.Header().Add("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Err(err).Msg("Failed to render index")
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, buildInfo)
		})

		r.Get("/puzzles", func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, puzzleInfos(config))
		})

		// POST start a run; an empty body takes the defaults
		r.Post("/puzzles/{name}", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")

			var params puzzles.Params
			if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
				RespondBadRequest(w, fmt.Sprintf("invalid params: %s", err))
				return
			}

			run, err := runner.Submit(name, params)
			if err != nil {
				RespondError(w, err)
				return
			}

			w.Header().Add("Location", "/api/runs/"+run.ID)
			RespondJSONStatus(w, http.StatusAccepted, run)
		})

		r.Get("/runs", func(w http.ResponseWriter, r *http.Request) {
			puzzle := r.URL.Query().Get("puzzle")
			if puzzle == "" {
				RespondJSON(w, runner.History())
				return
			}

			ids, err := storage.ListRuns(puzzle)
			if err != nil {
				RespondError(w, err)
				return
			}
			if ids == nil {
				ids = []string{}
			}
			RespondJSON(w, ids)
		})

		r.Get("/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Cache-Control", "no-cache, no-store")
			id := chi.URLParam(r, "id")

			var (
				run Run
				err error
			)
			if puzzle := r.URL.Query().Get("puzzle"); puzzle != "" {
				run, err = storage.LoadRun(puzzle, id)
			} else {
				run, err = runner.Lookup(id)
			}
			if err != nil {
				RespondError(w, err)
				return
			}

			RespondJSON(w, run)
		})

		r.Post("/runs/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if !runner.Cancel(id) {
				RespondNotFoundError(w, fmt.Sprintf("run '%s' is not pending", id))
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/events", createWebsocketHandler(runner))
	})

	return r
}

// StartServer serves until ctx is done, then shuts down gracefully.
func StartServer(ctx context.Context, config *Config, buildInfo BuildInfo, runner *Runner, storage *Storage) error {
	server := &http.Server{
		Addr:              config.Address(),
		Handler:           NewRouter(config, buildInfo, runner, storage),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("listen", server.Addr).Msg("Launching server")
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
