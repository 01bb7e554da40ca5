package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for profile management and scans",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/api/profiles", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Description string   `json:"description"`
				Name        string   `json:"name"`
				Keywords    []string `json:"keywords"`
				Communities []string `json:"communities"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if len(strings.TrimSpace(body.Description)) < 10 {
				writeError(w, http.StatusBadRequest, "description must be at least 10 characters")
				return
			}

			analysis := env.Analyzer.Analyze(body.Description)
			profile := model.Profile{
				Name:        analysis.ProfileName,
				Description: body.Description,
				Keywords:    analysis.Keywords,
				Communities: analysis.Communities,
			}
			if body.Name != "" {
				profile.Name = body.Name
			}
			if len(body.Keywords) > 0 {
				profile.Keywords = body.Keywords
			}
			if len(body.Communities) > 0 {
				profile.Communities = body.Communities
			}

			created, err := env.Store.CreateProfile(req.Context(), profile)
			if err != nil {
				zap.L().Error("create profile failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "create profile failed")
				return
			}
			writeJSON(w, http.StatusCreated, created)
		})

		r.Post("/api/profiles/{id}/scan", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			profile, err := env.Store.GetProfile(req.Context(), id)
			if err != nil {
				writeError(w, http.StatusNotFound, "profile not found")
				return
			}

			// Scans run asynchronously; the scan record tracks the outcome.
			go func() {
				result, err := env.Pipeline.Scan(ctx, *profile)
				if err != nil {
					zap.L().Error("scan failed", zap.String("profile_id", profile.ID), zap.Error(err))
					return
				}
				zap.L().Info("scan finished",
					zap.String("profile_id", profile.ID),
					zap.Int("leads_found", result.LeadsFound),
				)
			}()

			writeJSON(w, http.StatusAccepted, map[string]string{
				"status":     "accepted",
				"profile_id": id,
			})
		})

		r.Get("/api/profiles/{id}/leads", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			leads, err := env.Store.ListLeads(req.Context(), id, 100)
			if err != nil {
				zap.L().Error("list leads failed", zap.String("profile_id", id), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "list leads failed")
				return
			}
			if leads == nil {
				leads = []model.Lead{}
			}
			writeJSON(w, http.StatusOK, leads)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
