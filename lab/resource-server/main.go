// Demo resource server composing the consent stack end to end: bearer auth
// deposits the user identity, the consent guard asks a live consent-api
// before serving the gated route.
//
//	go run . &
//	curl -s "localhost:9000/token?email=alice@example.com"
//	curl -s localhost:9000/api/newsletter -H "Authorization: Bearer <token>"
package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"assent/pkg/consent"
	"assent/pkg/consent/tracer"
	"assent/pkg/platform/middleware/auth"
	"assent/pkg/platform/middleware/guard"
)

type apiResponse struct {
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
	Token   string `json:"token,omitempty"`
}

func main() {
	port := getenv("PORT", "9000")
	baseURL := getenv("ASSENT_BASE_URL", "http://localhost:8184")
	apiKey := getenv("ASSENT_API_KEY", "assent-dev-api-key")
	signingKey := getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production")
	// Marketing purpose from the consent-api seed.
	purposeUUID := getenv("NEWSLETTER_PURPOSE_UUID", "11111111-1111-1111-1111-111111111111")

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// The OTel tracer rides the global provider: a no-op here, real spans
	// wherever the host application installs one.
	client, err := consent.New(baseURL, apiKey,
		consent.WithTimeout(5*time.Second),
		consent.WithUserAgent("resource-server-lab/0.1"),
		consent.WithLogger(logger),
		consent.WithTracer(tracer.NewOTel()),
	)
	if err != nil {
		logger.Error("failed to build consent client", "error", err)
		os.Exit(1)
	}

	validator := auth.NewHMACValidator(signingKey)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, apiResponse{Message: "ok"})
	})
	r.Get("/token", func(w http.ResponseWriter, req *http.Request) {
		email := req.URL.Query().Get("email")
		if email == "" {
			writeJSON(w, http.StatusBadRequest, apiResponse{Message: "provide ?email=<address>"})
			return
		}
		token, err := auth.SignToken(signingKey, email, time.Hour)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, apiResponse{Message: "failed to mint token"})
			return
		}
		writeJSON(w, http.StatusOK, apiResponse{Message: "dev token minted", Email: email, Token: token})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.RequireAuth(validator, logger))

		// Authentication alone is enough here.
		api.Get("/profile", func(w http.ResponseWriter, req *http.Request) {
			email, _ := auth.EmailFromRequest(req)
			writeJSON(w, http.StatusOK, apiResponse{Message: "authenticated", Email: email})
		})

		// The newsletter additionally needs an active marketing consent.
		api.Group(func(gated chi.Router) {
			gated.Use(guard.RequireConsent(client, purposeUUID, guard.Config{Logger: logger}))
			gated.Get("/newsletter", func(w http.ResponseWriter, req *http.Request) {
				email, _ := auth.EmailFromRequest(req)
				writeJSON(w, http.StatusOK, apiResponse{Message: "latest newsletter issue", Email: email})
			})
		})
	})

	addr := ":" + port
	logger.Info("resource server listening",
		"addr", addr,
		"consent_api", baseURL,
		"newsletter_purpose", purposeUUID,
	)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
