package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/extract"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/report"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/utils"
)

const (
	maxBodyBytes = 1 << 20
	maxBatchSize = 1000
)

type profileResponse struct {
	Name       string            `json:"name"`
	BaseYear   int               `json:"base_year"`
	TargetYear int               `json:"target_year"`
	Roles      []models.RoleKey  `json:"roles"`
	Levels     []models.LevelKey `json:"levels"`
	Locations  []models.GeoKey   `json:"locations"`
	Skills     []string          `json:"skills"`
}

type errorResponse struct {
	Error  string                   `json:"error"`
	Result *models.PredictionResult `json:"result,omitempty"`
}

type batchResponse struct {
	Count   int            `json:"count"`
	Entries []report.Entry `json:"entries"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, profileResponse{
		Name:       s.profile.Name,
		BaseYear:   s.profile.BaseYear,
		TargetYear: s.profile.TargetYear,
		Roles:      s.profile.Roles(),
		Levels:     models.Levels,
		Locations:  s.profile.GeoKeys(),
		Skills:     s.profile.Skills(),
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var q models.Query
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad json: " + err.Error()})
		return
	}
	s.predict(w, r, q)
}

func (s *Server) handlePredictQuery(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := models.Query{
		Role:        params.Get("role"),
		Level:       params.Get("level"),
		Location:    params.Get("location"),
		Skills:      utils.SplitList(params.Get("skills")),
		Description: params.Get("description"),
	}
	if years := strings.TrimSpace(params.Get("years")); years != "" {
		v, err := strconv.ParseFloat(years, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "years must be a number"})
			return
		}
		q.YearsExperience = v
	}
	s.predict(w, r, q)
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request, q models.Query) {
	q = extract.Enrich(s.profile, q)

	if !isStrict(r) {
		writeJSON(w, http.StatusOK, s.engine.Predict(q))
		return
	}

	res, err := s.engine.PredictStrict(q)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Result: &res})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var queries []models.Query
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&queries); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad json: " + err.Error()})
		return
	}
	if len(queries) > maxBatchSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "batch exceeds " + strconv.Itoa(maxBatchSize) + " queries"})
		return
	}

	entries, err := report.Run(r.Context(), s.engine, queries, report.RunOptions{
		Workers: s.opts.Workers,
		Strict:  isStrict(r),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, r.Context().Err()) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Count: len(entries), Entries: entries})
}

func isStrict(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("strict"))
	return v
}

// writeJSON encodes before writing the status so an unencodable value
// becomes a 500 instead of an empty 200
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to encode response: %v", err)
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}
