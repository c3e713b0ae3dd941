// Package api provides the HTTP API for observing the transfer market.
// Every endpoint is GET and read-only; negotiation happens in-process.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openclubsim/transfermarket/internal/calendar"
	"github.com/openclubsim/transfermarket/internal/football"
	"github.com/openclubsim/transfermarket/internal/transfer"
)

// Server serves market state over HTTP.
type Server struct {
	Market *transfer.Market
	Cal    *calendar.Calendar
	Port   int
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Search runs a valuation pass over the whole pool, so cap it per client.
	searchLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/clubs", s.handleClubs)
	mux.HandleFunc("/api/v1/club/", s.handleClubDetail)
	mux.HandleFunc("/api/v1/player/", s.handlePlayerDetail)
	mux.HandleFunc("/api/v1/listings", s.handleListings)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/timeline", s.handleTimeline)
	mux.HandleFunc("/api/v1/search", RateLimitMiddleware(searchLimiter, s.handleSearch))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list of extra origins; localhost dev
// servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	today := s.Market.Today()
	dir := s.Market.Directory()

	status := map[string]any{
		"date":        today.Format("2006-01-02"),
		"window_open": s.Cal.IsWindowOpen(today),
		"clubs":       len(dir.Clubs()),
		"players":     len(dir.Players()),
		"deadline_in": s.Cal.DaysUntilDeadline(today),
	}
	if win, ok := s.Cal.WindowAt(today); ok {
		status["window"] = win.Name
	} else if next, ok := s.Cal.NextWindow(today); ok {
		status["next_window"] = next.Name
		status["next_window_opens"] = next.Start.Format("2006-01-02")
	}
	writeJSON(w, status)
}

func (s *Server) handleClubs(w http.ResponseWriter, r *http.Request) {
	type clubSummary struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		Country        string `json:"country"`
		TransferBudget string `json:"transfer_budget"`
		WageBudget     string `json:"wage_budget"`
		SquadSize      int    `json:"squad_size"`
	}

	var result []clubSummary
	for _, c := range s.Market.Directory().Clubs() {
		result = append(result, clubSummary{
			ID:             c.ID.String(),
			Name:           c.Name,
			Country:        c.Country,
			TransferBudget: football.FormatMoney(c.TransferBudget),
			WageBudget:     football.FormatMoney(c.WageBudget),
			SquadSize:      len(c.Squad),
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleClubDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/api/v1/club/")
	if !ok {
		return
	}
	club := s.Market.Directory().ClubByID(id)
	if club == nil {
		http.Error(w, "club not found", http.StatusNotFound)
		return
	}

	today := s.Market.Today()
	type squadEntry struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Position string `json:"position"`
		Age      int    `json:"age"`
		Overall  int    `json:"overall"`
		Value    string `json:"value"`
	}
	var squad []squadEntry
	for _, p := range club.Squad {
		squad = append(squad, squadEntry{
			ID:       p.ID.String(),
			Name:     p.Name,
			Position: p.BestPosition().String(),
			Age:      p.AgeOn(today),
			Overall:  p.Overall(),
			Value:    football.FormatMoney(s.Market.Valuer().Value(p)),
		})
	}

	writeJSON(w, map[string]any{
		"id":              club.ID.String(),
		"name":            club.Name,
		"country":         club.Country,
		"transfer_budget": football.FormatMoney(club.TransferBudget),
		"wage_budget":     football.FormatMoney(club.WageBudget),
		"committed_wages": football.FormatMoney(club.CommittedWages()),
		"squad":           squad,
	})
}

func (s *Server) handlePlayerDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/api/v1/player/")
	if !ok {
		return
	}
	dir := s.Market.Directory()
	player := dir.PlayerByID(id)
	if player == nil {
		http.Error(w, "player not found", http.StatusNotFound)
		return
	}

	today := s.Market.Today()
	valuer := s.Market.Valuer()
	value := valuer.Value(player)

	result := map[string]any{
		"id":          player.ID.String(),
		"name":        player.Name,
		"nationality": player.Nationality,
		"age":         player.AgeOn(today),
		"position":    player.BestPosition().String(),
		"overall":     player.Overall(),
		"potential":   player.Potential,
		"value":       football.FormatMoney(value),
		"wage_demand": football.FormatMoney(valuer.EstimateWageDemand(player, value)),
		"free_agent":  player.IsFreeAgent(),
		"injured":     player.Injured(),
	}
	if club := dir.ClubOf(player); club != nil {
		result["club"] = club.Name
	}
	if player.Contract != nil {
		result["contract"] = map[string]any{
			"weekly_wage":     football.FormatMoney(player.Contract.WeeklyWage),
			"ends":            player.Contract.Ends.Format("2006-01-02"),
			"years_remaining": player.Contract.YearsRemaining(today),
		}
	}
	if listing, err := s.Market.ActiveListing(player.ID); err == nil && listing != nil {
		result["listing"] = map[string]any{
			"asking_price": football.FormatMoney(listing.AskingPrice),
			"type":         string(listing.Type),
		}
	}
	writeJSON(w, result)
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.Market.ActiveListings()
	if err != nil {
		slog.Error("listings query failed", "error", err)
		http.Error(w, "listings unavailable", http.StatusInternalServerError)
		return
	}

	type listingEntry struct {
		Player      string `json:"player"`
		Club        string `json:"club"`
		AskingPrice string `json:"asking_price"`
		Type        string `json:"type"`
		Listed      string `json:"listed"`
	}
	dir := s.Market.Directory()
	var result []listingEntry
	for _, l := range listings {
		entry := listingEntry{
			AskingPrice: football.FormatMoney(l.AskingPrice),
			Type:        string(l.Type),
			Listed:      l.Listed.Format("2006-01-02"),
		}
		if p := dir.PlayerByID(l.PlayerID); p != nil {
			entry.Player = p.Name
		}
		if c := dir.ClubByID(l.ClubID); c != nil {
			entry.Club = c.Name
		}
		result = append(result, entry)
	}
	writeJSON(w, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	since := time.Time{}
	if f := r.URL.Query().Get("since"); f != "" {
		t, err := time.Parse("2006-01-02", f)
		if err != nil {
			http.Error(w, "since must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		since = t
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	records, err := s.Market.RecordsSince(since)
	if err != nil {
		slog.Error("history query failed", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if len(records) > limit {
		records = records[len(records)-limit:]
	}

	type historyEntry struct {
		Player string `json:"player"`
		From   string `json:"from,omitempty"`
		To     string `json:"to"`
		Type   string `json:"type"`
		Fee    string `json:"fee"`
		Date   string `json:"date"`
	}
	dir := s.Market.Directory()
	var result []historyEntry
	for _, rec := range records {
		entry := historyEntry{
			Type: string(rec.Type),
			Fee:  football.FormatMoney(rec.Fee),
			Date: rec.Date.Format("2006-01-02"),
		}
		if p := dir.PlayerByID(rec.PlayerID); p != nil {
			entry.Player = p.Name
		}
		if rec.FromClubID != nil {
			if c := dir.ClubByID(*rec.FromClubID); c != nil {
				entry.From = c.Name
			}
		}
		if c := dir.ClubByID(rec.ToClubID); c != nil {
			entry.To = c.Name
		}
		result = append(result, entry)
	}
	writeJSON(w, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Market.Stats()
	if err != nil {
		slog.Error("stats query failed", "error", err)
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	type event struct {
		Date        string `json:"date"`
		Description string `json:"description"`
	}
	var result []event
	for _, e := range s.Cal.Timeline() {
		result = append(result, event{
			Date:        e.Date.Format("2006-01-02"),
			Description: e.Description,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := transfer.SearchCriteria{
		IncludeOwnPlayers: true,
		Limit:             20,
	}

	if pos := q.Get("position"); pos != "" {
		p, ok := football.ParsePosition(pos)
		if !ok {
			http.Error(w, "unknown position", http.StatusBadRequest)
			return
		}
		criteria.Positions = []football.Position{p}
	}
	if v := q.Get("min_overall"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			criteria.MinOverall = n
		}
	}
	if v := q.Get("max_age"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			criteria.MaxAge = n
		}
	}
	if v := q.Get("max_value"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "max_value must be a number of millions", http.StatusBadRequest)
			return
		}
		criteria.MaxValue = football.Millions(m)
	}
	criteria.ListedOnly = q.Get("listed") == "true"
	criteria.FreeAgentsOnly = q.Get("free_agents") == "true"

	cands, err := s.Market.Search().Search(criteria, nil)
	if err != nil {
		slog.Error("search failed", "error", err)
		http.Error(w, "search unavailable", http.StatusInternalServerError)
		return
	}

	today := s.Market.Today()
	type candidateEntry struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Position string `json:"position"`
		Age      int    `json:"age"`
		Overall  int    `json:"overall"`
		Value    string `json:"value"`
		Status   string `json:"status"`
	}
	var result []candidateEntry
	for _, c := range cands {
		result = append(result, candidateEntry{
			ID:       c.Player.ID.String(),
			Name:     c.Player.Name,
			Position: c.Player.BestPosition().String(),
			Age:      c.Player.AgeOn(today),
			Overall:  c.Player.Overall(),
			Value:    football.FormatMoney(c.Value),
			Status:   string(c.Status),
		})
	}
	writeJSON(w, result)
}

// pathID parses the UUID path segment after the given prefix.
func pathID(w http.ResponseWriter, r *http.Request, prefix string) (uuid.UUID, bool) {
	raw := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, prefix), "/")
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.UUID{}, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
