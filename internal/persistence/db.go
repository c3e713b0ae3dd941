// Package persistence provides SQLite-based storage for market state and
// transfer history.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/openclubsim/transfermarket/internal/football"
	"github.com/openclubsim/transfermarket/internal/transfer"
)

// DB wraps a SQLite connection and implements transfer.Store.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		club_id TEXT NOT NULL,
		asking_price TEXT NOT NULL,
		min_price TEXT NOT NULL,
		type TEXT NOT NULL,
		listed TEXT NOT NULL,
		expires TEXT,
		active INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS negotiations (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		selling_club_id TEXT,
		buying_club_id TEXT NOT NULL,
		status TEXT NOT NULL,
		type TEXT NOT NULL,
		initial_offer TEXT NOT NULL,
		current_offer TEXT NOT NULL,
		agreed_fee TEXT NOT NULL,
		rounds INTEGER NOT NULL,
		sell_on_percent REAL NOT NULL,
		loan_fee TEXT NOT NULL,
		wage_percent REAL NOT NULL,
		buy_option TEXT NOT NULL,
		buy_obligation INTEGER NOT NULL,
		started TEXT NOT NULL,
		completed TEXT,
		offer_history_json TEXT NOT NULL,
		bonuses_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contract_offers (
		id TEXT PRIMARY KEY,
		negotiation_id TEXT NOT NULL,
		player_id TEXT NOT NULL,
		club_id TEXT NOT NULL,
		status TEXT NOT NULL,
		years INTEGER NOT NULL,
		weekly_wage TEXT NOT NULL,
		demanded_wage TEXT NOT NULL,
		final_wage TEXT NOT NULL,
		signing_bonus TEXT NOT NULL,
		agent_fee TEXT NOT NULL,
		release_clause TEXT NOT NULL,
		wage_rise_percent REAL NOT NULL,
		rounds INTEGER NOT NULL,
		offered TEXT NOT NULL,
		signed TEXT
	);

	CREATE TABLE IF NOT EXISTS transfer_history (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL,
		from_club_id TEXT,
		to_club_id TEXT NOT NULL,
		type TEXT NOT NULL,
		fee TEXT NOT NULL,
		total_cost TEXT NOT NULL,
		contract_years INTEGER NOT NULL,
		weekly_wage TEXT NOT NULL,
		agent_fee TEXT NOT NULL,
		signing_bonus TEXT NOT NULL,
		sell_on_percent REAL NOT NULL,
		date TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS market_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_listings_player ON listings(player_id, active);
	CREATE INDEX IF NOT EXISTS idx_negotiations_player ON negotiations(player_id, buying_club_id, status);
	CREATE INDEX IF NOT EXISTS idx_contracts_negotiation ON contract_offers(negotiation_id);
	CREATE INDEX IF NOT EXISTS idx_history_date ON transfer_history(date);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type listingRow struct {
	ID          string         `db:"id"`
	PlayerID    string         `db:"player_id"`
	ClubID      string         `db:"club_id"`
	AskingPrice string         `db:"asking_price"`
	MinPrice    string         `db:"min_price"`
	Type        string         `db:"type"`
	Listed      string         `db:"listed"`
	Expires     sql.NullString `db:"expires"`
	Active      int            `db:"active"`
}

// SaveListing upserts a listing.
func (db *DB) SaveListing(l *transfer.Listing) error {
	active := 0
	if l.Active {
		active = 1
	}
	var expires any
	if l.Expires != nil {
		expires = l.Expires.Format(time.RFC3339)
	}
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO listings
		(id, player_id, club_id, asking_price, min_price, type, listed, expires, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID.String(), l.PlayerID.String(), l.ClubID.String(),
		l.AskingPrice.String(), l.MinPrice.String(), string(l.Type),
		l.Listed.Format(time.RFC3339), expires, active,
	)
	if err != nil {
		return fmt.Errorf("save listing %s: %w", l.ID, err)
	}
	return nil
}

// ActiveListing returns the player's active listing, or nil.
func (db *DB) ActiveListing(playerID uuid.UUID) (*transfer.Listing, error) {
	var row listingRow
	err := db.conn.Get(&row,
		"SELECT * FROM listings WHERE player_id = ? AND active = 1 ORDER BY listed DESC LIMIT 1",
		playerID.String(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load listing for %s: %w", playerID, err)
	}
	return rowToListing(row)
}

// ActiveListings returns every active listing, oldest first.
func (db *DB) ActiveListings() ([]*transfer.Listing, error) {
	var rows []listingRow
	err := db.conn.Select(&rows, "SELECT * FROM listings WHERE active = 1 ORDER BY listed, id")
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	out := make([]*transfer.Listing, 0, len(rows))
	for _, row := range rows {
		l, err := rowToListing(row)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// DeactivateListings takes every listing for the player off the market.
func (db *DB) DeactivateListings(playerID uuid.UUID) error {
	_, err := db.conn.Exec("UPDATE listings SET active = 0 WHERE player_id = ?", playerID.String())
	if err != nil {
		return fmt.Errorf("deactivate listings for %s: %w", playerID, err)
	}
	return nil
}

func rowToListing(row listingRow) (*transfer.Listing, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("listing id: %w", err)
	}
	playerID, err := uuid.Parse(row.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("listing player id: %w", err)
	}
	clubID, err := uuid.Parse(row.ClubID)
	if err != nil {
		return nil, fmt.Errorf("listing club id: %w", err)
	}
	asking, err := decimal.NewFromString(row.AskingPrice)
	if err != nil {
		return nil, fmt.Errorf("listing asking price: %w", err)
	}
	min, err := decimal.NewFromString(row.MinPrice)
	if err != nil {
		return nil, fmt.Errorf("listing min price: %w", err)
	}
	listed, err := time.Parse(time.RFC3339, row.Listed)
	if err != nil {
		return nil, fmt.Errorf("listing date: %w", err)
	}
	l := &transfer.Listing{
		ID:          id,
		PlayerID:    playerID,
		ClubID:      clubID,
		AskingPrice: asking,
		MinPrice:    min,
		Type:        transfer.Type(row.Type),
		Listed:      listed,
		Active:      row.Active != 0,
	}
	if row.Expires.Valid {
		t, err := time.Parse(time.RFC3339, row.Expires.String)
		if err != nil {
			return nil, fmt.Errorf("listing expiry: %w", err)
		}
		l.Expires = &t
	}
	return l, nil
}

type negotiationRow struct {
	ID            string         `db:"id"`
	PlayerID      string         `db:"player_id"`
	SellingClubID sql.NullString `db:"selling_club_id"`
	BuyingClubID  string         `db:"buying_club_id"`
	Status        string         `db:"status"`
	Type          string         `db:"type"`
	InitialOffer  string         `db:"initial_offer"`
	CurrentOffer  string         `db:"current_offer"`
	AgreedFee     string         `db:"agreed_fee"`
	Rounds        int            `db:"rounds"`
	SellOnPercent float64        `db:"sell_on_percent"`
	LoanFee       string         `db:"loan_fee"`
	WagePercent   float64        `db:"wage_percent"`
	BuyOption     string         `db:"buy_option"`
	BuyObligation int            `db:"buy_obligation"`
	Started       string         `db:"started"`
	Completed     sql.NullString `db:"completed"`
	OfferHistory  string         `db:"offer_history_json"`
	Bonuses       string         `db:"bonuses_json"`
}

// SaveNegotiation upserts a negotiation with its full offer history.
func (db *DB) SaveNegotiation(n *transfer.Negotiation) error {
	historyJSON, err := json.Marshal(n.OfferHistory)
	if err != nil {
		return fmt.Errorf("encode offer history: %w", err)
	}
	bonusesJSON, err := json.Marshal(n.PerformanceBonuses)
	if err != nil {
		return fmt.Errorf("encode bonuses: %w", err)
	}
	var seller any
	if n.SellingClubID != nil {
		seller = n.SellingClubID.String()
	}
	var completed any
	if n.Completed != nil {
		completed = n.Completed.Format(time.RFC3339)
	}
	obligation := 0
	if n.BuyObligation {
		obligation = 1
	}
	_, err = db.conn.Exec(`INSERT OR REPLACE INTO negotiations
		(id, player_id, selling_club_id, buying_club_id, status, type,
		 initial_offer, current_offer, agreed_fee, rounds, sell_on_percent,
		 loan_fee, wage_percent, buy_option, buy_obligation, started, completed,
		 offer_history_json, bonuses_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID.String(), n.PlayerID.String(), seller, n.BuyingClubID.String(),
		string(n.Status), string(n.Type),
		n.InitialOffer.String(), n.CurrentOffer.String(), n.AgreedFee.String(),
		n.Rounds, n.SellOnPercent,
		n.LoanFee.String(), n.WagePercent, n.BuyOption.String(), obligation,
		n.Started.Format(time.RFC3339), completed,
		string(historyJSON), string(bonusesJSON),
	)
	if err != nil {
		return fmt.Errorf("save negotiation %s: %w", n.ID, err)
	}
	return nil
}

// OpenNegotiation returns the live negotiation between a buyer and a
// player, or nil.
func (db *DB) OpenNegotiation(playerID, buyerID uuid.UUID) (*transfer.Negotiation, error) {
	var row negotiationRow
	err := db.conn.Get(&row,
		"SELECT * FROM negotiations WHERE player_id = ? AND buying_club_id = ? AND status = ? LIMIT 1",
		playerID.String(), buyerID.String(), string(transfer.StatusNegotiating),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load open negotiation: %w", err)
	}
	return rowToNegotiation(row)
}

// NegotiationsByStatus returns every negotiation in the given state.
func (db *DB) NegotiationsByStatus(s transfer.Status) ([]*transfer.Negotiation, error) {
	var rows []negotiationRow
	err := db.conn.Select(&rows,
		"SELECT * FROM negotiations WHERE status = ? ORDER BY started, id", string(s))
	if err != nil {
		return nil, fmt.Errorf("load negotiations: %w", err)
	}
	out := make([]*transfer.Negotiation, 0, len(rows))
	for _, row := range rows {
		n, err := rowToNegotiation(row)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func rowToNegotiation(row negotiationRow) (*transfer.Negotiation, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("negotiation id: %w", err)
	}
	playerID, err := uuid.Parse(row.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("negotiation player id: %w", err)
	}
	buyerID, err := uuid.Parse(row.BuyingClubID)
	if err != nil {
		return nil, fmt.Errorf("negotiation buyer id: %w", err)
	}
	initial, err := decimal.NewFromString(row.InitialOffer)
	if err != nil {
		return nil, fmt.Errorf("negotiation initial offer: %w", err)
	}
	current, err := decimal.NewFromString(row.CurrentOffer)
	if err != nil {
		return nil, fmt.Errorf("negotiation current offer: %w", err)
	}
	agreed, err := decimal.NewFromString(row.AgreedFee)
	if err != nil {
		return nil, fmt.Errorf("negotiation agreed fee: %w", err)
	}
	loanFee, err := decimal.NewFromString(row.LoanFee)
	if err != nil {
		return nil, fmt.Errorf("negotiation loan fee: %w", err)
	}
	buyOption, err := decimal.NewFromString(row.BuyOption)
	if err != nil {
		return nil, fmt.Errorf("negotiation buy option: %w", err)
	}
	started, err := time.Parse(time.RFC3339, row.Started)
	if err != nil {
		return nil, fmt.Errorf("negotiation start date: %w", err)
	}

	n := &transfer.Negotiation{
		ID:            id,
		PlayerID:      playerID,
		BuyingClubID:  buyerID,
		Status:        transfer.Status(row.Status),
		Type:          transfer.Type(row.Type),
		InitialOffer:  initial,
		CurrentOffer:  current,
		AgreedFee:     agreed,
		Rounds:        row.Rounds,
		SellOnPercent: row.SellOnPercent,
		LoanFee:       loanFee,
		WagePercent:   row.WagePercent,
		BuyOption:     buyOption,
		BuyObligation: row.BuyObligation != 0,
		Started:       started,
	}
	if row.SellingClubID.Valid {
		sellerID, err := uuid.Parse(row.SellingClubID.String)
		if err != nil {
			return nil, fmt.Errorf("negotiation seller id: %w", err)
		}
		n.SellingClubID = &sellerID
	}
	if row.Completed.Valid {
		t, err := time.Parse(time.RFC3339, row.Completed.String)
		if err != nil {
			return nil, fmt.Errorf("negotiation completion date: %w", err)
		}
		n.Completed = &t
	}
	if err := json.Unmarshal([]byte(row.OfferHistory), &n.OfferHistory); err != nil {
		return nil, fmt.Errorf("decode offer history: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Bonuses), &n.PerformanceBonuses); err != nil {
		return nil, fmt.Errorf("decode bonuses: %w", err)
	}
	return n, nil
}

type contractRow struct {
	ID              string         `db:"id"`
	NegotiationID   string         `db:"negotiation_id"`
	PlayerID        string         `db:"player_id"`
	ClubID          string         `db:"club_id"`
	Status          string         `db:"status"`
	Years           int            `db:"years"`
	WeeklyWage      string         `db:"weekly_wage"`
	DemandedWage    string         `db:"demanded_wage"`
	FinalWage       string         `db:"final_wage"`
	SigningBonus    string         `db:"signing_bonus"`
	AgentFee        string         `db:"agent_fee"`
	ReleaseClause   string         `db:"release_clause"`
	WageRisePercent float64        `db:"wage_rise_percent"`
	Rounds          int            `db:"rounds"`
	Offered         string         `db:"offered"`
	Signed          sql.NullString `db:"signed"`
}

// SaveContract upserts a contract offer.
func (db *DB) SaveContract(o *transfer.ContractOffer) error {
	var signed any
	if o.Signed != nil {
		signed = o.Signed.Format(time.RFC3339)
	}
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO contract_offers
		(id, negotiation_id, player_id, club_id, status, years,
		 weekly_wage, demanded_wage, final_wage, signing_bonus, agent_fee,
		 release_clause, wage_rise_percent, rounds, offered, signed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID.String(), o.NegotiationID.String(), o.PlayerID.String(), o.ClubID.String(),
		string(o.Status), o.Years,
		o.WeeklyWage.String(), o.DemandedWage.String(), o.FinalWage.String(),
		o.SigningBonus.String(), o.AgentFee.String(), o.ReleaseClause.String(),
		o.WageRisePercent, o.Rounds, o.Offered.Format(time.RFC3339), signed,
	)
	if err != nil {
		return fmt.Errorf("save contract offer %s: %w", o.ID, err)
	}
	return nil
}

// ContractForNegotiation returns the contract offer tied to a negotiation,
// or nil.
func (db *DB) ContractForNegotiation(negotiationID uuid.UUID) (*transfer.ContractOffer, error) {
	var row contractRow
	err := db.conn.Get(&row,
		"SELECT * FROM contract_offers WHERE negotiation_id = ? LIMIT 1",
		negotiationID.String(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load contract offer: %w", err)
	}
	return rowToContract(row)
}

func rowToContract(row contractRow) (*transfer.ContractOffer, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("contract id: %w", err)
	}
	negotiationID, err := uuid.Parse(row.NegotiationID)
	if err != nil {
		return nil, fmt.Errorf("contract negotiation id: %w", err)
	}
	playerID, err := uuid.Parse(row.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("contract player id: %w", err)
	}
	clubID, err := uuid.Parse(row.ClubID)
	if err != nil {
		return nil, fmt.Errorf("contract club id: %w", err)
	}
	o := &transfer.ContractOffer{
		ID:              id,
		NegotiationID:   negotiationID,
		PlayerID:        playerID,
		ClubID:          clubID,
		Status:          transfer.ContractStatus(row.Status),
		Years:           row.Years,
		WageRisePercent: row.WageRisePercent,
		Rounds:          row.Rounds,
	}
	fields := []struct {
		dst  *decimal.Decimal
		src  string
		name string
	}{
		{&o.WeeklyWage, row.WeeklyWage, "weekly wage"},
		{&o.DemandedWage, row.DemandedWage, "demanded wage"},
		{&o.FinalWage, row.FinalWage, "final wage"},
		{&o.SigningBonus, row.SigningBonus, "signing bonus"},
		{&o.AgentFee, row.AgentFee, "agent fee"},
		{&o.ReleaseClause, row.ReleaseClause, "release clause"},
	}
	for _, f := range fields {
		v, err := decimal.NewFromString(f.src)
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", f.name, err)
		}
		*f.dst = v
	}
	offered, err := time.Parse(time.RFC3339, row.Offered)
	if err != nil {
		return nil, fmt.Errorf("contract offer date: %w", err)
	}
	o.Offered = offered
	if row.Signed.Valid {
		t, err := time.Parse(time.RFC3339, row.Signed.String)
		if err != nil {
			return nil, fmt.Errorf("contract signing date: %w", err)
		}
		o.Signed = &t
	}
	return o, nil
}

type recordRow struct {
	ID            string         `db:"id"`
	PlayerID      string         `db:"player_id"`
	FromClubID    sql.NullString `db:"from_club_id"`
	ToClubID      string         `db:"to_club_id"`
	Type          string         `db:"type"`
	Fee           string         `db:"fee"`
	TotalCost     string         `db:"total_cost"`
	ContractYears int            `db:"contract_years"`
	WeeklyWage    string         `db:"weekly_wage"`
	AgentFee      string         `db:"agent_fee"`
	SigningBonus  string         `db:"signing_bonus"`
	SellOnPercent float64        `db:"sell_on_percent"`
	Date          string         `db:"date"`
}

// AppendRecord writes one immutable transfer history entry.
func (db *DB) AppendRecord(r *transfer.TransferRecord) error {
	var from any
	if r.FromClubID != nil {
		from = r.FromClubID.String()
	}
	_, err := db.conn.Exec(`INSERT INTO transfer_history
		(id, player_id, from_club_id, to_club_id, type, fee, total_cost,
		 contract_years, weekly_wage, agent_fee, signing_bonus, sell_on_percent, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.PlayerID.String(), from, r.ToClubID.String(),
		string(r.Type), r.Fee.String(), r.TotalCost.String(),
		r.ContractYears, r.WeeklyWage.String(), r.AgentFee.String(),
		r.SigningBonus.String(), r.SellOnPercent, r.Date.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("append transfer record %s: %w", r.ID, err)
	}
	return nil
}

// RecordsSince returns the history entries on or after t, oldest first.
func (db *DB) RecordsSince(t time.Time) ([]*transfer.TransferRecord, error) {
	var rows []recordRow
	err := db.conn.Select(&rows,
		"SELECT * FROM transfer_history WHERE date >= ? ORDER BY date, id",
		t.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("load transfer history: %w", err)
	}
	out := make([]*transfer.TransferRecord, 0, len(rows))
	for _, row := range rows {
		r, err := rowToRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func rowToRecord(row recordRow) (*transfer.TransferRecord, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("record id: %w", err)
	}
	playerID, err := uuid.Parse(row.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("record player id: %w", err)
	}
	toClubID, err := uuid.Parse(row.ToClubID)
	if err != nil {
		return nil, fmt.Errorf("record club id: %w", err)
	}
	fee, err := decimal.NewFromString(row.Fee)
	if err != nil {
		return nil, fmt.Errorf("record fee: %w", err)
	}
	totalCost, err := decimal.NewFromString(row.TotalCost)
	if err != nil {
		return nil, fmt.Errorf("record total cost: %w", err)
	}
	wage, err := decimal.NewFromString(row.WeeklyWage)
	if err != nil {
		return nil, fmt.Errorf("record wage: %w", err)
	}
	agentFee, err := decimal.NewFromString(row.AgentFee)
	if err != nil {
		return nil, fmt.Errorf("record agent fee: %w", err)
	}
	bonus, err := decimal.NewFromString(row.SigningBonus)
	if err != nil {
		return nil, fmt.Errorf("record signing bonus: %w", err)
	}
	date, err := time.Parse(time.RFC3339, row.Date)
	if err != nil {
		return nil, fmt.Errorf("record date: %w", err)
	}
	r := &transfer.TransferRecord{
		ID:            id,
		PlayerID:      playerID,
		ToClubID:      toClubID,
		Type:          transfer.Type(row.Type),
		Fee:           fee,
		TotalCost:     totalCost,
		ContractYears: row.ContractYears,
		WeeklyWage:    wage,
		AgentFee:      agentFee,
		SigningBonus:  bonus,
		SellOnPercent: row.SellOnPercent,
		Date:          date,
	}
	if row.FromClubID.Valid {
		fromID, err := uuid.Parse(row.FromClubID.String)
		if err != nil {
			return nil, fmt.Errorf("record from club id: %w", err)
		}
		r.FromClubID = &fromID
	}
	return r, nil
}

// SaveMeta stores a key-value pair in market metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO market_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM market_meta WHERE key = ?", key)
	return value, err
}

// SaveMarketState mirrors an in-memory store's live listings into the
// database and stamps the snapshot, for inspection after a run.
func (db *DB) SaveMarketState(store transfer.Store, dir *football.Directory) error {
	listings, err := store.ActiveListings()
	if err != nil {
		return fmt.Errorf("load listings: %w", err)
	}
	slog.Info("saving market state", "listings", len(listings), "clubs", len(dir.Clubs()))
	for _, l := range listings {
		if err := db.SaveListing(l); err != nil {
			return err
		}
	}
	if err := db.SaveMeta("saved_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	slog.Info("market state saved")
	return nil
}
