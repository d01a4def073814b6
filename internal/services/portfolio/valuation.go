package portfolio

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/nepsewatch/internal/models"
)

// NEPSE halts a scrip at ±10%; anything at 9.9% or beyond is shown as
// having hit the circuit.
const (
	CircuitThresholdPct = 9.9

	// SignificantMove flags lines whose absolute price move exceeds this many
	// rupees.
	SignificantMove = 30.0
)

// Valuation joins the user's holdings with the current feed snapshot. An
// empty profileID or "all" spans every profile.
func (s *Service) Valuation(ctx context.Context, userID, profileID string) (*models.Valuation, error) {
	profiles, err := s.GetProfiles(ctx, userID)
	if err != nil {
		return nil, err
	}

	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		profileID = models.AllProfiles
	}

	selected := profiles
	if profileID != models.AllProfiles {
		selected = nil
		for _, p := range profiles {
			if p.ID == profileID {
				selected = []models.Profile{p}
				break
			}
		}
		if selected == nil {
			return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, profileID)
		}
	}

	snap := s.feed.Snapshot()
	v := Value(selected, snap)
	v.UserID = strings.TrimSpace(userID)
	v.ProfileID = profileID

	s.logger.Debug().
		Str("user", v.UserID).
		Str("profile", profileID).
		Int("lines", len(v.Lines)).
		Float64("total", v.TotalValue).
		Msg("Portfolio valued")

	return v, nil
}

// Value prices every holding in profiles against snap. Lines are ordered by
// change percent, worst first.
func Value(profiles []models.Profile, snap models.FeedSnapshot) *models.Valuation {
	bySymbol := make(map[string]models.Quote, len(snap.Quotes))
	for _, q := range snap.Quotes {
		if _, dup := bySymbol[q.Symbol]; !dup {
			bySymbol[q.Symbol] = q
		}
	}

	lines := make([]models.ValuationLine, 0)
	total := decimal.Zero
	daily := decimal.Zero

	for _, p := range profiles {
		for _, h := range p.Stocks {
			q, priced := bySymbol[h.Symbol]
			if !priced {
				q = models.Quote{Symbol: h.Symbol, Name: h.Symbol, Sector: models.SectorUnknown}
			}

			qty := decimal.NewFromFloat(h.Quantity)
			cur := decimal.NewFromFloat(q.CurrentPrice)
			prev := decimal.NewFromFloat(q.PreviousPrice)
			value := qty.Mul(cur)
			change := qty.Mul(cur.Sub(prev))

			total = total.Add(value)
			daily = daily.Add(change)

			pct := q.ChangePct()
			lines = append(lines, models.ValuationLine{
				ProfileID:     p.ID,
				ProfileName:   p.Name,
				Symbol:        h.Symbol,
				Name:          q.Name,
				Sector:        q.Sector,
				Note:          h.Note,
				Quantity:      h.Quantity,
				CurrentPrice:  q.CurrentPrice,
				PreviousPrice: q.PreviousPrice,
				Value:         round2(value),
				DailyChange:   round2(change),
				ChangePct:     round2(decimal.NewFromFloat(pct)),
				UpperCircuit:  priced && pct >= CircuitThresholdPct,
				LowerCircuit:  priced && pct <= -CircuitThresholdPct,
				Significant:   priced && math.Abs(q.Change()) > SignificantMove,
				Priced:        priced,
			})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].ChangePct < lines[j].ChangePct
	})

	dailyChange := round2(daily)
	return &models.Valuation{
		Lines:       lines,
		TotalValue:  round2(total),
		DailyChange: dailyChange,
		Positive:    dailyChange >= 0,
		FeedStatus:  snap.Status,
		PricedAt:    snap.UpdatedAt,
	}
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
