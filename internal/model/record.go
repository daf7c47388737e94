package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Top-level field names of a holder document. Put merges at this level.
const (
	FieldHolder   = "holder"
	FieldRaffle   = "raffle"
	FieldSale     = "sale"
	FieldReferral = "referral"
)

// UserRecord is the typed view of one holder document.
type UserRecord struct {
	Holder   HolderAccount   `json:"holder"`
	Raffle   RaffleAccount   `json:"raffle"`
	Sale     SaleAccount     `json:"sale"`
	Referral ReferralAccount `json:"referral"`
}

// SeedRates holds the base daily rate for each seeded tier.
type SeedRates map[Tier]decimal.Decimal

// DefaultUserRecord is what a holder gets the first time their document is read.
func DefaultUserRecord(rates SeedRates, nowMillis int64) UserRecord {
	seed := []Tier{TierCommon, TierRare, TierUnique}
	assets := make([]StakedAsset, 0, len(seed))
	for i, t := range seed {
		assets = append(assets, StakedAsset{
			ID:            i + 1,
			Tier:          t,
			BaseDailyRate: rates[t],
		})
	}
	return UserRecord{
		Holder: HolderAccount{
			Assets:        assets,
			LastAccrualAt: nowMillis,
		},
		Sale:     SaleAccount{LastRecordedEpoch: -1},
		Referral: ReferralAccount{LastAccrualAt: nowMillis},
	}
}

// Clone deep-copies the record.
func (r UserRecord) Clone() UserRecord {
	out := r
	out.Holder = r.Holder.Clone()
	return out
}

// Fields encodes the record into top-level document fields.
func (r UserRecord) Fields() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, 4)
	parts := map[string]any{
		FieldHolder:   r.Holder,
		FieldRaffle:   r.Raffle,
		FieldSale:     r.Sale,
		FieldReferral: r.Referral,
	}
	for k, v := range parts {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		out[k] = b
	}
	return out, nil
}

// DecodeUserRecord overlays the fields present in doc onto def. Missing
// sections keep their defaults.
func DecodeUserRecord(doc map[string]json.RawMessage, def UserRecord) (UserRecord, error) {
	rec := def.Clone()
	targets := map[string]any{
		FieldHolder:   &rec.Holder,
		FieldRaffle:   &rec.Raffle,
		FieldSale:     &rec.Sale,
		FieldReferral: &rec.Referral,
	}
	for k, dst := range targets {
		raw, ok := doc[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return UserRecord{}, fmt.Errorf("decode %s: %w", k, err)
		}
	}
	return rec, nil
}

// FieldGlobalBurn is the only field of the global burn document.
const FieldGlobalBurn = "burn"

func EncodeGlobalBurn(g GlobalBurnStats) (map[string]json.RawMessage, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode global burn: %w", err)
	}
	return map[string]json.RawMessage{FieldGlobalBurn: b}, nil
}

func DecodeGlobalBurn(doc map[string]json.RawMessage) (GlobalBurnStats, error) {
	var g GlobalBurnStats
	raw, ok := doc[FieldGlobalBurn]
	if !ok {
		return g, nil
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return GlobalBurnStats{}, fmt.Errorf("decode global burn: %w", err)
	}
	return g, nil
}
