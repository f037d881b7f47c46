package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// XBRLDimension is the dim_xbrl_dimensions row: a deduplicated set of XBRL
// dimension/axis/member combinations. DimensionHash is a stable digest of
// the canonicalized JSON so identical dimension sets collapse to one row.
type XBRLDimension struct {
	ID            int    `db:"id"`
	DimensionJSON string `db:"dimension_json"` // canonical JSON, sorted keys
	DimensionHash string `db:"dimension_hash"`
	PrimaryAxis   string `db:"primary_axis"`
	PrimaryMember string `db:"primary_member"`
}

// AxisMembers maps an XBRL axis name to a member (and, for typed dimensions
// with multiple qualifiers on the same axis, a slice is not needed — XBRL
// permits at most one member per axis within a single context).
type AxisMembers map[string]string

// CanonicalizeDimensions produces a stable JSON string and its SHA-256 hex
// digest for a set of axis->member pairs, keys sorted so that the same
// logical dimension set always hashes identically regardless of map
// iteration order or source field ordering.
func CanonicalizeDimensions(axes AxisMembers) (canonicalJSON string, hash string, err error) {
	if len(axes) == 0 {
		return "", "", nil
	}

	keys := make([]string, 0, len(axes))
	for k := range axes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]struct {
		Axis   string `json:"axis"`
		Member string `json:"member"`
	}, len(keys))
	for i, k := range keys {
		ordered[i].Axis = k
		ordered[i].Member = axes[k]
	}

	buf, err := json.Marshal(ordered)
	if err != nil {
		return "", "", err
	}

	sum := sha256.Sum256(buf)
	return string(buf), hex.EncodeToString(sum[:]), nil
}

// PrimaryAxisMember picks a deterministic "primary" axis/member pair for
// display purposes: the lexicographically smallest axis name breaks ties,
// since XBRL does not define an inherent axis ordering across dimensions.
func PrimaryAxisMember(axes AxisMembers) (axis, member string) {
	keys := make([]string, 0, len(axes))
	for k := range axes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return "", ""
	}
	return keys[0], axes[keys[0]]
}

// ComponentsOfEquityAxis is the well-known XBRL axis used to break equity
// roll-forwards into share_capital / treasury_shares / retained_earnings /
// other_reserves components.
const ComponentsOfEquityAxis = "ComponentsOfEquityAxis"

// EquityComponent is the column dimension of the equity-statement matrix.
type EquityComponent string

const (
	EquityShareCapital     EquityComponent = "share_capital"
	EquityTreasuryShares   EquityComponent = "treasury_shares"
	EquityRetainedEarnings EquityComponent = "retained_earnings"
	EquityOtherReserves    EquityComponent = "other_reserves"
)

// equityComponentMembers maps the well-known XBRL members of
// ComponentsOfEquityAxis to the normalized equity component they represent.
var equityComponentMembers = map[string]EquityComponent{
	"IssuedCapitalMember":    EquityShareCapital,
	"TreasurySharesMember":   EquityTreasuryShares,
	"RetainedEarningsMember": EquityRetainedEarnings,
	"OtherReservesMember":    EquityOtherReserves,
}

// EquityComponentFor resolves the equity component for a fact's dimension
// set, if any. Returns ok=false when the fact carries no
// ComponentsOfEquityAxis member (i.e. it is a total row).
func EquityComponentFor(axes AxisMembers) (component EquityComponent, ok bool) {
	member, present := axes[ComponentsOfEquityAxis]
	if !present {
		return "", false
	}
	component, ok = equityComponentMembers[member]
	return component, ok
}
