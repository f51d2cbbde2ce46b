package session

import (
	"fmt"

	"geogrid.app/internal/grid"
	"geogrid.app/internal/protocol"
)

// Actions reported for accepted interactions.
const (
	ActionPickup = "pickup"
	ActionPlace  = "place"
	ActionCraft  = "craft"
)

// ActivationResult answers one OnCellActivated. Rejections carry a code
// and leave every piece of state untouched.
type ActivationResult struct {
	Accepted bool
	Action   string
	Value    int // value picked up, placed, or produced by crafting
	Victory  bool
	Code     string
	Message  string
}

// classify decides the transition for an (inventory, target cell) pair
// without mutating anything. The range gate has already passed.
func classify(invValue int, invHeld bool, cellValue int, cellPresent bool) (action string, code string, msg string) {
	switch {
	case !invHeld && cellPresent:
		return ActionPickup, "", ""
	case invHeld && !cellPresent:
		return ActionPlace, "", ""
	case invHeld && cellPresent && invValue == cellValue:
		return ActionCraft, "", ""
	case invHeld && cellPresent:
		return "", protocol.ErrBadCombo, "held token does not match cell"
	default:
		return "", protocol.ErrEmpty, "nothing to do"
	}
}

// OnCellActivated is the single interaction entry point, driven by
// click/tap events on a materialized cell. The range gate runs before any
// state inspection; accepted transitions update inventory and store
// atomically before the change or victory signals fire.
func (s *Session) OnCellActivated(target grid.CellID) ActivationResult {
	if d := grid.Chebyshev(target, s.PlayerCell()); d > s.cfg.InteractRadius {
		return ActivationResult{
			Code:    protocol.ErrOutOfRange,
			Message: fmt.Sprintf("cell %s is %d cells away (max %d)", target.Key(), d, s.cfg.InteractRadius),
		}
	}

	cellValue, cellPresent := s.Effective(target)
	action, code, msg := classify(s.invValue, s.invHeld, cellValue, cellPresent)
	if code != "" {
		return ActivationResult{Code: code, Message: msg}
	}

	res := ActivationResult{Accepted: true, Action: action}
	switch action {
	case ActionPickup:
		// Inventory first, store second: the store write fires the change
		// signal, and both halves must be in place by then.
		s.invValue, s.invHeld = cellValue, true
		s.store.Set(target, 0, false)
		res.Value = cellValue
	case ActionPlace:
		placed := s.invValue
		s.invValue, s.invHeld = 0, false
		s.store.Set(target, placed, true)
		res.Value = placed
	case ActionCraft:
		crafted := cellValue * 2
		s.invValue, s.invHeld = 0, false
		s.store.Set(target, crafted, true)
		res.Value = crafted
		if crafted >= s.cfg.VictoryTarget && !s.victoryFired {
			s.victoryFired = true
			res.Victory = true
			if s.onVictory != nil {
				s.onVictory(crafted)
			}
		}
	}
	return res
}
