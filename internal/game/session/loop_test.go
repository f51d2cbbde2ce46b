package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"geogrid.app/internal/grid"
	"geogrid.app/internal/persistence/save"
	"geogrid.app/internal/protocol"
)

func startLoop(t *testing.T, sess *Session, saver *save.Writer) (*Loop, chan []byte, string) {
	t.Helper()
	l := NewLoop(LoopConfig{
		Session: sess,
		WorldParams: protocol.WorldParams{
			CellSizeDeg:    cellSize,
			InteractRadius: 3,
			ViewMargin:     1,
			VictoryTarget:  2048,
		},
		Saver: saver,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = l.Run(ctx) }()

	out := make(chan []byte, 64)
	resp := make(chan JoinResponse, 1)
	l.Join() <- JoinRequest{Name: "t", Out: out, Resp: resp}
	jr := <-resp
	if jr.Welcome.Type != protocol.TypeWelcome {
		t.Fatalf("bad welcome: %+v", jr.Welcome)
	}
	return l, out, jr.ClientID
}

func nextOfType(t *testing.T, out chan []byte, typ string) []byte {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case b := <-out:
			base, err := protocol.DecodeBase(b)
			if err != nil {
				t.Fatalf("bad message %q: %v", b, err)
			}
			if base.Type == typ {
				return b
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", typ)
		}
	}
}

func act(l *Loop, clientID string, a protocol.ActMsg) {
	a.Type = protocol.TypeAct
	a.ProtocolVersion = protocol.Version
	l.Inbox() <- Envelope{ClientID: clientID, Act: a}
}

func TestLoopViewAndActivate(t *testing.T) {
	sess := testSession(t, map[grid.CellID]int{{I: 0, J: 0}: 2})
	l, out, id := startLoop(t, sess, nil)

	act(l, id, protocol.ActMsg{ID: "A1", Kind: protocol.ActView, View: &protocol.ViewRect{Min: [2]int{-1, -1}, Max: [2]int{1, 1}}})
	var state protocol.StateMsg
	if err := json.Unmarshal(nextOfType(t, out, protocol.TypeState), &state); err != nil {
		t.Fatalf("state: %v", err)
	}
	// 3x3 viewport + margin 1 = 5x5.
	if len(state.Cells) != 25 {
		t.Fatalf("expected 25 cells, got %d", len(state.Cells))
	}
	found := false
	for _, c := range state.Cells {
		if c.Cell == [2]int{0, 0} {
			found = true
			if c.Value != 2 || !c.InRange {
				t.Fatalf("spawn cell view wrong: %+v", c)
			}
		}
	}
	if !found {
		t.Fatalf("spawn cell missing from state")
	}

	act(l, id, protocol.ActMsg{ID: "A2", Kind: protocol.ActActivate, Cell: [2]int{0, 0}})
	var ack protocol.AckMsg
	if err := json.Unmarshal(nextOfType(t, out, protocol.TypeAck), &ack); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if ack.AckFor != "A2" || !ack.Accepted || ack.Action != ActionPickup {
		t.Fatalf("activate ack wrong: %+v", ack)
	}

	state = protocol.StateMsg{}
	if err := json.Unmarshal(nextOfType(t, out, protocol.TypeState), &state); err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Inventory == nil || state.Inventory.Value != 2 {
		t.Fatalf("inventory missing after pickup: %+v", state.Inventory)
	}
	for _, c := range state.Cells {
		if c.Cell == [2]int{0, 0} && c.Value != 0 {
			t.Fatalf("picked cell should render empty: %+v", c)
		}
	}
}

func TestLoopRejectsUnknownKind(t *testing.T) {
	sess := testSession(t, nil)
	l, out, id := startLoop(t, sess, nil)

	act(l, id, protocol.ActMsg{ID: "X", Kind: "DANCE"})
	var ack protocol.AckMsg
	if err := json.Unmarshal(nextOfType(t, out, protocol.TypeAck), &ack); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if ack.Accepted || ack.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("unknown kind should be rejected: %+v", ack)
	}
}

func TestLoopVictoryEvent(t *testing.T) {
	sess := testSession(t, map[grid.CellID]int{{I: 0, J: 0}: 2, {I: 0, J: 1}: 2})
	sess.cfg.VictoryTarget = 4
	l, out, id := startLoop(t, sess, nil)

	act(l, id, protocol.ActMsg{ID: "P", Kind: protocol.ActActivate, Cell: [2]int{0, 0}})
	act(l, id, protocol.ActMsg{ID: "C", Kind: protocol.ActActivate, Cell: [2]int{0, 1}})

	var ev protocol.EventMsg
	if err := json.Unmarshal(nextOfType(t, out, protocol.TypeEvent), &ev); err != nil {
		t.Fatalf("event: %v", err)
	}
	if ev.Name != protocol.EventVictory || ev.Value != 4 {
		t.Fatalf("victory event wrong: %+v", ev)
	}
}

func TestLoopSaveAndReset(t *testing.T) {
	fs, err := save.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}
	saver := save.NewWriter(fs, "main", 10*time.Millisecond, nil)

	sess := testSession(t, map[grid.CellID]int{{I: 0, J: 0}: 2})
	l, out, id := startLoop(t, sess, saver)

	act(l, id, protocol.ActMsg{ID: "P", Kind: protocol.ActActivate, Cell: [2]int{0, 0}})
	nextOfType(t, out, protocol.TypeAck)

	// Debounced write lands.
	var payload []byte
	for i := 0; i < 100; i++ {
		payload, err = fs.Load("main")
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("save never landed: %v", err)
	}
	rec, err := save.Decode(payload)
	if err != nil || rec.Inventory == nil || rec.Inventory.Value != 2 {
		t.Fatalf("saved record wrong: %+v %v", rec, err)
	}

	// Reset clears the persisted record wholesale.
	act(l, id, protocol.ActMsg{ID: "R", Kind: protocol.ActReset})
	var ack protocol.AckMsg
	if err := json.Unmarshal(nextOfType(t, out, protocol.TypeAck), &ack); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if ack.AckFor != "R" || !ack.Accepted {
		t.Fatalf("reset ack wrong: %+v", ack)
	}
	if _, err := fs.Load("main"); err == nil {
		t.Fatalf("persisted record should be cleared by reset")
	}
}
