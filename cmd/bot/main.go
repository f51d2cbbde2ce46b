// A scripted client: connects, announces a viewport around itself, walks a
// spiral, picks up every in-range token it sees, and places/crafts when
// values line up. Useful for smoke-testing a server and for generating
// journal traffic.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"geogrid.app/internal/protocol"
)

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "client name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
	}); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	b := &bot{conn: conn, log: logger}
	for {
		select {
		case <-stop:
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Printf("read: %v", err)
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME session=%s cell=%v target=%d", w.SessionID, w.Player.Cell, w.WorldParams.VictoryTarget)
			b.held = 0
			if w.Inventory != nil {
				b.held = w.Inventory.Value
			}
			b.announceView(w.Player.Cell)

		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			b.handleState(&st)

		case protocol.TypeEvent:
			var ev protocol.EventMsg
			if err := json.Unmarshal(msg, &ev); err != nil {
				continue
			}
			logger.Printf("EVENT %s value=%d %s", ev.Name, ev.Value, ev.Message)
		}
	}
}

type bot struct {
	conn *websocket.Conn
	log  *log.Logger

	held    int
	actSeq  int
	stepDir int
}

func (b *bot) act(a protocol.ActMsg) {
	b.actSeq++
	a.Type = protocol.TypeAct
	a.ProtocolVersion = protocol.Version
	a.ID = fmt.Sprintf("B%d", b.actSeq)
	if err := b.conn.WriteJSON(a); err != nil {
		b.log.Printf("act: %v", err)
	}
}

func (b *bot) announceView(center [2]int) {
	b.act(protocol.ActMsg{
		Kind: protocol.ActView,
		View: &protocol.ViewRect{
			Min: [2]int{center[0] - 4, center[1] - 4},
			Max: [2]int{center[0] + 4, center[1] + 4},
		},
	})
}

// handleState does one thing per state push: interact if something useful
// is in range, otherwise wander.
func (b *bot) handleState(st *protocol.StateMsg) {
	b.held = 0
	if st.Inventory != nil {
		b.held = st.Inventory.Value
	}

	for _, c := range st.Cells {
		if !c.InRange {
			continue
		}
		switch {
		case b.held == 0 && c.Value > 0:
			b.act(protocol.ActMsg{Kind: protocol.ActActivate, Cell: c.Cell})
			return
		case b.held > 0 && c.Value == b.held:
			b.act(protocol.ActMsg{Kind: protocol.ActActivate, Cell: c.Cell})
			b.log.Printf("crafting %d+%d at %v", b.held, c.Value, c.Cell)
			return
		}
	}

	// Nothing to do here; drift in a slowly rotating direction. The pause
	// keeps an idle bot from hammering the server with step traffic.
	time.Sleep(200 * time.Millisecond)
	dirs := [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	d := dirs[b.stepDir%4]
	b.stepDir++
	b.act(protocol.ActMsg{Kind: protocol.ActStep, DI: d[0], DJ: d[1]})
	b.announceView(st.Player.Cell)
}
