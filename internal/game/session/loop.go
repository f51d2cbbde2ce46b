package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"geogrid.app/internal/grid"
	"geogrid.app/internal/persistence/journal"
	"geogrid.app/internal/persistence/save"
	"geogrid.app/internal/protocol"
)

// Envelope is one client input queued for the loop.
type Envelope struct {
	ClientID string
	Act      protocol.ActMsg
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	ClientID string
	Welcome  protocol.WelcomeMsg
}

// LoopConfig carries the pieces the loop wires together. Journal and Saver
// may be nil (tests, ephemeral runs).
type LoopConfig struct {
	Session     *Session
	WorldParams protocol.WorldParams
	Journal     *journal.Writer
	Saver       *save.Writer
	Logger      *log.Logger
}

type client struct {
	id  string
	out chan []byte
}

// Loop serializes every external event (join, leave, act) onto the single
// session goroutine, the only place session state is touched. Each event
// runs to completion before the next is taken, preserving arrival order.
type Loop struct {
	cfg  LoopConfig
	sess *Session

	stepSrc *StepSource
	geoSrc  *GeoSource

	inbox chan Envelope
	join  chan JoinRequest
	leave chan string

	// Off-loop signals (saver errors) funnel through here so client maps
	// are only ever touched on the loop goroutine.
	events chan protocol.EventMsg

	clients    map[string]*client
	nextClient int

	// Last viewport announced by a VIEW act; mutations re-reconcile
	// against it so clients see updates without re-sending their rect.
	lastView *grid.Rect
}

func NewLoop(cfg LoopConfig) *Loop {
	l := &Loop{
		cfg:     cfg,
		sess:    cfg.Session,
		inbox:   make(chan Envelope, 64),
		join:    make(chan JoinRequest),
		leave:   make(chan string),
		events:  make(chan protocol.EventMsg, 8),
		clients: map[string]*client{},
	}
	l.stepSrc = NewStepSource(cfg.WorldParams.CellSizeDeg, l.sess.Position, l.sess.OnPositionChanged)
	l.geoSrc = NewGeoSource(l.sess.OnPositionChanged)
	l.stepSrc.Enable()
	l.geoSrc.Enable()

	l.sess.OnChange(l.requestSave)
	l.sess.OnVictory(l.announceVictory)
	if cfg.Saver != nil {
		cfg.Saver.OnError(func(err error) {
			// Quota-style failures are user-visible but never fatal;
			// in-memory play continues. The callback runs off-loop, so it
			// only enqueues.
			ev := protocol.EventMsg{
				Type:            protocol.TypeEvent,
				ProtocolVersion: protocol.Version,
				Name:            protocol.EventSaveError,
				Message:         err.Error(),
			}
			select {
			case l.events <- ev:
			default:
			}
		})
	}
	return l
}

func (l *Loop) Inbox() chan<- Envelope { return l.inbox }

func (l *Loop) Join() chan<- JoinRequest { return l.join }

func (l *Loop) Leave() chan<- string { return l.leave }

// Run processes events until ctx is cancelled, then flushes any pending
// save.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if l.cfg.Saver != nil {
				l.cfg.Saver.Close()
			}
			return ctx.Err()
		case req := <-l.join:
			l.handleJoin(req)
		case id := <-l.leave:
			delete(l.clients, id)
		case env := <-l.inbox:
			l.handleAct(env)
		case ev := <-l.events:
			l.broadcast(ev)
		}
	}
}

func (l *Loop) handleJoin(req JoinRequest) {
	l.nextClient++
	id := fmt.Sprintf("C%d", l.nextClient)
	l.clients[id] = &client{id: id, out: req.Out}

	req.Resp <- JoinResponse{
		ClientID: id,
		Welcome: protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			SessionID:       id,
			WorldParams:     l.cfg.WorldParams,
			Player:          l.playerView(),
			Inventory:       l.inventoryRef(),
		},
	}
}

func (l *Loop) handleAct(env Envelope) {
	act := env.Act
	switch act.Kind {
	case protocol.ActMove:
		l.geoSrc.Report(act.Lat, act.Lng)
		l.journal(journal.Entry{Kind: "move", Lat: act.Lat, Lng: act.Lng, At: l.now()})
		l.ack(env.ClientID, act.ID, true, "", "", "")
		l.pushState()

	case protocol.ActStep:
		l.stepSrc.Step(act.DI, act.DJ)
		p := l.sess.Position()
		l.journal(journal.Entry{Kind: "move", Lat: p.Lat, Lng: p.Lng, At: l.now()})
		l.ack(env.ClientID, act.ID, true, "", "", "")
		l.pushState()

	case protocol.ActActivate:
		cell := grid.CellID{I: act.Cell[0], J: act.Cell[1]}
		res := l.sess.OnCellActivated(cell)
		if res.Accepted {
			l.journal(journal.Entry{Kind: res.Action, Cell: cell.Key(), Value: res.Value, At: l.now()})
		}
		l.ack(env.ClientID, act.ID, res.Accepted, res.Action, res.Code, res.Message)
		if res.Victory {
			l.journal(journal.Entry{Kind: "victory", Cell: cell.Key(), Value: res.Value, At: l.now()})
		}
		if res.Accepted {
			l.pushState()
		}

	case protocol.ActView:
		if act.View == nil {
			l.ack(env.ClientID, act.ID, false, "", protocol.ErrProtoBadRequest, "VIEW requires view rect")
			return
		}
		vp := grid.RectFromCorners(
			grid.CellID{I: act.View.Min[0], J: act.View.Min[1]},
			grid.CellID{I: act.View.Max[0], J: act.View.Max[1]},
		)
		l.lastView = &vp
		l.ack(env.ClientID, act.ID, true, "", "", "")
		l.pushState()

	case protocol.ActReset:
		l.sess.Reset()
		if l.cfg.Saver != nil {
			if err := l.cfg.Saver.Clear(); err != nil && l.cfg.Logger != nil {
				l.cfg.Logger.Printf("clear save: %v", err)
			}
		}
		l.journal(journal.Entry{Kind: "reset", At: l.now()})
		l.lastView = nil
		l.ack(env.ClientID, act.ID, true, "", "", "")
		l.pushState()

	default:
		l.ack(env.ClientID, act.ID, false, "", protocol.ErrProtoBadRequest, "unknown act kind")
	}
}

// pushState reconciles against the last announced viewport and broadcasts
// the result. No viewport yet means nothing is materialized.
func (l *Loop) pushState() {
	if l.lastView == nil {
		return
	}
	res := l.sess.Reconcile(*l.lastView)

	msg := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Player:          l.playerView(),
		Inventory:       l.inventoryRef(),
		Cells:           make([]protocol.CellView, 0, len(res.Cells)),
	}
	for _, cv := range res.Cells {
		pc := protocol.CellView{Cell: [2]int{cv.Cell.I, cv.Cell.J}, InRange: cv.InRange}
		if cv.Present {
			pc.Value = cv.Value
		}
		msg.Cells = append(msg.Cells, pc)
	}
	for _, c := range res.Removed {
		msg.Removed = append(msg.Removed, [2]int{c.I, c.J})
	}
	l.broadcast(msg)
}

func (l *Loop) ack(clientID, actID string, accepted bool, action, code, message string) {
	c, ok := l.clients[clientID]
	if !ok {
		return
	}
	l.send(c, protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          actID,
		Accepted:        accepted,
		Action:          action,
		Code:            code,
		Message:         message,
	})
}

func (l *Loop) announceVictory(value int) {
	l.broadcast(protocol.EventMsg{
		Type:            protocol.TypeEvent,
		ProtocolVersion: protocol.Version,
		Name:            protocol.EventVictory,
		Value:           value,
	})
}

func (l *Loop) broadcast(v any) {
	for _, c := range l.clients {
		l.send(c, v)
	}
}

func (l *Loop) send(c *client, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		if l.cfg.Logger != nil {
			l.cfg.Logger.Printf("marshal %T: %v", v, err)
		}
		return
	}
	select {
	case c.out <- b:
	default:
		// Slow client; drop rather than stall the loop.
	}
}

func (l *Loop) requestSave() {
	if l.cfg.Saver != nil {
		l.cfg.Saver.Request(l.sess.Snapshot())
	}
}

func (l *Loop) journal(e journal.Entry) {
	if l.cfg.Journal == nil {
		return
	}
	if err := l.cfg.Journal.Append(e); err != nil && l.cfg.Logger != nil {
		l.cfg.Logger.Printf("journal: %v", err)
	}
}

func (l *Loop) now() int64 { return l.sess.cfg.Now() }

func (l *Loop) playerView() protocol.PlayerView {
	p := l.sess.Position()
	c := l.sess.PlayerCell()
	return protocol.PlayerView{Lat: p.Lat, Lng: p.Lng, Cell: [2]int{c.I, c.J}}
}

func (l *Loop) inventoryRef() *protocol.TokenRef {
	if v, held := l.sess.Inventory(); held {
		return &protocol.TokenRef{Value: v}
	}
	return nil
}
