// Package fixingress is the FIX 4.4 front door onto pkg/engine:
// NewOrderSingle/OrderCancelRequest/OrderCancelReplaceRequest become
// matching.* requests, run through pkg/riskrule before reaching the
// engine, and every resulting orderbook.Event is translated back to an
// ExecutionReport on the originating session.
package fixingress

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/fix44/executionreport"
	"github.com/quickfixgo/fix44/newordersingle"
	"github.com/quickfixgo/fix44/ordercancelreplacerequest"
	"github.com/quickfixgo/fix44/ordercancelrequest"
	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/quickfix/log/file"
	"github.com/shopspring/decimal"

	"github.com/joripage/lob-engine/pkg/matching"
	"github.com/joripage/lob-engine/pkg/orderbook"
	"github.com/joripage/lob-engine/pkg/riskrule"
)

// Engine is the subset of engine.ConcurrentEngine the gateway drives.
type Engine interface {
	Submit(req matching.NewOrderRequest) ([]orderbook.Event, error)
	Cancel(req matching.CancelRequest) (orderbook.Event, error)
	Modify(req matching.ModifyRequest) ([]orderbook.Event, error)
}

// inboundMsg queues one FIX application message for routing off the
// quickfix network goroutine, the same shape joripage's Application
// uses for its dispatcher channel (the shard-queue variant is dropped —
// nothing in this engine needs per-ClOrdID sharding since ordering only
// matters per symbol, which pkg/engine already serializes).
type inboundMsg struct {
	msg       *quickfix.Message
	sessionID quickfix.SessionID
}

const queueSize = 1_000_000

// Application implements quickfix.Application, translating FIX 4.4
// order messages into engine commands and engine events back into
// ExecutionReports.
type Application struct {
	*quickfix.MessageRouter

	engine Engine
	risk   riskrule.Chain

	dispatcher chan *inboundMsg
	quickEvent chan bool
}

// New builds an Application wired to engine, running every inbound
// order through risk before submission.
func New(engine Engine, risk riskrule.Chain) *Application {
	a := &Application{
		MessageRouter: quickfix.NewMessageRouter(),
		engine:        engine,
		risk:          risk,
		dispatcher:    make(chan *inboundMsg, queueSize),
		quickEvent:    make(chan bool, 1),
	}
	a.AddRoute(newordersingle.Route(a.onNewOrderSingle))
	a.AddRoute(ordercancelrequest.Route(a.onOrderCancelRequest))
	a.AddRoute(ordercancelreplacerequest.Route(a.onOrderCancelReplaceRequest))
	go a.runDispatcher()
	return a
}

// Start reads quickfix acceptor settings from configPath and starts
// serving FIX sessions against app.
func Start(configPath string, app *Application) (*quickfix.Acceptor, error) {
	cfgFile, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("fixingress: open %v: %w", configPath, err)
	}
	defer cfgFile.Close() // nolint

	raw, err := io.ReadAll(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("fixingress: read %v: %w", configPath, err)
	}

	settings, err := quickfix.ParseSettings(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("fixingress: parse settings: %w", err)
	}

	logFactory, err := file.NewLogFactory(settings)
	if err != nil {
		return nil, fmt.Errorf("fixingress: log factory: %w", err)
	}
	acceptor, err := quickfix.NewAcceptor(app, quickfix.NewMemoryStoreFactory(), settings, logFactory)
	if err != nil {
		return nil, fmt.Errorf("fixingress: new acceptor: %w", err)
	}
	if err := acceptor.Start(); err != nil {
		return nil, fmt.Errorf("fixingress: start acceptor: %w", err)
	}

	go func() {
		<-app.quickEvent
		acceptor.Stop()
	}()

	return acceptor, nil
}

func Stop(a *Application) {
	select {
	case a.quickEvent <- true:
	default:
	}
}

func (a Application) OnCreate(sessionID quickfix.SessionID)                          {}
func (a Application) OnLogon(sessionID quickfix.SessionID)                           {}
func (a Application) OnLogout(sessionID quickfix.SessionID)                          {}
func (a Application) ToAdmin(msg *quickfix.Message, sessionID quickfix.SessionID)     {}
func (a Application) ToApp(msg *quickfix.Message, sessionID quickfix.SessionID) error { return nil }
func (a Application) FromAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return nil
}

// FromApp queues the message for the dispatcher goroutine rather than
// routing inline on the quickfix network goroutine.
func (a *Application) FromApp(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	a.dispatcher <- &inboundMsg{msg, sessionID}
	return nil
}

func (a *Application) runDispatcher() {
	for m := range a.dispatcher {
		if err := a.Route(m.msg, m.sessionID); err != nil {
			log.Println("fixingress: route error", err)
		}
	}
}

var ordTypeToKind = map[enum.OrdType]matching.Kind{
	enum.OrdType_MARKET:          matching.Market,
	enum.OrdType_LIMIT:           matching.Limit,
	enum.OrdType_STOP:            matching.StopMarket,
	enum.OrdType_STOP_LIMIT:      matching.StopLimit,
}

var tifToMatching = map[enum.TimeInForce]matching.TIF{
	enum.TimeInForce_DAY:                 matching.GTC,
	enum.TimeInForce_GOOD_TILL_CANCEL:    matching.GTC,
	enum.TimeInForce_IMMEDIATE_OR_CANCEL: matching.IOC,
	enum.TimeInForce_FILL_OR_KILL:        matching.FOK,
	enum.TimeInForce_GOOD_TILL_DATE:      matching.GTD,
}

var sideToMatching = map[enum.Side]matching.Side{
	enum.Side_BUY:  matching.Buy,
	enum.Side_SELL: matching.Sell,
}

func (a *Application) onNewOrderSingle(msg newordersingle.NewOrderSingle, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	clOrdID, _ := msg.GetClOrdID()
	symbol, _ := msg.GetSymbol()
	side, _ := msg.GetSide()
	ordType, _ := msg.GetOrdType()
	price, _ := msg.GetPrice()
	stopPx, _ := msg.GetStopPx()
	orderQty, _ := msg.GetOrderQty()
	account, _ := msg.GetAccount()
	tif, _ := msg.GetTimeInForce()
	maxFloor, _ := msg.GetMaxFloor()
	expireTime, _ := msg.GetExpireTime()

	kind := ordTypeToKind[ordType]
	if maxFloor.Sign() > 0 {
		kind = matching.Iceberg
	}

	req := matching.NewOrderRequest{
		Symbol:       symbol,
		Owner:        account,
		Side:         sideToMatching[side],
		Kind:         kind,
		TIF:          tifToMatching[tif],
		LimitPrice:   matching.Price(price.IntPart()),
		StopPrice:    matching.Price(stopPx.IntPart()),
		Qty:          matching.Quantity(orderQty.IntPart()),
		DisplayedQty: matching.Quantity(maxFloor.IntPart()),
	}
	if req.TIF == matching.GTD && !expireTime.IsZero() {
		req.Expiry = matching.Timestamp(expireTime.UnixNano())
	}

	if err := a.risk.Check(req); err != nil {
		a.sendReject(sessionID, clOrdID, symbol, req.Side, req.Qty, err.Error())
		return nil
	}

	events, err := a.engine.Submit(req)
	if err != nil && len(events) == 0 {
		a.sendReject(sessionID, clOrdID, symbol, req.Side, req.Qty, err.Error())
		return nil
	}
	a.replyAll(sessionID, clOrdID, events)
	return nil
}

func (a *Application) onOrderCancelRequest(msg ordercancelrequest.OrderCancelRequest, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	symbol, _ := msg.GetSymbol()
	clOrdID, _ := msg.GetClOrdID()
	origClOrdID, _ := msg.GetOrigClOrdID()
	orderID, _ := msg.GetOrderID()

	ev, err := a.engine.Cancel(matching.CancelRequest{Symbol: symbol, OrderId: parseOrderID(orderID)})
	if err != nil {
		a.sendCancelReject(sessionID, clOrdID, origClOrdID, err.Error())
		return nil
	}
	a.reply(sessionID, clOrdID, ev)
	return nil
}

func (a *Application) onOrderCancelReplaceRequest(msg ordercancelreplacerequest.OrderCancelReplaceRequest, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	symbol, _ := msg.GetSymbol()
	clOrdID, _ := msg.GetClOrdID()
	origClOrdID, _ := msg.GetOrigClOrdID()
	orderID, _ := msg.GetOrderID()
	price, _ := msg.GetPrice()
	orderQty, _ := msg.GetOrderQty()

	events, err := a.engine.Modify(matching.ModifyRequest{
		Symbol:   symbol,
		OrderId:  parseOrderID(orderID),
		NewPrice: matching.Price(price.IntPart()),
		NewQty:   matching.Quantity(orderQty.IntPart()),
	})
	if err != nil {
		a.sendCancelReject(sessionID, clOrdID, origClOrdID, err.Error())
		return nil
	}
	a.replyAll(sessionID, clOrdID, events)
	return nil
}

func parseOrderID(s string) matching.OrderId {
	var id uint64
	fmt.Sscanf(s, "%d", &id)
	return matching.OrderId(id)
}

var eventToExecType = map[orderbook.EventKind]enum.ExecType{
	orderbook.EventAccepted:         enum.ExecType_NEW,
	orderbook.EventTrade:            enum.ExecType_TRADE,
	orderbook.EventPartiallyFilled:  enum.ExecType_TRADE,
	orderbook.EventFilled:           enum.ExecType_TRADE,
	orderbook.EventCancelled:        enum.ExecType_CANCELED,
	orderbook.EventRejected:         enum.ExecType_REJECTED,
	orderbook.EventTriggered:        enum.ExecType_NEW,
	orderbook.EventExpired:          enum.ExecType_EXPIRED,
}

var eventToOrdStatus = map[orderbook.EventKind]enum.OrdStatus{
	orderbook.EventAccepted:        enum.OrdStatus_NEW,
	orderbook.EventTrade:           enum.OrdStatus_PARTIALLY_FILLED,
	orderbook.EventPartiallyFilled: enum.OrdStatus_PARTIALLY_FILLED,
	orderbook.EventFilled:          enum.OrdStatus_FILLED,
	orderbook.EventCancelled:       enum.OrdStatus_CANCELED,
	orderbook.EventRejected:        enum.OrdStatus_REJECTED,
	orderbook.EventTriggered:       enum.OrdStatus_NEW,
	orderbook.EventExpired:         enum.OrdStatus_EXPIRED,
}

func (a *Application) replyAll(sessionID quickfix.SessionID, clOrdID string, events []orderbook.Event) {
	for _, ev := range events {
		a.reply(sessionID, clOrdID, ev)
	}
}

// reply builds one ExecutionReport per engine event, following
// joripage's FromMessage + setter pattern (pkg/oms/fix/message.go)
// rather than executionreport.New's positional constructor, whose
// required-field order drifts across quickfixgo/fix44 releases.
func (a *Application) reply(sessionID quickfix.SessionID, clOrdID string, ev orderbook.Event) {
	msg := executionreport.FromMessage(quickfix.NewMessage())
	msg.SetMsgType(enum.MsgType_EXECUTION_REPORT)
	msg.SetOrderID(fmt.Sprintf("%d", ev.OrderId))
	msg.SetExecID(fmt.Sprintf("%d-%d", ev.OrderId, ev.MatchTime))
	msg.SetExecType(eventToExecType[ev.Kind])
	msg.SetOrdStatus(eventToOrdStatus[ev.Kind])
	msg.SetSymbol(ev.Symbol)
	msg.SetLeavesQty(decimal.NewFromInt(int64(ev.Qty)), 0)
	msg.SetCumQty(decimal.NewFromInt(int64(ev.Qty)), 0)
	msg.SetAvgPx(decimal.NewFromInt(int64(ev.Price)), 0)
	msg.SetClOrdID(clOrdID)
	msg.SetTransactTime(time.Unix(0, int64(ev.MatchTime)))
	if ev.Kind == orderbook.EventRejected {
		msg.SetText(ev.ErrorKind.String())
	}
	if err := quickfix.SendToTarget(msg, sessionID); err != nil {
		log.Println("fixingress: send execution report failed", err)
	}
}

func (a *Application) sendReject(sessionID quickfix.SessionID, clOrdID, symbol string, side matching.Side, qty matching.Quantity, reason string) {
	msg := executionreport.FromMessage(quickfix.NewMessage())
	msg.SetMsgType(enum.MsgType_EXECUTION_REPORT)
	msg.SetOrdStatus(enum.OrdStatus_REJECTED)
	msg.SetExecType(enum.ExecType_REJECTED)
	msg.SetSymbol(symbol)
	msg.SetSide(sideToFIX[side])
	msg.SetOrderQty(decimal.NewFromInt(int64(qty)), 0)
	msg.SetClOrdID(clOrdID)
	msg.SetText(reason)
	if err := quickfix.SendToTarget(msg, sessionID); err != nil {
		log.Println("fixingress: send reject failed", err)
	}
}

var sideToFIX = map[matching.Side]enum.Side{
	matching.Buy:  enum.Side_BUY,
	matching.Sell: enum.Side_SELL,
}

func (a *Application) sendCancelReject(sessionID quickfix.SessionID, clOrdID, origClOrdID, reason string) {
	msg := executionreport.FromMessage(quickfix.NewMessage())
	msg.SetMsgType(enum.MsgType_EXECUTION_REPORT)
	msg.SetOrdStatus(enum.OrdStatus_REJECTED)
	msg.SetExecType(enum.ExecType_REJECTED)
	msg.SetClOrdID(clOrdID)
	msg.SetOrigClOrdID(origClOrdID)
	msg.SetText(reason)
	if err := quickfix.SendToTarget(msg, sessionID); err != nil {
		log.Println("fixingress: send cancel reject failed", err)
	}
}
