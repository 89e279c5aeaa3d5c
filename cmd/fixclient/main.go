// cmd/fixclient is a hand-driven FIX 4.4 initiator for exercising
// cmd/engine's acceptor: it reads the same engine config the acceptor
// runs with (for its symbol list) and submits two NewOrderSingles per
// symbol (a buy limit and an iceberg sell), built from pkg/matching's
// own request types rather than raw FIX enums, so a new symbol added to
// the engine config shows up here without touching the FIX plumbing
// below.
package main

import (
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	fix44nos "github.com/quickfixgo/fix44/newordersingle"
	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/quickfix/log/file"
	"github.com/shopspring/decimal"

	"github.com/joripage/lob-engine/config"
	"github.com/joripage/lob-engine/pkg/matching"
)

type InitiatorApp struct {
	sessionID *quickfix.SessionID
	orders    []matching.NewOrderRequest
}

func (a *InitiatorApp) OnCreate(sessionID quickfix.SessionID) {
	a.sessionID = &sessionID
}

func (a *InitiatorApp) OnLogon(sessionID quickfix.SessionID) {
	log.Println("Logon success", sessionID)
	for _, req := range a.orders {
		sendNewOrderSingle(sessionID, req)
	}
}

func (a *InitiatorApp) OnLogout(sessionID quickfix.SessionID)                       {}
func (a *InitiatorApp) ToAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) {}
func (a *InitiatorApp) ToApp(msg *quickfix.Message, sessionID quickfix.SessionID) error {
	return nil
}
func (a *InitiatorApp) FromAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return nil
}
func (a *InitiatorApp) FromApp(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return nil
}

// sideToFIX and kindToFIX mirror pkg/fixingress's inbound mapping in
// reverse, so an order built as a matching.NewOrderRequest round-trips
// through the same Side/OrdType vocabulary the acceptor decodes it with.
var sideToFIX = map[matching.Side]enum.Side{
	matching.Buy:  enum.Side_BUY,
	matching.Sell: enum.Side_SELL,
}

var kindToFIX = map[matching.Kind]enum.OrdType{
	matching.Limit:   enum.OrdType_LIMIT,
	matching.Market:  enum.OrdType_MARKET,
	matching.Iceberg: enum.OrdType_LIMIT,
}

// ordersFor builds one buy limit and one iceberg sell per symbol, the
// same pairing joripage's client used to immediately cross a book, but
// driven off the engine's configured symbols instead of a single
// hardcoded one.
func ordersFor(symbols []string) []matching.NewOrderRequest {
	if len(symbols) == 0 {
		symbols = []string{"ABC"}
	}
	orders := make([]matching.NewOrderRequest, 0, 2*len(symbols))
	for _, sym := range symbols {
		orders = append(orders,
			matching.NewOrderRequest{
				Symbol:     sym,
				Owner:      "011C399158",
				Side:       matching.Buy,
				Kind:       matching.Limit,
				TIF:        matching.GTC,
				LimitPrice: 14700,
				Qty:        10000,
			},
			matching.NewOrderRequest{
				Symbol:       sym,
				Owner:        "011C399157",
				Side:         matching.Sell,
				Kind:         matching.Iceberg,
				TIF:          matching.GTC,
				LimitPrice:   14700,
				Qty:          50000,
				DisplayedQty: 1000,
			},
		)
	}
	return orders
}

// sendNewOrderSingle renders a matching.NewOrderRequest as a FIX 4.4
// NewOrderSingle and sends it on sessionID.
func sendNewOrderSingle(sessionID quickfix.SessionID, req matching.NewOrderRequest) {
	order := fix44nos.New(
		field.NewClOrdID(randSeq(17)),
		field.NewSide(sideToFIX[req.Side]),
		field.NewTransactTime(time.Now()),
		field.NewOrdType(kindToFIX[req.Kind]))
	order.SetSymbol(req.Symbol)
	order.SetAccount(req.Owner)
	order.SetPrice(decimal.NewFromInt(int64(req.LimitPrice)), 0)
	order.SetOrderQty(decimal.NewFromInt(int64(req.Qty)), 0)
	order.SetTimeInForce("0")
	order.SetSenderCompID(sessionID.SenderCompID)
	order.SetTargetCompID(sessionID.TargetCompID)
	if req.Kind == matching.Iceberg {
		order.SetMaxFloor(decimal.NewFromInt(int64(req.DisplayedQty)), 0)
	}
	if err := quickfix.Send(order); err != nil {
		log.Println(err)
	}
}

func main() {
	cfgPath := os.Args[1]
	log.Println("cfgPath:", cfgPath)

	var symbols []string
	if len(os.Args) > 2 {
		if engineCfg, err := config.Load(os.Args[2]); err != nil {
			log.Println("failed to load engine config, falling back to a default symbol:", err)
		} else {
			symbols = engineCfg.Symbols
		}
	}
	app := &InitiatorApp{orders: ordersFor(symbols)}

	cfg, err := os.Open(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	defer cfg.Close() // nolint

	settings, err := quickfix.ParseSettings(cfg)
	if err != nil {
		log.Fatal(err)
	}

	storeFactory := quickfix.NewMemoryStoreFactory()
	logFactory, _ := file.NewLogFactory(settings)
	initiator, err := quickfix.NewInitiator(app, storeFactory, settings, logFactory)
	if err != nil {
		log.Fatal(err)
	}
	err = initiator.Start()
	if err != nil {
		log.Fatal(err)
	}
	log.Println("Initiator started...")
	select {}
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func randSeq(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
