package postgres

import "github.com/joripage/lob-engine/pkg/orderbook"

// EventRecord is the durable row shape for one emitted orderbook.Event
// (§6 "Event sink" / durability for audit and replay). gorm maps this
// straight onto the engine_events table created by the migration in
// this package's companion schema.
type EventRecord struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	Kind       string `gorm:"column:kind;index"`
	Symbol     string `gorm:"column:symbol;index"`
	AcceptTime int64  `gorm:"column:accept_time"`
	MatchTime  int64  `gorm:"column:match_time"`
	OrderId    uint64 `gorm:"column:order_id;index"`
	Price      int64  `gorm:"column:price"`
	Qty        uint64 `gorm:"column:qty"`
	Aggressor  uint64 `gorm:"column:aggressor"`
	Maker      uint64 `gorm:"column:maker"`
	ErrorKind  int16  `gorm:"column:error_kind"`
}

func (EventRecord) TableName() string { return "engine_events" }

func toRecord(ev orderbook.Event) EventRecord {
	return EventRecord{
		Kind:       ev.Kind.String(),
		Symbol:     ev.Symbol,
		AcceptTime: int64(ev.AcceptTime),
		MatchTime:  int64(ev.MatchTime),
		OrderId:    uint64(ev.OrderId),
		Price:      int64(ev.Price),
		Qty:        uint64(ev.Qty),
		Aggressor:  uint64(ev.Aggressor),
		Maker:      uint64(ev.Maker),
		ErrorKind:  int16(ev.ErrorKind),
	}
}
