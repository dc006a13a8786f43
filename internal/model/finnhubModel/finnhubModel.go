package finnhubModel

// RawQuote is the /quote response. Current price and trade timestamp are the
// only fields the monitor trusts; both are validated before use.
type RawQuote struct {
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
	TimestampUnix int64   `json:"t"`
}
